package types

import "olympuspro/crypto"

// Msg is an outgoing instruction attached to a successful response. The host
// applies it only after the issuing handler has returned without error.
type Msg interface {
	isMsg()
}

// BankSendMsg moves native coins from the issuing contract.
type BankSendMsg struct {
	ToAddress crypto.Address
	Amount    []Coin
}

// ExecuteContractMsg invokes another contract's execute entry point.
type ExecuteContractMsg struct {
	Contract crypto.Address
	Msg      []byte
	Funds    []Coin
}

// InstantiateContractMsg deploys a new instance of a registered code.
type InstantiateContractMsg struct {
	CodeID uint64
	Msg    []byte
	Funds  []Coin
	Label  string
}

func (BankSendMsg) isMsg()            {}
func (ExecuteContractMsg) isMsg()     {}
func (InstantiateContractMsg) isMsg() {}

// ReplyOn selects when the issuing contract is called back.
type ReplyOn uint8

const (
	ReplyNever ReplyOn = iota
	ReplySuccess
)

// SubMsg wraps an outgoing instruction with reply routing.
type SubMsg struct {
	ID      uint64
	Msg     Msg
	ReplyOn ReplyOn
}

// Reply is delivered to a contract after a sub message it issued with
// ReplySuccess completed.
type Reply struct {
	ID              uint64
	ContractAddress crypto.Address
	Data            []byte
	Events          []Event
}

// Response is the result of a successful execute, instantiate, migrate or
// reply call.
type Response struct {
	Messages   []SubMsg
	Attributes []Attribute
	Events     []Event
	Data       []byte
}

func NewResponse() *Response { return &Response{} }

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessage(msg Msg) *Response {
	r.Messages = append(r.Messages, SubMsg{Msg: msg, ReplyOn: ReplyNever})
	return r
}

func (r *Response) AddSubMessage(sub SubMsg) *Response {
	r.Messages = append(r.Messages, sub)
	return r
}

func (r *Response) AddEvent(ev *Event) *Response {
	if ev != nil {
		r.Events = append(r.Events, *ev)
	}
	return r
}

func (r *Response) SetData(data []byte) *Response {
	r.Data = data
	return r
}

// Attribute returns the first attribute value recorded under key.
func (r *Response) Attribute(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}
