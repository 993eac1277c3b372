package subsidy

import (
	"errors"
	"testing"

	"olympuspro/core/decimal"
	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
)

type mockState struct {
	cfg         *Config
	controllers map[crypto.Address]crypto.Address
}

func newMockState() *mockState {
	return &mockState{controllers: make(map[crypto.Address]crypto.Address)}
}

func (m *mockState) Config() (*Config, bool, error) {
	if m.cfg == nil {
		return nil, false, nil
	}
	return m.cfg.Clone(), true, nil
}

func (m *mockState) PutConfig(cfg *Config) error {
	m.cfg = cfg.Clone()
	return nil
}

func (m *mockState) BondFor(controller crypto.Address) (crypto.Address, bool, error) {
	b, ok := m.controllers[controller]
	return b, ok, nil
}

func (m *mockState) PutController(controller, b crypto.Address) error {
	m.controllers[controller] = b
	return nil
}

func (m *mockState) DeleteController(controller crypto.Address) error {
	delete(m.controllers, controller)
	return nil
}

type fakeBonds map[crypto.Address]*bond.State

func (f fakeBonds) BondState(addr crypto.Address) (*bond.State, error) {
	st, ok := f[addr]
	if !ok {
		return nil, errors.New("no such bond")
	}
	return st.Clone(), nil
}

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(e events.Event) { r.events = append(r.events, e) }

var (
	policy     = crypto.AccountAddress("policy")
	controller = crypto.AccountAddress("controller")
	stranger   = crypto.AccountAddress("stranger")
	bondAddr   = crypto.ContractAddress(4, 0)
)

func newTestEngine(t *testing.T) (*Engine, *mockState, *recordingEmitter) {
	t.Helper()
	st := newMockState()
	emitter := &recordingEmitter{}
	engine := NewEngine()
	engine.SetState(st)
	engine.SetEmitter(emitter)
	engine.SetQuerier(fakeBonds{bondAddr: {PayoutSinceLastSubsidy: decimal.NewUint(15894)}})
	if _, err := engine.Instantiate(InstantiateMsg{Policy: policy}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return engine, st, emitter
}

func TestPolicyOnlyOperations(t *testing.T) {
	engine, st, emitter := newTestEngine(t)
	add := AddSubsidyControllerMsg{Controller: controller, Bond: bondAddr}
	if _, err := engine.Execute(types.MessageInfo{Sender: stranger}, add); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	resp, err := engine.Execute(types.MessageInfo{Sender: policy}, add)
	if err != nil {
		t.Fatalf("add controller: %v", err)
	}
	if action, _ := resp.Attribute("action"); action != "add_subsidy_controller" {
		t.Fatalf("unexpected action %q", action)
	}
	got, err := engine.BondForController(controller)
	if err != nil || !got.Bond.Equal(bondAddr) {
		t.Fatalf("unexpected mapping %+v %v", got, err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected controller event")
	}

	if _, err := engine.Execute(types.MessageInfo{Sender: policy}, RemoveSubsidyControllerMsg{Controller: controller}); err != nil {
		t.Fatalf("remove controller: %v", err)
	}
	if _, ok := st.controllers[controller]; ok {
		t.Fatalf("controller must be removed")
	}
	if _, err := engine.BondForController(controller); !errors.Is(err, ErrControllerNotFound) {
		t.Fatalf("expected controller not found, got %v", err)
	}

	next := crypto.AccountAddress("next-policy")
	if _, err := engine.Execute(types.MessageInfo{Sender: policy}, UpdateConfigMsg{Policy: &next}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	cfg, _ := engine.Config()
	if !cfg.Policy.Equal(next) {
		t.Fatalf("policy not updated")
	}
}

func TestPaySubsidyForwardsToBond(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	if _, err := engine.Execute(types.MessageInfo{Sender: controller}, PaySubsidyMsg{}); !errors.Is(err, ErrControllerNotFound) {
		t.Fatalf("expected controller not found, got %v", err)
	}
	if _, err := engine.Execute(types.MessageInfo{Sender: policy}, AddSubsidyControllerMsg{Controller: controller, Bond: bondAddr}); err != nil {
		t.Fatalf("add controller: %v", err)
	}
	resp, err := engine.Execute(types.MessageInfo{Sender: controller}, PaySubsidyMsg{})
	if err != nil {
		t.Fatalf("pay subsidy: %v", err)
	}
	if amount, _ := resp.Attribute("amount"); amount != "15894" {
		t.Fatalf("unexpected amount %q", amount)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(resp.Messages))
	}
	exec, ok := resp.Messages[0].Msg.(types.ExecuteContractMsg)
	if !ok || !exec.Contract.Equal(bondAddr) {
		t.Fatalf("expected execute on bond, got %#v", resp.Messages[0].Msg)
	}
	decoded, err := bond.DecodeExecute(exec.Msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded.(bond.PaySubsidyMsg); !ok {
		t.Fatalf("expected PaySubsidy, got %T", decoded)
	}
}

func TestExecuteCodec(t *testing.T) {
	raw, err := EncodeExecute(AddSubsidyControllerMsg{Controller: controller, Bond: bondAddr})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeExecute(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	add, ok := decoded.(AddSubsidyControllerMsg)
	if !ok || !add.Controller.Equal(controller) || !add.Bond.Equal(bondAddr) {
		t.Fatalf("unexpected round trip %#v", decoded)
	}
	if _, err := DecodeExecute([]byte(`{}`)); !errors.Is(err, common.ErrUnknownMessage) {
		t.Fatalf("expected unknown message, got %v", err)
	}
}
