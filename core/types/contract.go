package types

import (
	"time"

	"olympuspro/core/decimal"
	"olympuspro/crypto"
	"olympuspro/storage"
)

// Env describes the block context of an invocation.
type Env struct {
	Time     time.Time
	Height   uint64
	Contract crypto.Address
}

// Timestamp returns the block time in unix seconds.
func (e Env) Timestamp() uint64 {
	if e.Time.IsZero() || e.Time.Unix() < 0 {
		return 0
	}
	return uint64(e.Time.Unix())
}

// MessageInfo carries the caller and the native funds attached to a call.
type MessageInfo struct {
	Sender crypto.Address
	Funds  []Coin
}

// Querier is the synchronous read-only capability contracts use to inspect
// their peers.
type Querier interface {
	QueryContract(contract crypto.Address, msg []byte) ([]byte, error)
	NativeSupply(denom string) (decimal.Uint, error)
}

// Deps bundles the per-invocation dependencies handed to a contract.
type Deps struct {
	Storage storage.Database
	Querier Querier
}

// Contract is implemented by every deployable contract code.
type Contract interface {
	Instantiate(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Execute(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Query(deps Deps, env Env, msg []byte) ([]byte, error)
	Migrate(deps Deps, env Env, msg []byte) (*Response, error)
}

// Replier is implemented by contracts that issue sub messages with replies.
type Replier interface {
	Reply(deps Deps, env Env, reply Reply) (*Response, error)
}
