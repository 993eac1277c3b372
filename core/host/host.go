// Package host runs contracts in process. Every top-level call executes
// against a write buffer that is committed only when the whole call tree,
// including every outgoing instruction and reply, succeeds.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/storage"
)

const maxCallDepth = 16

var (
	ErrUnknownCode     = errors.New("host: unknown code id")
	ErrUnknownContract = errors.New("host: unknown contract")
	ErrCallDepth       = errors.New("host: call depth exceeded")
	ErrNoReplyHandler  = errors.New("host: contract does not accept replies")
)

var (
	sequenceKey    = state.ItemKey("host/sequence")
	heightKey      = state.ItemKey("host/height")
	instanceBucket = "host/instance"
	hostPrefix     = []byte("host/")
	contractPrefix = []byte("contract/")
)

// Instance describes a deployed contract.
type Instance struct {
	Address crypto.Address `json:"address"`
	CodeID  uint64         `json:"code_id"`
	Label   string         `json:"label"`
	Creator crypto.Address `json:"creator"`
}

// Observer receives the outcome of top-level calls. The metrics package
// provides the production implementation.
type Observer interface {
	ObserveCall(entry string, err error, elapsed time.Duration)
	ObserveEvents(events []types.Event)
}

// Result is what a committed top-level call produced.
type Result struct {
	Contract crypto.Address
	Data     []byte
	Events   []types.Event
}

// Attribute returns the first value of key across the result's events.
func (r *Result) Attribute(eventType, key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, ev := range r.Events {
		if ev.Type != eventType {
			continue
		}
		if value, ok := ev.Attributes[key]; ok {
			return value, true
		}
	}
	return "", false
}

// Host owns the contract code registry and the committed store.
type Host struct {
	mu       sync.Mutex
	db       storage.Database
	codes    map[uint64]types.Contract
	names    map[uint64]string
	nextCode uint64
	nowFn    func() time.Time
	logger   *slog.Logger
	observer Observer
}

// New creates a host over db. Codes must be registered in the same order on
// every start for persisted instances to resolve to the same code.
func New(db storage.Database) *Host {
	return &Host{
		db:       db,
		codes:    make(map[uint64]types.Contract),
		names:    make(map[uint64]string),
		nextCode: 1,
		nowFn:    time.Now,
		logger:   slog.Default(),
	}
}

// SetNowFunc overrides the block clock. Passing nil restores the wall clock.
func (h *Host) SetNowFunc(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if now == nil {
		h.nowFn = time.Now
		return
	}
	h.nowFn = now
}

func (h *Host) SetLogger(logger *slog.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger
}

func (h *Host) SetObserver(observer Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observer = observer
}

// StoreCode registers a contract implementation and returns its code id.
func (h *Host) StoreCode(name string, contract types.Contract) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextCode
	h.nextCode++
	h.codes[id] = contract
	h.names[id] = name
	return id
}

// CodeName returns the registered name of a code id.
func (h *Host) CodeName(id uint64) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.names[id]
}

// Instantiate deploys a new instance of codeID on behalf of sender.
func (h *Host) Instantiate(sender crypto.Address, codeID uint64, msg []byte, funds []types.Coin, label string) (*Result, error) {
	return h.run("instantiate", func(tx *txn) (*Result, error) {
		addr, data, err := tx.instantiate(sender, codeID, msg, funds, label)
		if err != nil {
			return nil, err
		}
		return &Result{Contract: addr, Data: data}, nil
	})
}

// Execute invokes contract on behalf of sender.
func (h *Host) Execute(sender, contract crypto.Address, msg []byte, funds []types.Coin) (*Result, error) {
	return h.run("execute", func(tx *txn) (*Result, error) {
		data, err := tx.execute(sender, contract, msg, funds)
		if err != nil {
			return nil, err
		}
		return &Result{Contract: contract, Data: data}, nil
	})
}

// Migrate runs contract's migrate hook.
func (h *Host) Migrate(contract crypto.Address, msg []byte) (*Result, error) {
	return h.run("migrate", func(tx *txn) (*Result, error) {
		inst, code, err := tx.lookup(contract)
		if err != nil {
			return nil, err
		}
		resp, err := code.Migrate(tx.deps(inst.Address), tx.env(inst.Address), msg)
		if err != nil {
			return nil, err
		}
		data, err := tx.handleResponse(inst.Address, resp, 0)
		if err != nil {
			return nil, err
		}
		return &Result{Contract: contract, Data: data}, nil
	})
}

// MintNative credits native coins out of thin air. It seeds balances for
// deployments and tests.
func (h *Host) MintNative(to crypto.Address, coin types.Coin) error {
	_, err := h.run("mint", func(tx *txn) (*Result, error) {
		return &Result{}, tx.bank.mint(to, coin)
	})
	return err
}

// Query answers a read-only smart query against committed state.
func (h *Host) Query(contract crypto.Address, msg []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tx := h.begin()
	defer tx.cache.Discard()
	return tx.QueryContract(contract, msg)
}

// NativeBalance returns the committed native balance of addr.
func (h *Host) NativeBalance(addr crypto.Address, denom string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tx := h.begin()
	defer tx.cache.Discard()
	amount, err := tx.bank.balance(addr, denom)
	if err != nil {
		return "", err
	}
	return amount.String(), nil
}

// Instance returns the metadata of a deployed contract.
func (h *Host) Instance(addr crypto.Address) (*Instance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tx := h.begin()
	defer tx.cache.Discard()
	inst, _, err := tx.lookup(addr)
	return inst, err
}

func (h *Host) begin() *txn {
	cache := storage.NewCacheDB(h.db)
	return &txn{
		host:  h,
		cache: cache,
		kv:    state.NewManager(storage.NewPrefixDB(cache, hostPrefix)),
		bank:  bank{kv: state.NewManager(storage.NewPrefixDB(cache, hostPrefix))},
		now:   h.nowFn(),
	}
}

// run executes fn inside a fresh write buffer, committing on success and
// discarding everything on failure.
func (h *Host) run(entry string, fn func(tx *txn) (*Result, error)) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	started := time.Now()
	tx := h.begin()
	result, err := h.apply(tx, fn)
	if h.observer != nil {
		h.observer.ObserveCall(entry, err, time.Since(started))
	}
	if err != nil {
		tx.cache.Discard()
		h.logger.Warn("contract call failed",
			slog.String("entry", entry),
			slog.Any("error", err))
		return nil, err
	}
	if err := tx.cache.Write(); err != nil {
		return nil, fmt.Errorf("host: commit: %w", err)
	}
	result.Events = tx.events
	if h.observer != nil {
		h.observer.ObserveEvents(tx.events)
	}
	h.logger.Debug("contract call committed",
		slog.String("entry", entry),
		slog.String("contract", result.Contract.String()),
		slog.Int("events", len(tx.events)),
		slog.Uint64("height", tx.height))
	return result, nil
}

func (h *Host) apply(tx *txn, fn func(tx *txn) (*Result, error)) (*Result, error) {
	var height uint64
	if _, err := tx.kv.KVGet(heightKey, &height); err != nil {
		return nil, err
	}
	tx.height = height + 1
	if err := tx.kv.KVPut(heightKey, tx.height); err != nil {
		return nil, err
	}
	return fn(tx)
}
