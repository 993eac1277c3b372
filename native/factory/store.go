package factory

import (
	"strconv"

	"olympuspro/core/state"
)

var (
	configKey   = state.ItemKey("factory/config")
	stateKey    = state.ItemKey("factory/state")
	pendingKey  = state.ItemKey("factory/pending_bond")
	bondsBucket = "factory/bonds"
)

type engineState interface {
	Config() (*Config, bool, error)
	PutConfig(*Config) error
	State() (*State, error)
	PutState(*State) error
	Pending() (*pendingBond, bool, error)
	PutPending(*pendingBond) error
	ClearPending() error
	Bond(id uint64) (*BondRecord, bool, error)
	PutBond(id uint64, record *BondRecord) error
}

// Store persists factory records in a contract namespace.
type Store struct {
	kv *state.Manager
}

func NewStore(kv *state.Manager) *Store { return &Store{kv: kv} }

func (s *Store) Config() (*Config, bool, error) {
	var cfg Config
	ok, err := s.kv.KVGet(configKey, &cfg)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &cfg, true, nil
}

func (s *Store) PutConfig(cfg *Config) error { return s.kv.KVPut(configKey, cfg) }

// State returns the counters, zero valued before the first registration.
func (s *Store) State() (*State, error) {
	var st State
	if _, err := s.kv.KVGet(stateKey, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) PutState(st *State) error { return s.kv.KVPut(stateKey, st) }

func (s *Store) Pending() (*pendingBond, bool, error) {
	var pending pendingBond
	ok, err := s.kv.KVGet(pendingKey, &pending)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &pending, true, nil
}

func (s *Store) PutPending(p *pendingBond) error { return s.kv.KVPut(pendingKey, p) }

func (s *Store) ClearPending() error { return s.kv.KVDelete(pendingKey) }

func bondKey(id uint64) []byte {
	return state.BucketKey(bondsBucket, []byte(strconv.FormatUint(id, 10)))
}

func (s *Store) Bond(id uint64) (*BondRecord, bool, error) {
	var record BondRecord
	ok, err := s.kv.KVGet(bondKey(id), &record)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &record, true, nil
}

func (s *Store) PutBond(id uint64, record *BondRecord) error {
	return s.kv.KVPut(bondKey(id), record)
}
