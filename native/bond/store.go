package bond

import (
	"olympuspro/core/state"
	"olympuspro/crypto"
)

var (
	configKey      = state.ItemKey("bond/config")
	stateKey       = state.ItemKey("bond/state")
	bondInfoBucket = "bond/info"
)

type engineState interface {
	Config() (*Config, bool, error)
	PutConfig(*Config) error
	State() (*State, bool, error)
	PutState(*State) error
	BondInfo(user crypto.Address) (*BondInfo, bool, error)
	PutBondInfo(user crypto.Address, info *BondInfo) error
	DeleteBondInfo(user crypto.Address) error
}

// Store persists bond records in a contract namespace.
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

func (s *Store) State() (*State, bool, error) {
	var st State
	ok, err := s.kv.KVGet(stateKey, &st)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &st, true, nil
}

func (s *Store) PutState(st *State) error { return s.kv.KVPut(stateKey, st) }

func (s *Store) BondInfo(user crypto.Address) (*BondInfo, bool, error) {
	var info BondInfo
	ok, err := s.kv.KVGet(state.BucketKey(bondInfoBucket, user.Bytes()), &info)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &info, true, nil
}

func (s *Store) PutBondInfo(user crypto.Address, info *BondInfo) error {
	return s.kv.KVPut(state.BucketKey(bondInfoBucket, user.Bytes()), info)
}

func (s *Store) DeleteBondInfo(user crypto.Address) error {
	return s.kv.KVDelete(state.BucketKey(bondInfoBucket, user.Bytes()))
}
