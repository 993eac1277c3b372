package treasury

import (
	"olympuspro/core/state"
	"olympuspro/crypto"
)

var (
	configKey       = state.ItemKey("treasury/config")
	whitelistBucket = "treasury/whitelist"
)

type engineState interface {
	Config() (*Config, bool, error)
	PutConfig(*Config) error
	Whitelisted(bond crypto.Address) (bool, error)
	SetWhitelisted(bond crypto.Address, whitelisted bool) error
}

// Store persists treasury records in a contract namespace.
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

func (s *Store) PutConfig(cfg *Config) error {
	return s.kv.KVPut(configKey, cfg)
}

func (s *Store) Whitelisted(bond crypto.Address) (bool, error) {
	var whitelisted bool
	if _, err := s.kv.KVGet(state.BucketKey(whitelistBucket, bond.Bytes()), &whitelisted); err != nil {
		return false, err
	}
	return whitelisted, nil
}

func (s *Store) SetWhitelisted(bond crypto.Address, whitelisted bool) error {
	key := state.BucketKey(whitelistBucket, bond.Bytes())
	if !whitelisted {
		return s.kv.KVDelete(key)
	}
	return s.kv.KVPut(key, true)
}
