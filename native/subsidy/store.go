package subsidy

import (
	"olympuspro/core/state"
	"olympuspro/crypto"
)

var (
	configKey        = state.ItemKey("subsidy/config")
	controllerBucket = "subsidy/controller"
)

type engineState interface {
	Config() (*Config, bool, error)
	PutConfig(*Config) error
	BondFor(controller crypto.Address) (crypto.Address, bool, error)
	PutController(controller, bond crypto.Address) error
	DeleteController(controller crypto.Address) error
}

// Store persists router records in a contract namespace.
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

func (s *Store) BondFor(controller crypto.Address) (crypto.Address, bool, error) {
	var bond crypto.Address
	ok, err := s.kv.KVGet(state.BucketKey(controllerBucket, controller.Bytes()), &bond)
	return bond, ok, err
}

func (s *Store) PutController(controller, bond crypto.Address) error {
	return s.kv.KVPut(state.BucketKey(controllerBucket, controller.Bytes()), bond)
}

func (s *Store) DeleteController(controller crypto.Address) error {
	return s.kv.KVDelete(state.BucketKey(controllerBucket, controller.Bytes()))
}
