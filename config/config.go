package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// TokenRefPrefix marks an asset reference resolved against Deployment.Tokens.
	TokenRefPrefix = "token:"
	// NativeRefPrefix marks an asset reference naming a native denomination.
	NativeRefPrefix = "native:"
)

// LoadDeployment reads, normalizes and validates a deployment file.
func LoadDeployment(path string) (*Deployment, error) {
	cfg := &Deployment{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode deployment %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("deployment %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDeployment decodes a deployment from TOML text.
func ParseDeployment(data string) (*Deployment, error) {
	cfg := &Deployment{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("decode deployment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (d *Deployment) normalize() {
	for i := range d.Native {
		d.Native[i].Denom = strings.TrimSpace(d.Native[i].Denom)
	}
	for i := range d.Tokens {
		tok := &d.Tokens[i]
		tok.Key = strings.ToLower(strings.TrimSpace(tok.Key))
		tok.Symbol = strings.TrimSpace(tok.Symbol)
		if strings.TrimSpace(tok.Name) == "" {
			tok.Name = tok.Symbol
		}
	}
	for i := range d.Bonds {
		bond := &d.Bonds[i]
		bond.PayoutToken = normalizeRef(bond.PayoutToken)
		bond.PrincipalToken = normalizeRef(bond.PrincipalToken)
	}
}

func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, TokenRefPrefix) {
		return TokenRefPrefix + strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ref, TokenRefPrefix)))
	}
	return ref
}

// Token returns the token declared under key.
func (d *Deployment) Token(key string) (*Token, bool) {
	for i := range d.Tokens {
		if d.Tokens[i].Key == key {
			return &d.Tokens[i], true
		}
	}
	return nil, false
}
