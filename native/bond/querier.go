package bond

import (
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/token"
	"olympuspro/native/treasury"
)

// Querier is the read-only peer capability the bond relies on.
type Querier interface {
	TokenInfo(asset types.Asset) (token.Info, error)
	TreasuryPayoutToken(treasury crypto.Address) (types.Asset, error)
}

type peerQuerier struct {
	q types.Querier
}

// NewPeerQuerier answers bond queries by calling peer contracts through the
// host querier.
func NewPeerQuerier(q types.Querier) Querier {
	return peerQuerier{q: q}
}

func (p peerQuerier) TokenInfo(asset types.Asset) (token.Info, error) {
	return token.QueryInfo(p.q, asset)
}

func (p peerQuerier) TreasuryPayoutToken(addr crypto.Address) (types.Asset, error) {
	cfg, err := treasury.QueryConfig(p.q, addr)
	if err != nil {
		return types.Asset{}, err
	}
	return cfg.PayoutToken, nil
}
