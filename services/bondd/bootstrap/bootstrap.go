// Package bootstrap registers the bond contract codes on a host and applies a
// deployment file to it.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/config"
	"olympuspro/core/host"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
	"olympuspro/native/factory"
	"olympuspro/native/subsidy"
	"olympuspro/native/token"
	"olympuspro/native/treasury"
)

// Codes are the code ids assigned by RegisterCodes.
type Codes struct {
	Token    uint64 `json:"token"`
	Treasury uint64 `json:"custom_treasury"`
	Bond     uint64 `json:"custom_bond"`
	Subsidy  uint64 `json:"subsidy_router"`
	Factory  uint64 `json:"factory"`
}

// RegisterCodes stores every contract kind on h. The order is fixed so code
// ids survive restarts.
func RegisterCodes(h *host.Host, pauses common.PauseView) Codes {
	return Codes{
		Token:    h.StoreCode("token", token.New()),
		Treasury: h.StoreCode("custom_treasury", treasury.New(pauses)),
		Bond:     h.StoreCode("custom_bond", bond.New(pauses)),
		Subsidy:  h.StoreCode("subsidy_router", subsidy.New()),
		Factory:  h.StoreCode("factory", factory.New()),
	}
}

// Manifest records the addresses a deployment produced.
type Manifest struct {
	Codes         Codes                     `json:"codes"`
	Policy        crypto.Address            `json:"policy"`
	Factory       crypto.Address            `json:"factory"`
	SubsidyRouter crypto.Address            `json:"subsidy_router"`
	Tokens        map[string]crypto.Address `json:"tokens"`
	Bonds         []BondEntry               `json:"bonds"`
}

type BondEntry struct {
	ID             uint64         `json:"id"`
	Bond           crypto.Address `json:"bond"`
	CustomTreasury crypto.Address `json:"custom_treasury"`
	PayoutToken    types.Asset    `json:"payout_token"`
	PrincipalToken types.Asset    `json:"principal_token"`
}

type deployer struct {
	host     *host.Host
	cfg      *config.Deployment
	manifest *Manifest
	logger   *slog.Logger
}

// Deploy applies cfg to h. Each step is its own committed call; a failure
// leaves the earlier steps in place and reports which one broke.
func Deploy(h *host.Host, codes Codes, cfg *config.Deployment, logger *slog.Logger) (*Manifest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: deployment required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &deployer{
		host:   h,
		cfg:    cfg,
		logger: logger,
		manifest: &Manifest{
			Codes:  codes,
			Policy: cfg.Accounts.Policy,
			Tokens: make(map[string]crypto.Address, len(cfg.Tokens)),
		},
	}
	if err := d.seedNative(); err != nil {
		return nil, err
	}
	if err := d.deployTokens(); err != nil {
		return nil, err
	}
	if err := d.deployProtocol(); err != nil {
		return nil, err
	}
	for i := range cfg.Bonds {
		if err := d.deployBond(&cfg.Bonds[i]); err != nil {
			return nil, fmt.Errorf("bootstrap: bonds[%d]: %w", i, err)
		}
	}
	return d.manifest, nil
}

func (d *deployer) seedNative() error {
	for _, coin := range d.cfg.Native {
		if err := d.host.MintNative(coin.Address, types.NewCoin(coin.Denom, coin.Amount)); err != nil {
			return fmt.Errorf("bootstrap: mint %s: %w", coin.Denom, err)
		}
	}
	return nil
}

func (d *deployer) deployTokens() error {
	for _, tok := range d.cfg.Tokens {
		balances := make([]token.Balance, 0, len(tok.Balances))
		for _, bal := range tok.Balances {
			balances = append(balances, token.Balance{Address: bal.Address, Amount: bal.Amount})
		}
		msg, err := sonnet.Marshal(token.InstantiateMsg{
			Name:            tok.Name,
			Symbol:          tok.Symbol,
			Decimals:        tok.Decimals,
			InitialBalances: balances,
			Minter:          tok.Minter,
		})
		if err != nil {
			return err
		}
		res, err := d.host.Instantiate(d.cfg.Accounts.Policy, d.manifest.Codes.Token, msg, nil, "token:"+tok.Key)
		if err != nil {
			return fmt.Errorf("bootstrap: token %s: %w", tok.Key, err)
		}
		d.manifest.Tokens[tok.Key] = res.Contract
		d.logger.Info("token deployed", slog.String("key", tok.Key), slog.String("contract", res.Contract.String()))
	}
	return nil
}

func (d *deployer) deployProtocol() error {
	policy := d.cfg.Accounts.Policy
	routerMsg, err := sonnet.Marshal(subsidy.InstantiateMsg{Policy: policy})
	if err != nil {
		return err
	}
	res, err := d.host.Instantiate(policy, d.manifest.Codes.Subsidy, routerMsg, nil, "subsidy_router")
	if err != nil {
		return fmt.Errorf("bootstrap: subsidy router: %w", err)
	}
	d.manifest.SubsidyRouter = res.Contract

	factoryMsg, err := sonnet.Marshal(factory.InstantiateMsg{
		CustomBondCode:     d.manifest.Codes.Bond,
		CustomTreasuryCode: d.manifest.Codes.Treasury,
		Treasury:           d.cfg.Accounts.OlympusTreasury,
		SubsidyRouter:      d.manifest.SubsidyRouter,
		OlympusDAO:         d.cfg.Accounts.DAO,
	})
	if err != nil {
		return err
	}
	res, err = d.host.Instantiate(policy, d.manifest.Codes.Factory, factoryMsg, nil, "factory")
	if err != nil {
		return fmt.Errorf("bootstrap: factory: %w", err)
	}
	d.manifest.Factory = res.Contract
	d.logger.Info("protocol deployed",
		slog.String("factory", d.manifest.Factory.String()),
		slog.String("subsidy_router", d.manifest.SubsidyRouter.String()))
	return nil
}

func (d *deployer) resolve(ref string) (types.Asset, error) {
	switch {
	case strings.HasPrefix(ref, config.TokenRefPrefix):
		key := strings.TrimPrefix(ref, config.TokenRefPrefix)
		addr, ok := d.manifest.Tokens[key]
		if !ok {
			return types.Asset{}, fmt.Errorf("token %q not deployed", key)
		}
		return types.TokenAsset(addr), nil
	case strings.HasPrefix(ref, config.NativeRefPrefix):
		return types.NativeAsset(strings.TrimPrefix(ref, config.NativeRefPrefix)), nil
	}
	return types.Asset{}, fmt.Errorf("unresolvable asset %q", ref)
}

func (d *deployer) deployBond(bc *config.Bond) error {
	payout, err := d.resolve(bc.PayoutToken)
	if err != nil {
		return err
	}
	principal, err := d.resolve(bc.PrincipalToken)
	if err != nil {
		return err
	}
	create := factory.CreateBondAndTreasuryMsg{
		PayoutToken:    payout,
		PrincipalToken: principal,
		InitialOwner:   bc.InitialOwner,
		FeeInPayout:    bc.FeeInPayout,
	}
	for _, tier := range bc.FeeTiers {
		create.TierCeilings = append(create.TierCeilings, tier.Ceiling)
		create.FeeRates = append(create.FeeRates, tier.Rate)
	}
	entry, err := d.createPair(create)
	if err != nil {
		return err
	}
	entry.PayoutToken = payout
	entry.PrincipalToken = principal

	owner := bc.InitialOwner
	if err := d.execute(owner, entry.CustomTreasury, "whitelist bond", func() ([]byte, error) {
		return treasury.EncodeExecute(treasury.WhitelistBondMsg{Bond: entry.Bond, Whitelist: true})
	}); err != nil {
		return err
	}
	if bc.Funding != nil {
		if err := d.execute(bc.Funding.From, payout.Contract, "fund treasury", func() ([]byte, error) {
			return token.EncodeTransfer(token.TransferMsg{Recipient: entry.CustomTreasury, Amount: bc.Funding.Amount})
		}); err != nil {
			return err
		}
	}
	if err := d.execute(owner, entry.Bond, "initialize bond", func() ([]byte, error) {
		return bond.EncodeExecute(bond.InitializeBondMsg{
			Terms: bond.Terms{
				ControlVariable: bc.Terms.ControlVariable,
				VestingTerm:     bc.Terms.VestingTerm,
				MinimumPrice:    bc.Terms.MinimumPrice,
				MaxPayout:       bc.Terms.MaxPayout,
				MaxDebt:         bc.Terms.MaxDebt,
			},
			InitialDebt: bc.Terms.InitialDebt,
		})
	}); err != nil {
		return err
	}
	if adj := bc.Adjustment; adj != nil {
		if err := d.execute(owner, entry.Bond, "set adjustment", func() ([]byte, error) {
			return bond.EncodeExecute(bond.SetAdjustmentMsg{
				Addition:  adj.Addition,
				Increment: adj.Increment,
				Target:    adj.Target,
				Buffer:    adj.Buffer,
			})
		}); err != nil {
			return err
		}
	}
	for _, controller := range bc.Controllers {
		controller := controller
		if err := d.execute(d.cfg.Accounts.Policy, d.manifest.SubsidyRouter, "add subsidy controller", func() ([]byte, error) {
			return subsidy.EncodeExecute(subsidy.AddSubsidyControllerMsg{Controller: controller, Bond: entry.Bond})
		}); err != nil {
			return err
		}
	}
	d.manifest.Bonds = append(d.manifest.Bonds, *entry)
	d.logger.Info("bond deployed",
		slog.Uint64("id", entry.ID),
		slog.String("bond", entry.Bond.String()),
		slog.String("custom_treasury", entry.CustomTreasury.String()))
	return nil
}

func (d *deployer) createPair(msg factory.CreateBondAndTreasuryMsg) (*BondEntry, error) {
	payload, err := factory.EncodeExecute(msg)
	if err != nil {
		return nil, err
	}
	res, err := d.host.Execute(d.cfg.Accounts.Policy, d.manifest.Factory, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("create bond and treasury: %w", err)
	}
	rawID, ok := res.Attribute("wasm", "bond_id")
	if !ok {
		return nil, fmt.Errorf("create bond and treasury: factory did not register a bond")
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("create bond and treasury: bond id %q: %w", rawID, err)
	}
	query, err := factory.EncodeBondInfoQuery(id)
	if err != nil {
		return nil, err
	}
	raw, err := d.host.Query(d.manifest.Factory, query)
	if err != nil {
		return nil, fmt.Errorf("query bond %d: %w", id, err)
	}
	var record factory.BondRecord
	if err := sonnet.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode bond %d: %w", id, err)
	}
	return &BondEntry{ID: id, Bond: record.Bond, CustomTreasury: record.CustomTreasury}, nil
}

func (d *deployer) execute(sender, contract crypto.Address, step string, encode func() ([]byte, error)) error {
	payload, err := encode()
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if _, err := d.host.Execute(sender, contract, payload, nil); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

// SaveManifest writes m as JSON next to the data it describes.
func SaveManifest(path string, m *Manifest) error {
	raw, err := sonnet.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// LoadManifest reads a manifest written by SaveManifest. ok is false when no
// manifest exists yet.
func LoadManifest(path string) (*Manifest, bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var m Manifest
	if err := sonnet.Unmarshal(raw, &m); err != nil {
		return nil, false, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, true, nil
}
