package bootstrap

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"olympuspro/config"
	"olympuspro/core/decimal"
	"olympuspro/core/host"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/subsidy"
	"olympuspro/native/token"
	"olympuspro/storage"
)

var (
	policy     = crypto.AccountAddress("policy")
	dao        = crypto.AccountAddress("dao")
	olympus    = crypto.AccountAddress("olympus")
	owner      = crypto.AccountAddress("owner")
	issuer     = crypto.AccountAddress("issuer")
	depositor  = crypto.AccountAddress("depositor")
	controller = crypto.AccountAddress("controller")
)

func deployment(t *testing.T) *config.Deployment {
	t.Helper()
	cfg, err := config.ParseDeployment(fmt.Sprintf(`
[accounts]
policy = %[1]q
dao = %[2]q
olympus_treasury = %[3]q

[[native]]
address = %[6]q
denom = "uusd"
amount = "1000000"

[[tokens]]
key = "payout"
symbol = "PAY"
decimals = 6
[[tokens.balances]]
address = %[5]q
amount = "1000000000"

[[tokens]]
key = "lp"
symbol = "LP"
decimals = 8
[[tokens.balances]]
address = %[6]q
amount = "1000000000"

[[bonds]]
payout_token = "token:payout"
principal_token = "token:lp"
initial_owner = %[4]q
subsidy_controllers = [%[7]q]
[bonds.terms]
control_variable = "0.1"
vesting_term = 864000
minimum_price = "0.157284"
max_payout = "0.00002"
max_debt = "300000"
initial_debt = "12500"
[bonds.funding]
from = %[5]q
amount = "1000000"

[[bonds]]
payout_token = "token:payout"
principal_token = "native:uusd"
initial_owner = %[4]q
[bonds.terms]
control_variable = "0.1"
vesting_term = 864000
max_payout = "0.00002"
max_debt = "300000"
[bonds.adjustment]
addition = true
increment = "0.0003"
target = "0.2"
buffer = 100
`, policy, dao, olympus, owner, issuer, depositor, controller))
	require.NoError(t, err)
	return cfg
}

func newHost(clock *time.Time) *host.Host {
	h := host.New(storage.NewMemDB())
	h.SetNowFunc(func() time.Time { return *clock })
	return h
}

func TestDeployBuildsManifest(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	h := newHost(&clock)
	codes := RegisterCodes(h, nil)
	require.Equal(t, Codes{Token: 1, Treasury: 2, Bond: 3, Subsidy: 4, Factory: 5}, codes)

	manifest, err := Deploy(h, codes, deployment(t), nil)
	require.NoError(t, err)
	require.Len(t, manifest.Tokens, 2)
	require.Len(t, manifest.Bonds, 2)
	require.Equal(t, uint64(0), manifest.Bonds[0].ID)
	require.Equal(t, uint64(1), manifest.Bonds[1].ID)
	require.True(t, manifest.Bonds[1].PrincipalToken.IsNative())

	inst, err := h.Instance(manifest.Bonds[0].Bond)
	require.NoError(t, err)
	require.Equal(t, codes.Bond, inst.CodeID)

	route, err := subsidy.EncodeBondForControllerQuery(controller)
	require.NoError(t, err)
	raw, err := h.Query(manifest.SubsidyRouter, route)
	require.NoError(t, err)
	var routed subsidy.BondForControllerResponse
	require.NoError(t, sonnet.Unmarshal(raw, &routed))
	require.True(t, routed.Bond.Equal(manifest.Bonds[0].Bond))

	clock = clock.Add(100 * time.Second)
	hook, err := bond.EncodeDepositHook(bond.DepositHook{MaxPrice: decimal.One(), Depositor: depositor})
	require.NoError(t, err)
	send, err := token.EncodeSend(token.SendMsg{Contract: manifest.Bonds[0].Bond, Amount: decimal.NewUint(250000), Msg: hook})
	require.NoError(t, err)
	res, err := h.Execute(depositor, manifest.Tokens["lp"], send, nil)
	require.NoError(t, err)
	payout, ok := res.Attribute("wasm", "payout")
	require.True(t, ok)
	require.Equal(t, "15894", payout)
}

func TestDeployStopsAtFailingStep(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	h := newHost(&clock)
	cfg := deployment(t)
	cfg.Bonds[0].Terms.MaxPayout = decimal.MustParseDecimal("0.5")

	_, err := Deploy(h, RegisterCodes(h, nil), cfg, nil)
	require.ErrorIs(t, err, bond.ErrPayoutAboveOnePercent)
	require.ErrorContains(t, err, "initialize bond")
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "manifest.json")
	_, ok, err := LoadManifest(path)
	require.NoError(t, err)
	require.False(t, ok)

	clock := time.Unix(1_700_000_000, 0)
	h := newHost(&clock)
	manifest, err := Deploy(h, RegisterCodes(h, nil), deployment(t), nil)
	require.NoError(t, err)
	require.NoError(t, SaveManifest(path, manifest))

	loaded, ok, err := LoadManifest(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, loaded.Factory.Equal(manifest.Factory))
	require.Equal(t, manifest.Codes, loaded.Codes)
	require.True(t, loaded.Tokens["payout"].Equal(manifest.Tokens["payout"]))
	require.True(t, loaded.Bonds[1].PrincipalToken.IsNative())
}
