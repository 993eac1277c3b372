package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/factory"
	"olympuspro/native/subsidy"
	"olympuspro/native/token"
	"olympuspro/native/treasury"
	"olympuspro/storage"
)

var (
	admin      = crypto.AccountAddress("admin")
	owner      = crypto.AccountAddress("owner")
	issuer     = crypto.AccountAddress("issuer")
	depositor  = crypto.AccountAddress("depositor")
	dao        = crypto.AccountAddress("dao")
	olympus    = crypto.AccountAddress("olympus-treasury")
	controller = crypto.AccountAddress("controller")
)

type deployment struct {
	host      *Host
	clock     time.Time
	payout    crypto.Address
	principal crypto.Address
	router    crypto.Address
	factory   crypto.Address
	treasury  crypto.Address
	bond      crypto.Address
}

type countingObserver struct {
	calls  int
	failed int
	events int
}

func (c *countingObserver) ObserveCall(entry string, err error, elapsed time.Duration) {
	c.calls++
	if err != nil {
		c.failed++
	}
}

func (c *countingObserver) ObserveEvents(events []types.Event) { c.events += len(events) }

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := sonnet.Marshal(v)
	require.NoError(t, err)
	return raw
}

func (d *deployment) advance(dur time.Duration) { d.clock = d.clock.Add(dur) }

func (d *deployment) balance(t *testing.T, tokenAddr, holder crypto.Address) string {
	t.Helper()
	payload, err := token.EncodeBalanceQuery(holder)
	require.NoError(t, err)
	raw, err := d.host.Query(tokenAddr, payload)
	require.NoError(t, err)
	var resp token.BalanceResponse
	require.NoError(t, sonnet.Unmarshal(raw, &resp))
	return resp.Balance.String()
}

func (d *deployment) bondState(t *testing.T) *bond.State {
	t.Helper()
	st, err := bond.QueryState(queryAdapter{d.host}, d.bond)
	require.NoError(t, err)
	return st
}

type queryAdapter struct{ h *Host }

func (q queryAdapter) QueryContract(contract crypto.Address, msg []byte) ([]byte, error) {
	return q.h.Query(contract, msg)
}

func (q queryAdapter) NativeSupply(string) (decimal.Uint, error) { return decimal.ZeroUint(), nil }

func deploy(t *testing.T) *deployment {
	t.Helper()
	d := &deployment{host: New(storage.NewMemDB()), clock: time.Unix(1_700_000_000, 0)}
	d.host.SetNowFunc(func() time.Time { return d.clock })

	tokenCode := d.host.StoreCode("token", token.New())
	treasuryCode := d.host.StoreCode("custom_treasury", treasury.New(nil))
	bondCode := d.host.StoreCode("custom_bond", bond.New(nil))
	routerCode := d.host.StoreCode("subsidy_router", subsidy.New())
	factoryCode := d.host.StoreCode("factory", factory.New())

	res, err := d.host.Instantiate(issuer, tokenCode, mustJSON(t, token.InstantiateMsg{
		Name: "Payout", Symbol: "PAY", Decimals: 6,
		InitialBalances: []token.Balance{{Address: issuer, Amount: decimal.NewUint(1_000_000_000)}},
	}), nil, "payout")
	require.NoError(t, err)
	d.payout = res.Contract

	res, err = d.host.Instantiate(issuer, tokenCode, mustJSON(t, token.InstantiateMsg{
		Name: "Principal", Symbol: "LP", Decimals: 8,
		InitialBalances: []token.Balance{{Address: depositor, Amount: decimal.NewUint(1_000_000_000)}},
	}), nil, "principal")
	require.NoError(t, err)
	d.principal = res.Contract

	res, err = d.host.Instantiate(admin, routerCode, mustJSON(t, subsidy.InstantiateMsg{Policy: admin}), nil, "router")
	require.NoError(t, err)
	d.router = res.Contract

	res, err = d.host.Instantiate(admin, factoryCode, mustJSON(t, factory.InstantiateMsg{
		CustomBondCode:     bondCode,
		CustomTreasuryCode: treasuryCode,
		Treasury:           olympus,
		SubsidyRouter:      d.router,
		OlympusDAO:         dao,
	}), nil, "factory")
	require.NoError(t, err)
	d.factory = res.Contract

	create, err := factory.EncodeExecute(factory.CreateBondAndTreasuryMsg{
		PayoutToken:    types.TokenAsset(d.payout),
		PrincipalToken: types.TokenAsset(d.principal),
		InitialOwner:   owner,
	})
	require.NoError(t, err)
	res, err = d.host.Execute(admin, d.factory, create, nil)
	require.NoError(t, err)
	registered, ok := res.Attribute("wasm", "bond_id")
	require.True(t, ok)
	require.Equal(t, "0", registered)

	payload, err := factory.EncodeBondInfoQuery(0)
	require.NoError(t, err)
	raw, err := d.host.Query(d.factory, payload)
	require.NoError(t, err)
	var record factory.BondRecord
	require.NoError(t, sonnet.Unmarshal(raw, &record))
	d.bond = record.Bond
	d.treasury = record.CustomTreasury
	require.False(t, d.bond.IsZero())
	require.False(t, d.treasury.IsZero())

	whitelist, err := treasury.EncodeExecute(treasury.WhitelistBondMsg{Bond: d.bond, Whitelist: true})
	require.NoError(t, err)
	_, err = d.host.Execute(owner, d.treasury, whitelist, nil)
	require.NoError(t, err)

	fund, err := token.EncodeTransfer(token.TransferMsg{Recipient: d.treasury, Amount: decimal.NewUint(1_000_000)})
	require.NoError(t, err)
	_, err = d.host.Execute(issuer, d.payout, fund, nil)
	require.NoError(t, err)

	initialize, err := bond.EncodeExecute(bond.InitializeBondMsg{
		Terms: bond.Terms{
			ControlVariable: decimal.MustParseDecimal("0.1"),
			VestingTerm:     864000,
			MinimumPrice:    decimal.MustParseDecimal("0.157284"),
			MaxPayout:       decimal.MustParseDecimal("0.00002"),
			MaxDebt:         decimal.NewUint(300000),
		},
		InitialDebt: decimal.NewUint(12500),
	})
	require.NoError(t, err)
	_, err = d.host.Execute(owner, d.bond, initialize, nil)
	require.NoError(t, err)
	return d
}

func (d *deployment) deposit(t *testing.T, amount uint64) (*Result, error) {
	t.Helper()
	hook, err := bond.EncodeDepositHook(bond.DepositHook{MaxPrice: decimal.One(), Depositor: depositor})
	require.NoError(t, err)
	send, err := token.EncodeSend(token.SendMsg{Contract: d.bond, Amount: decimal.NewUint(amount), Msg: hook})
	require.NoError(t, err)
	return d.host.Execute(depositor, d.principal, send, nil)
}

func TestBondLifecycle(t *testing.T) {
	d := deploy(t)
	d.advance(100 * time.Second)

	res, err := d.deposit(t, 250000)
	require.NoError(t, err)
	payout, ok := res.Attribute("wasm", "payout")
	require.True(t, ok)
	require.Equal(t, "15894", payout)
	_, ok = res.Attribute("bond.deposited", "depositor")
	require.True(t, ok)

	require.Equal(t, "250000", d.balance(t, d.principal, d.treasury))
	require.Equal(t, "15894", d.balance(t, d.payout, d.bond))
	require.Equal(t, "984106", d.balance(t, d.payout, d.treasury))
	require.Equal(t, "14999", d.bondState(t).TotalDebt.String())

	redeem, err := bond.EncodeExecute(bond.RedeemMsg{User: depositor})
	require.NoError(t, err)
	d.advance(432000 * time.Second)
	_, err = d.host.Execute(depositor, d.bond, redeem, nil)
	require.NoError(t, err)
	require.Equal(t, "7947", d.balance(t, d.payout, depositor))

	d.advance(432000 * time.Second)
	_, err = d.host.Execute(depositor, d.bond, redeem, nil)
	require.NoError(t, err)
	require.Equal(t, "15894", d.balance(t, d.payout, depositor))

	_, err = d.host.Execute(depositor, d.bond, redeem, nil)
	require.ErrorIs(t, err, bond.ErrNothingToRedeem)
}

func TestFailedDepositRollsBack(t *testing.T) {
	d := deploy(t)
	observer := &countingObserver{}
	d.host.SetObserver(observer)
	d.advance(100 * time.Second)

	_, err := d.deposit(t, 100000)
	require.ErrorIs(t, err, bond.ErrBondTooSmall)
	require.Equal(t, "1000000000", d.balance(t, d.principal, depositor))
	require.Equal(t, "0", d.balance(t, d.principal, d.bond))
	require.Equal(t, "12500", d.bondState(t).TotalDebt.String())

	_, err = d.deposit(t, 4000000)
	require.ErrorIs(t, err, bond.ErrBondTooLarge)
	require.Equal(t, 2, observer.calls)
	require.Equal(t, 2, observer.failed)
}

func TestUnwhitelistedBondCannotDrawPayout(t *testing.T) {
	d := deploy(t)
	unlist, err := treasury.EncodeExecute(treasury.WhitelistBondMsg{Bond: d.bond, Whitelist: false})
	require.NoError(t, err)
	_, err = d.host.Execute(owner, d.treasury, unlist, nil)
	require.NoError(t, err)

	d.advance(100 * time.Second)
	_, err = d.deposit(t, 250000)
	require.ErrorIs(t, err, treasury.ErrNotWhitelisted)
	require.Equal(t, "0", d.balance(t, d.principal, d.treasury))
}

func TestSubsidyRouting(t *testing.T) {
	d := deploy(t)
	d.advance(100 * time.Second)
	_, err := d.deposit(t, 250000)
	require.NoError(t, err)

	pay, err := subsidy.EncodeExecute(subsidy.PaySubsidyMsg{})
	require.NoError(t, err)
	_, err = d.host.Execute(controller, d.router, pay, nil)
	require.ErrorIs(t, err, subsidy.ErrControllerNotFound)

	add, err := subsidy.EncodeExecute(subsidy.AddSubsidyControllerMsg{Controller: controller, Bond: d.bond})
	require.NoError(t, err)
	_, err = d.host.Execute(admin, d.router, add, nil)
	require.NoError(t, err)

	res, err := d.host.Execute(controller, d.router, pay, nil)
	require.NoError(t, err)
	amount, ok := res.Attribute("wasm", "amount")
	require.True(t, ok)
	require.Equal(t, "15894", amount)
	require.True(t, d.bondState(t).PayoutSinceLastSubsidy.IsZero())

	direct, err := bond.EncodeExecute(bond.PaySubsidyMsg{})
	require.NoError(t, err)
	_, err = d.host.Execute(controller, d.bond, direct, nil)
	require.ErrorIs(t, err, bond.ErrOnlySubsidyController)
}

func TestNativeBankAndSupply(t *testing.T) {
	h := New(storage.NewMemDB())
	require.NoError(t, h.MintNative(depositor, types.NewCoin("uusd", decimal.NewUint(5000))))
	tokenCode := h.StoreCode("token", token.New())
	res, err := h.Instantiate(issuer, tokenCode, mustJSON(t, token.InstantiateMsg{
		Symbol: "T", Decimals: 6,
		InitialBalances: []token.Balance{{Address: depositor, Amount: decimal.NewUint(10)}},
	}), nil, "t")
	require.NoError(t, err)

	transfer, err := token.EncodeTransfer(token.TransferMsg{Recipient: issuer, Amount: decimal.NewUint(1)})
	require.NoError(t, err)
	_, err = h.Execute(depositor, res.Contract, transfer, []types.Coin{types.NewCoin("uusd", decimal.NewUint(7000))})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = h.Execute(depositor, res.Contract, transfer, []types.Coin{types.NewCoin("uusd", decimal.NewUint(2000))})
	require.NoError(t, err)
	left, err := h.NativeBalance(depositor, "uusd")
	require.NoError(t, err)
	require.Equal(t, "3000", left)
	held, err := h.NativeBalance(res.Contract, "uusd")
	require.NoError(t, err)
	require.Equal(t, "2000", held)

	_, err = h.Execute(depositor, crypto.ContractAddress(99, 0), transfer, nil)
	require.ErrorIs(t, err, ErrUnknownContract)
}
