package factory

import (
	"errors"
	"testing"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
	"olympuspro/native/treasury"
)

type mockState struct {
	cfg     *Config
	state   State
	pending *pendingBond
	bonds   map[uint64]*BondRecord
}

func newMockState() *mockState {
	return &mockState{bonds: make(map[uint64]*BondRecord)}
}

func (m *mockState) Config() (*Config, bool, error) {
	if m.cfg == nil {
		return nil, false, nil
	}
	return m.cfg.Clone(), true, nil
}

func (m *mockState) PutConfig(cfg *Config) error {
	m.cfg = cfg.Clone()
	return nil
}

func (m *mockState) State() (*State, error) {
	st := m.state
	return &st, nil
}

func (m *mockState) PutState(st *State) error {
	m.state = *st
	return nil
}

func (m *mockState) Pending() (*pendingBond, bool, error) {
	if m.pending == nil {
		return nil, false, nil
	}
	clone := *m.pending
	return &clone, true, nil
}

func (m *mockState) PutPending(p *pendingBond) error {
	clone := *p
	m.pending = &clone
	return nil
}

func (m *mockState) ClearPending() error {
	m.pending = nil
	return nil
}

func (m *mockState) Bond(id uint64) (*BondRecord, bool, error) {
	record, ok := m.bonds[id]
	return record, ok, nil
}

func (m *mockState) PutBond(id uint64, record *BondRecord) error {
	m.bonds[id] = record
	return nil
}

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(e events.Event) { r.events = append(r.events, e) }

var (
	policy          = crypto.AccountAddress("factory-policy")
	owner           = crypto.AccountAddress("bond-owner")
	olympusTreasury = crypto.AccountAddress("olympus-treasury")
	dao             = crypto.AccountAddress("dao")
	router          = crypto.ContractAddress(3, 0)
	payoutToken     = crypto.ContractAddress(1, 0)
	principalToken  = crypto.ContractAddress(1, 1)
	deployedTreas   = crypto.ContractAddress(5, 0)
	deployedBond    = crypto.ContractAddress(6, 0)
)

const (
	treasuryCode uint64 = 5
	bondCode     uint64 = 6
)

func newTestEngine(t *testing.T) (*Engine, *mockState, *recordingEmitter) {
	t.Helper()
	st := newMockState()
	emitter := &recordingEmitter{}
	engine := NewEngine()
	engine.SetState(st)
	engine.SetEmitter(emitter)
	msg := InstantiateMsg{
		CustomBondCode:     bondCode,
		CustomTreasuryCode: treasuryCode,
		Treasury:           olympusTreasury,
		SubsidyRouter:      router,
		OlympusDAO:         dao,
	}
	if _, err := engine.Instantiate(types.MessageInfo{Sender: policy}, msg); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return engine, st, emitter
}

func instantiateOf(t *testing.T, sub types.SubMsg) types.InstantiateContractMsg {
	t.Helper()
	inst, ok := sub.Msg.(types.InstantiateContractMsg)
	if !ok {
		t.Fatalf("expected instantiate message, got %T", sub.Msg)
	}
	return inst
}

func TestCreateBondAndTreasuryChainsReplies(t *testing.T) {
	engine, st, emitter := newTestEngine(t)
	create := CreateBondAndTreasuryMsg{
		PayoutToken:    types.TokenAsset(payoutToken),
		PrincipalToken: types.TokenAsset(principalToken),
		InitialOwner:   owner,
		TierCeilings:   []decimal.Uint{decimal.NewUint(1000)},
		FeeRates:       []decimal.Decimal{decimal.Percent(2)},
		FeeInPayout:    true,
	}
	if _, err := engine.Execute(types.MessageInfo{Sender: owner}, create); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	resp, err := engine.Execute(types.MessageInfo{Sender: policy}, create)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ReplyOn != types.ReplySuccess {
		t.Fatalf("expected one treasury instantiate with reply, got %+v", resp.Messages)
	}
	inst := instantiateOf(t, resp.Messages[0])
	if inst.CodeID != treasuryCode {
		t.Fatalf("unexpected code id %d", inst.CodeID)
	}
	var treasuryMsg treasury.InstantiateMsg
	if err := sonnet.Unmarshal(inst.Msg, &treasuryMsg); err != nil {
		t.Fatalf("decode treasury instantiate: %v", err)
	}
	if !treasuryMsg.InitialOwner.Equal(owner) || treasuryMsg.PayoutToken != types.TokenAsset(payoutToken) {
		t.Fatalf("unexpected treasury instantiate %+v", treasuryMsg)
	}

	resp, err = engine.Reply(types.Reply{ID: resp.Messages[0].ID, ContractAddress: deployedTreas})
	if err != nil {
		t.Fatalf("treasury reply: %v", err)
	}
	inst = instantiateOf(t, resp.Messages[0])
	if inst.CodeID != bondCode || resp.Messages[0].ReplyOn != types.ReplySuccess {
		t.Fatalf("expected bond instantiate, got %+v", resp.Messages[0])
	}
	var bondMsg bond.InstantiateMsg
	if err := sonnet.Unmarshal(inst.Msg, &bondMsg); err != nil {
		t.Fatalf("decode bond instantiate: %v", err)
	}
	if !bondMsg.CustomTreasury.Equal(deployedTreas) || !bondMsg.OlympusTreasury.Equal(olympusTreasury) ||
		!bondMsg.SubsidyRouter.Equal(router) || !bondMsg.OlympusDAO.Equal(dao) || !bondMsg.FeeInPayout {
		t.Fatalf("unexpected bond instantiate %+v", bondMsg)
	}

	resp, err = engine.Reply(types.Reply{ID: resp.Messages[0].ID, ContractAddress: deployedBond})
	if err != nil {
		t.Fatalf("bond reply: %v", err)
	}
	if id, _ := resp.Attribute("bond_id"); id != "0" {
		t.Fatalf("unexpected bond id %q", id)
	}
	if st.state.BondLength != 1 || st.pending != nil {
		t.Fatalf("registration incomplete: %+v pending=%v", st.state, st.pending)
	}
	record, err := engine.BondInfo(0)
	if err != nil {
		t.Fatalf("bond info: %v", err)
	}
	if !record.Bond.Equal(deployedBond) || !record.CustomTreasury.Equal(deployedTreas) || len(record.FeeTiers) != 1 {
		t.Fatalf("unexpected record %+v", record)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected a registration event, got %d", len(emitter.events))
	}
	if _, err := engine.BondInfo(1); !errors.Is(err, ErrBondNotFound) {
		t.Fatalf("expected bond not found, got %v", err)
	}
}

func TestCreateBondWithExistingTreasury(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	create := CreateBondMsg{
		PrincipalToken: types.NativeAsset("uusd"),
		CustomTreasury: deployedTreas,
		InitialOwner:   owner,
	}
	resp, err := engine.Execute(types.MessageInfo{Sender: policy}, create)
	if err != nil {
		t.Fatalf("create bond: %v", err)
	}
	if instantiateOf(t, resp.Messages[0]).CodeID != bondCode {
		t.Fatalf("expected bond code")
	}
	if _, err := engine.Reply(types.Reply{ID: resp.Messages[0].ID, ContractAddress: deployedBond}); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if _, err := engine.Reply(types.Reply{ID: replyBondCreated, ContractAddress: deployedBond}); !errors.Is(err, ErrNoPendingBond) {
		t.Fatalf("expected no pending bond, got %v", err)
	}
	if st.bonds[0].PrincipalToken != types.NativeAsset("uusd") {
		t.Fatalf("unexpected principal %+v", st.bonds[0].PrincipalToken)
	}
}

func TestCreateTreasuryWithoutReply(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	resp, err := engine.Execute(types.MessageInfo{Sender: policy}, CreateTreasuryMsg{PayoutToken: types.TokenAsset(payoutToken), InitialOwner: owner})
	if err != nil {
		t.Fatalf("create treasury: %v", err)
	}
	if resp.Messages[0].ReplyOn != types.ReplyNever || st.pending != nil {
		t.Fatalf("standalone treasury must not start a bond creation")
	}
}

func TestUpdateConfig(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	code := uint64(9)
	next := crypto.AccountAddress("next")
	if _, err := engine.Execute(types.MessageInfo{Sender: policy}, UpdateConfigMsg{CustomBondCode: &code, Policy: &next}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	cfg, err := engine.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.CustomBondCode != 9 || cfg.CustomTreasuryCode != treasuryCode || !cfg.Policy.Equal(next) {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := engine.Reply(types.Reply{ID: 99}); !errors.Is(err, ErrNoPendingBond) {
		t.Fatalf("expected no pending bond, got %v", err)
	}
}
