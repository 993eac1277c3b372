package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"olympuspro/crypto"
)

var (
	testPolicy  = crypto.AccountAddress("policy")
	testDAO     = crypto.AccountAddress("dao")
	testOlympus = crypto.AccountAddress("olympus")
	testOwner   = crypto.AccountAddress("owner")
	testIssuer  = crypto.AccountAddress("issuer")
)

func sampleDeployment() string {
	return fmt.Sprintf(`
[accounts]
policy = %[1]q
dao = %[2]q
olympus_treasury = %[3]q

[[native]]
address = %[5]q
denom = "uusd"
amount = "5000000"

[[tokens]]
key = " PAYOUT "
symbol = "PAY"
decimals = 6
[[tokens.balances]]
address = %[5]q
amount = "1000000000"

[[tokens]]
key = "lp"
name = "Liquidity"
symbol = "LP"
decimals = 8

[[bonds]]
payout_token = "token:Payout"
principal_token = "token:lp"
initial_owner = %[4]q
fee_in_payout = true
subsidy_controllers = [%[4]q]

[[bonds.fee_tiers]]
ceiling = "1000000"
rate = "0.02"

[bonds.terms]
control_variable = "0.1"
vesting_term = 864000
minimum_price = "0.157284"
max_payout = "0.00002"
max_debt = "300000"
initial_debt = "12500"

[bonds.adjustment]
addition = true
increment = "0.003"
target = "0.2"
buffer = 100

[bonds.funding]
from = %[5]q
amount = "1000000"
`, testPolicy, testDAO, testOlympus, testOwner, testIssuer)
}

func TestLoadDeployment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment.toml")
	if err := os.WriteFile(path, []byte(sampleDeployment()), 0o600); err != nil {
		t.Fatalf("write deployment: %v", err)
	}
	cfg, err := LoadDeployment(path)
	if err != nil {
		t.Fatalf("load deployment: %v", err)
	}
	if !cfg.Accounts.Policy.Equal(testPolicy) {
		t.Fatalf("unexpected policy %s", cfg.Accounts.Policy)
	}
	if len(cfg.Tokens) != 2 || cfg.Tokens[0].Key != "payout" || cfg.Tokens[0].Name != "PAY" {
		t.Fatalf("tokens not normalized: %+v", cfg.Tokens)
	}
	if got := cfg.Tokens[0].Balances[0].Amount.String(); got != "1000000000" {
		t.Fatalf("unexpected balance %s", got)
	}
	if len(cfg.Native) != 1 || cfg.Native[0].Amount.String() != "5000000" {
		t.Fatalf("unexpected native seed %+v", cfg.Native)
	}
	bond := cfg.Bonds[0]
	if bond.PayoutToken != "token:payout" {
		t.Fatalf("payout ref not normalized: %s", bond.PayoutToken)
	}
	if bond.Terms.ControlVariable.String() != "0.1" || bond.Terms.VestingTerm != 864000 {
		t.Fatalf("unexpected terms %+v", bond.Terms)
	}
	if bond.Terms.MaxPayout.String() != "0.00002" || bond.Terms.InitialDebt.String() != "12500" {
		t.Fatalf("unexpected terms %+v", bond.Terms)
	}
	if bond.Adjustment == nil || bond.Adjustment.Buffer != 100 || bond.Adjustment.Increment.String() != "0.003" {
		t.Fatalf("unexpected adjustment %+v", bond.Adjustment)
	}
	if len(bond.FeeTiers) != 1 || bond.FeeTiers[0].Rate.String() != "0.02" {
		t.Fatalf("unexpected fee tiers %+v", bond.FeeTiers)
	}
	if bond.Funding == nil || !bond.Funding.From.Equal(testIssuer) {
		t.Fatalf("unexpected funding %+v", bond.Funding)
	}
	if len(bond.Controllers) != 1 || !bond.Controllers[0].Equal(testOwner) {
		t.Fatalf("unexpected controllers %+v", bond.Controllers)
	}
}

func TestLoadDeploymentRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment.toml")
	contents := sampleDeployment() + "\nsurprise = true\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write deployment: %v", err)
	}
	if _, err := LoadDeployment(path); err == nil || !strings.Contains(err.Error(), "surprise") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidateDeployment(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Deployment)
		want   string
	}{
		{"missing policy", func(d *Deployment) { d.Accounts.Policy = crypto.Address{} }, "policy required"},
		{"duplicate token", func(d *Deployment) { d.Tokens[1].Key = "payout" }, "duplicate key"},
		{"unknown token", func(d *Deployment) { d.Bonds[0].PrincipalToken = "token:missing" }, "unknown token"},
		{"native payout", func(d *Deployment) { d.Bonds[0].PayoutToken = "native:uusd" }, "must reference a token"},
		{"bad ref", func(d *Deployment) { d.Bonds[0].PrincipalToken = "lp" }, "must start with"},
		{"short vesting", func(d *Deployment) { d.Bonds[0].Terms.VestingTerm = 3600 }, "vesting_term"},
		{"missing owner", func(d *Deployment) { d.Bonds[0].InitialOwner = crypto.Address{} }, "initial_owner"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseDeployment(sampleDeployment())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestNativePrincipalReference(t *testing.T) {
	cfg, err := ParseDeployment(sampleDeployment())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Bonds[0].PrincipalToken = "native:uusd"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("native principal should validate: %v", err)
	}
}
