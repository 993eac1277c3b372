package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
)

func TestAddressRoundTrip(t *testing.T) {
	addr := AccountAddress("policy")
	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != addr {
		t.Fatalf("round trip mismatch: %s vs %s", decoded, addr)
	}
	if decoded.Prefix() != AccountPrefix {
		t.Fatalf("unexpected prefix %s", decoded.Prefix())
	}
}

func TestAddressDerivationIsDeterministic(t *testing.T) {
	if AccountAddress("policy") != AccountAddress("policy") {
		t.Fatalf("account derivation not deterministic")
	}
	if AccountAddress("policy") == AccountAddress("depositor") {
		t.Fatalf("distinct labels collided")
	}
	first := ContractAddress(1, 0)
	second := ContractAddress(1, 1)
	if first == second || first.IsZero() {
		t.Fatalf("contract addresses must be unique and non-zero")
	}
	if first.Prefix() != ContractPrefix {
		t.Fatalf("unexpected contract prefix %s", first.Prefix())
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	if _, err := DecodeAddress("not-an-address"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTextMarshalling(t *testing.T) {
	addr := ContractAddress(7, 3)
	text, err := addr.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Address
	if err := out.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != addr {
		t.Fatalf("text round trip mismatch")
	}
	var empty Address
	if err := empty.UnmarshalText([]byte("")); err != nil || !empty.IsZero() {
		t.Fatalf("empty text should decode to the zero address")
	}
}

func TestAddressRLP(t *testing.T) {
	type record struct {
		Owner Address
		Empty Address
	}
	in := record{Owner: AccountAddress("dao")}
	raw, err := rlp.EncodeToBytes(&in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out record
	if err := rlp.DecodeBytes(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("rlp mismatch: %+v vs %+v", out, in)
	}
}
