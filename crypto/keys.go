package crypto

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// AddressPrefix defines the different types of human-readable address prefixes.
type AddressPrefix string

const (
	// AccountPrefix tags externally owned accounts such as depositors and policy
	// owners.
	AccountPrefix AddressPrefix = "opro"
	// ContractPrefix tags deployed contract instances.
	ContractPrefix AddressPrefix = "oprocontract"
)

// AddressLength is the byte length of every address.
const AddressLength = 20

// Address represents a 20-byte account or contract address with a specific
// prefix. Addresses are comparable and may be used as map keys.
type Address struct {
	prefix AddressPrefix
	bytes  [AddressLength]byte
}

func NewAddress(prefix AddressPrefix, b []byte) Address {
	if len(b) != AddressLength {
		panic("address must be 20 bytes long")
	}
	addr := Address{prefix: prefix}
	copy(addr.bytes[:], b)
	return addr
}

func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a.bytes[:])
	return out
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.bytes == [AddressLength]byte{}
}

// Equal compares the raw address bytes, ignoring the prefix.
func (a Address) Equal(other Address) bool {
	return a.bytes == other.bytes
}

func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(strings.TrimSpace(addrStr))
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	if len(conv) != AddressLength {
		return Address{}, fmt.Errorf("invalid address length %d", len(conv))
	}
	return NewAddress(AddressPrefix(prefix), conv), nil
}

// MustDecodeAddress is DecodeAddress that panics on malformed input.
func MustDecodeAddress(addrStr string) Address {
	addr, err := DecodeAddress(addrStr)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*a = Address{}
		return nil
	}
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

type storedAddress struct {
	Prefix string
	Bytes  []byte
}

// EncodeRLP implements rlp.Encoder.
func (a Address) EncodeRLP(w io.Writer) error {
	var stored storedAddress
	if !a.IsZero() {
		stored = storedAddress{Prefix: string(a.prefix), Bytes: a.bytes[:]}
	}
	return rlp.Encode(w, &stored)
}

// DecodeRLP implements rlp.Decoder.
func (a *Address) DecodeRLP(s *rlp.Stream) error {
	var stored storedAddress
	if err := s.Decode(&stored); err != nil {
		return err
	}
	if len(stored.Bytes) == 0 {
		*a = Address{}
		return nil
	}
	if len(stored.Bytes) != AddressLength {
		return fmt.Errorf("invalid address length %d", len(stored.Bytes))
	}
	*a = NewAddress(AddressPrefix(stored.Prefix), stored.Bytes)
	return nil
}

// --- Address derivation ---

// AccountAddress derives a deterministic account address from a human label.
// Deployments and fixtures use it to name well-known principals such as the
// policy owner or the protocol DAO.
func AccountAddress(label string) Address {
	hash := crypto.Keccak256([]byte("account:" + label))
	return NewAddress(AccountPrefix, hash[12:])
}

// ContractAddress derives the address of the sequence-th contract instantiated
// from the given code identifier.
func ContractAddress(codeID uint64, sequence uint64) Address {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], codeID)
	binary.BigEndian.PutUint64(buf[8:], sequence)
	hash := crypto.Keccak256([]byte("contract:"), buf[:])
	return NewAddress(ContractPrefix, hash[12:])
}
