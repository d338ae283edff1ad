package stacks

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

// Network selects the address version a public key derives to.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Single-sig address version bytes. Mainnet addresses start with "SP",
// testnet with "ST".
const (
	VersionMainnetP2PKH byte = 22
	VersionTestnetP2PKH byte = 26
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var c32Base = big.NewInt(32)

// Hash160 is ripemd160(sha256(b)), the standard key-hash construction.
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}

// c32Encode encodes data in Crockford-style base32. Leading zero bytes
// are preserved as one '0' character each.
func c32Encode(data []byte) string {
	n := new(big.Int).SetBytes(data)
	var digits []byte
	zero := new(big.Int)
	mod := new(big.Int)
	for n.Cmp(zero) > 0 {
		n.DivMod(n, c32Base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	var b strings.Builder
	for _, v := range data {
		if v != 0 {
			break
		}
		b.WriteByte('0')
	}
	b.Write(digits)
	return b.String()
}

func c32Checksum(version byte, data []byte) []byte {
	payload := append([]byte{version}, data...)
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// C32Address renders a version byte and hash160 as a Stacks address.
func C32Address(version byte, hash160 []byte) string {
	payload := append(append([]byte{}, hash160...), c32Checksum(version, hash160)...)
	return "S" + string(c32Alphabet[version]) + c32Encode(payload)
}

// AddressFromPublicKey derives the single-sig Stacks address of a
// compressed or uncompressed secp256k1 public key.
func AddressFromPublicKey(publicKey []byte, network Network) (string, error) {
	if len(publicKey) != 33 && len(publicKey) != 65 {
		return "", fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(publicKey))
	}
	version := VersionMainnetP2PKH
	if network == NetworkTestnet {
		version = VersionTestnetP2PKH
	}
	return C32Address(version, Hash160(publicKey)), nil
}
