package stacks

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// VerifyMessageSignatureRsv reports whether signature is a valid
// recoverable secp256k1 signature over the Stacks digest of message,
// verifiable under publicKey. The signature is 65 bytes hex in RSV
// layout (recovery byte last); the public key is 33 or 65 bytes hex.
// Malformed or empty inputs yield false, never a panic.
func VerifyMessageSignatureRsv(message, signature, publicKey string) bool {
	if message == "" || signature == "" || publicKey == "" {
		return false
	}
	sig, err := decodeHex(signature)
	if err != nil || len(sig) != 65 {
		return false
	}
	pub, err := decodeHex(publicKey)
	if err != nil || (len(pub) != 33 && len(pub) != 65) {
		return false
	}
	// The recovery byte is not needed for verification; r||s suffices.
	return crypto.VerifySignature(pub, MessageHash(message), sig[:64])
}

// MessageVerifier adapts the package functions to the verifier port.
type MessageVerifier struct{}

func (MessageVerifier) Verify(message, signature, publicKey string) bool {
	return VerifyMessageSignatureRsv(message, signature, publicKey)
}

// AddressMatches reports whether the claimed wallet address is the
// c32check derivation of publicKey on either network.
func (MessageVerifier) AddressMatches(address, publicKey string) bool {
	pub, err := decodeHex(publicKey)
	if err != nil {
		return false
	}
	for _, network := range []Network{NetworkMainnet, NetworkTestnet} {
		derived, err := AddressFromPublicKey(pub, network)
		if err != nil {
			return false
		}
		if strings.EqualFold(derived, address) {
			return true
		}
	}
	return false
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
