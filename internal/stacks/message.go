// Package stacks implements the Stacks message-signing scheme: the
// prefixed sha256 digest wallets sign, recoverable secp256k1 signature
// verification in RSV layout, and c32check address derivation.
package stacks

import (
	"crypto/sha256"
	"encoding/binary"
)

// chainPrefix is the domain-separation prefix every signed message is
// wrapped with. The leading byte is the length of the remainder.
const chainPrefix = "\x17Stacks Signed Message:\n"

// encodeCompactSize encodes n as a Bitcoin CompactSize varint.
func encodeCompactSize(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		b := make([]byte, 3)
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(n))
		return b
	case n <= 0xffffffff:
		b := make([]byte, 5)
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(n))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], n)
		return b
	}
}

// EncodeMessage wraps a raw message with the chain prefix and its
// length varint, producing the exact byte sequence that is hashed.
func EncodeMessage(message []byte) []byte {
	length := encodeCompactSize(uint64(len(message)))
	encoded := make([]byte, 0, len(chainPrefix)+len(length)+len(message))
	encoded = append(encoded, chainPrefix...)
	encoded = append(encoded, length...)
	encoded = append(encoded, message...)
	return encoded
}

// MessageHash returns the 32-byte digest wallets sign over.
func MessageHash(message string) []byte {
	sum := sha256.Sum256(EncodeMessage([]byte(message)))
	return sum[:]
}
