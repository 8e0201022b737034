package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// SecretKeyLength is the size in bytes of a secp256k1 private scalar.
const SecretKeyLength = 32

// ErrInvalidSecretKey is returned when bytes are not a usable secp256k1 private scalar.
var ErrInvalidSecretKey = errors.New("secret key is not a valid secp256k1 scalar")

// SecretKey is a raw secp256k1 private scalar.
// It must be zeroed by its owner once it is no longer needed.
type SecretKey [SecretKeyLength]byte

// SecretKeyFromBytes copies b into a SecretKey and checks that it is in the range [1, n-1].
func SecretKeyFromBytes(b []byte) (SecretKey, error) {
	if len(b) != SecretKeyLength {
		return SecretKey{}, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidSecretKey, SecretKeyLength, len(b))
	}

	var key SecretKey
	copy(key[:], b)
	if !key.Valid() {
		key.Zero()
		return SecretKey{}, ErrInvalidSecretKey
	}
	return key, nil
}

// GenerateSecretKey returns a new random secret key.
func GenerateSecretKey() (SecretKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return SecretKey{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	defer priv.Zero()

	return SecretKey(priv.Key.Bytes()), nil
}

// Valid reports whether the key is non-zero and less than the curve order.
func (k *SecretKey) Valid() bool {
	var s secp256k1.ModNScalar
	defer s.Zero()

	overflow := s.SetBytes((*[SecretKeyLength]byte)(k))
	return overflow == 0 && !s.IsZero()
}

// Zero overwrites the key with zeros.
func (k *SecretKey) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// IsZero reports whether every byte of the key is zero.
func (k *SecretKey) IsZero() bool {
	var acc byte
	for _, b := range k {
		acc |= b
	}
	return acc == 0
}

// PrivateKey returns the decred representation of the key.
// The caller must call Zero on the returned value when done.
func (k *SecretKey) PrivateKey() *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(k[:])
}

// PublicKey derives the public key.
func (k *SecretKey) PublicKey() *secp256k1.PublicKey {
	priv := k.PrivateKey()
	defer priv.Zero()
	return priv.PubKey()
}

// Address derives the account address of the key.
func (k *SecretKey) Address() ethcommon.Address {
	return PublicKeyToAddress(k.PublicKey())
}

// String never reveals the key bytes.
func (k SecretKey) String() string {
	return "SecretKey(redacted)"
}

// GoString never reveals the key bytes.
func (k SecretKey) GoString() string {
	return k.String()
}

// Format prints the redacted form for every verb, including %d and %x.
func (k SecretKey) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, k.String())
}

// PublicKeyToAddress returns the account address of a public key.
func PublicKeyToAddress(pub *secp256k1.PublicKey) ethcommon.Address {
	uncompressed := pub.SerializeUncompressed()
	return ethcommon.BytesToAddress(Keccak256(uncompressed[1:])[12:])
}

// Keccak256 return sha3 of a given byte array
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		// hash writes never fail
		_, _ = d.Write(b)
	}
	return d.Sum(nil)
}

// RandomEntropy bytes from rand.Reader
func RandomEntropy(length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := io.ReadFull(rand.Reader, buf)
	if err != nil || n != length {
		return nil, errors.New("failed to read random bytes")
	}
	return buf, nil
}
