package keystore

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for records with missing, mistyped or wrongly sized fields.
	ErrMalformed = errors.New("malformed keystore record")

	// ErrUnsupportedAlgorithm is returned when the record names a kdf, prf or cipher which is not supported.
	ErrUnsupportedAlgorithm = errors.New("unsupported keystore algorithm")

	// ErrAuthenticationFailed is returned when the mac does not match.
	// A wrong password and a corrupted record are deliberately reported the same way.
	ErrAuthenticationFailed = errors.New("could not decrypt key with given password")

	// ErrInvalidKey is returned when the decrypted bytes are not a valid secp256k1 scalar.
	ErrInvalidKey = errors.New("decrypted key is not a valid secp256k1 scalar")
)

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, fmt.Sprintf(format, args...))
}
