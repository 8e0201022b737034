package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/filefilego/txsign/crypto"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Decrypt recovers the secret key of a decoded record.
// The mac is checked in constant time before the cipher text is decrypted.
func Decrypt(w *EncryptedWallet, password []byte) (crypto.SecretKey, error) {
	if w == nil {
		return crypto.SecretKey{}, malformed("wallet is nil")
	}

	derived, err := deriveKey(w.KDF, w.KDFParams, password)
	if err != nil {
		return crypto.SecretKey{}, err
	}
	defer zeroBytes(derived)

	decryptionHalf := derived[:decryptionHalfSize]
	macHalf := derived[decryptionHalfSize:derivedKeyLength]

	candidateMAC := crypto.Keccak256(macHalf, w.CipherText)
	if subtle.ConstantTimeCompare(candidateMAC, w.MAC[:]) != 1 {
		return crypto.SecretKey{}, ErrAuthenticationFailed
	}

	plain, err := aesCTRXOR(decryptionHalf, w.CipherIV, w.CipherText)
	if err != nil {
		return crypto.SecretKey{}, err
	}
	defer zeroBytes(plain)

	key, err := crypto.SecretKeyFromBytes(plain)
	if err != nil {
		return crypto.SecretKey{}, ErrInvalidKey
	}

	return key, nil
}

func deriveKey(kdf KDFAlgorithm, p KDFParams, password []byte) ([]byte, error) {
	if p.DKLen != derivedKeyLength {
		return nil, malformed("kdfparams dklen must be %d but got %d", derivedKeyLength, p.DKLen)
	}
	if len(p.Salt) == 0 {
		return nil, malformed("salt is missing")
	}
	if err := checkKDFCost(kdf, p); err != nil {
		return nil, err
	}

	switch kdf {
	case KDFPBKDF2:
		if p.PRF != ksPRF {
			return nil, unsupported("pbkdf2 prf %q", p.PRF)
		}
		if p.Iterations <= 0 {
			return nil, malformed("kdfparams c must be a positive integer")
		}
		return pbkdf2.Key(password, p.Salt, p.Iterations, p.DKLen, sha256.New), nil
	case KDFScrypt:
		dk, err := scrypt.Key(password, p.Salt, p.N, p.R, p.P, p.DKLen)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
		return dk, nil
	default:
		return nil, unsupported("kdf %q", kdf)
	}
}

func aesCTRXOR(key, iv, in []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher block: %w", err)
	}
	if len(iv) != aesBlock.BlockSize() {
		return nil, malformed("cipherparams iv must be %d bytes but got %d", aesBlock.BlockSize(), len(iv))
	}
	stream := cipher.NewCTR(aesBlock, iv)
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
