package keystore

import (
	"crypto/aes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/filefilego/txsign/crypto"
	"github.com/google/uuid"
)

const saltLength = 32

// EncryptOptions selects the kdf and its cost when writing a record.
type EncryptOptions struct {
	KDF        KDFAlgorithm
	Iterations int
	ScryptN    int
	ScryptR    int
	ScryptP    int
}

var (
	// StandardScrypt is the scrypt cost used by most wallets.
	StandardScrypt = EncryptOptions{KDF: KDFScrypt, ScryptN: 1 << 18, ScryptR: 8, ScryptP: 1}

	// LightScrypt uses about 4MB of memory and is meant for constrained hosts.
	LightScrypt = EncryptOptions{KDF: KDFScrypt, ScryptN: 1 << 12, ScryptR: 8, ScryptP: 6}

	// StandardPBKDF2 is pbkdf2 with hmac-sha256.
	StandardPBKDF2 = EncryptOptions{KDF: KDFPBKDF2, Iterations: 262144}
)

// Encrypt marshals a key to a version 3 keystore record with a random salt, iv and id.
func Encrypt(key *crypto.SecretKey, password []byte, opts EncryptOptions) ([]byte, error) {
	salt, err := crypto.RandomEntropy(saltLength)
	if err != nil {
		return nil, err
	}
	iv, err := crypto.RandomEntropy(aes.BlockSize)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate random uuid: %w", err)
	}
	return EncryptWithParams(key, password, opts, salt, iv, id)
}

// EncryptWithParams is Encrypt with caller supplied salt, iv and id.
func EncryptWithParams(key *crypto.SecretKey, password []byte, opts EncryptOptions, salt, iv []byte, id uuid.UUID) ([]byte, error) {
	if key == nil || !key.Valid() {
		return nil, errors.New("key is not valid")
	}
	if len(password) == 0 {
		return nil, errors.New("passphrase is empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt is empty")
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv must be %d bytes", aes.BlockSize)
	}

	params := KDFParams{DKLen: derivedKeyLength, Salt: salt}
	kdfJSON := kdfParamsJSON{
		DKLen: intPtr(derivedKeyLength),
		Salt:  hex.EncodeToString(salt),
	}
	switch opts.KDF {
	case KDFScrypt:
		params.N, params.R, params.P = opts.ScryptN, opts.ScryptR, opts.ScryptP
		kdfJSON.N, kdfJSON.R, kdfJSON.P = intPtr(opts.ScryptN), intPtr(opts.ScryptR), intPtr(opts.ScryptP)
	case KDFPBKDF2:
		params.Iterations, params.PRF = opts.Iterations, ksPRF
		kdfJSON.C, kdfJSON.PRF = intPtr(opts.Iterations), ksPRF
	default:
		return nil, unsupported("kdf %q", opts.KDF)
	}

	dk, err := deriveKey(opts.KDF, params, password)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(dk)

	cipherText, err := aesCTRXOR(dk[:decryptionHalfSize], iv, key[:])
	if err != nil {
		return nil, err
	}
	mac := crypto.Keccak256(dk[decryptionHalfSize:derivedKeyLength], cipherText)

	encjson := encryptedKeyJSON{
		Address: strings.ToLower(strings.TrimPrefix(key.Address().Hex(), "0x")),
		Crypto: &cryptoJSON{
			Cipher:     ksCipher,
			CipherText: hex.EncodeToString(cipherText),
			CipherParams: cipherparamsJSON{
				IV: hex.EncodeToString(iv),
			},
			KDF:       string(opts.KDF),
			KDFParams: kdfJSON,
			MAC:       hex.EncodeToString(mac),
		},
		ID:      id.String(),
		Version: intPtr(ksVersion),
	}
	data, err := json.MarshalIndent(&encjson, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	return data, nil
}

func intPtr(v int) *int {
	return &v
}
