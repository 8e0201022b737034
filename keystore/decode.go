package keystore

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	ksVersion = 3
	ksCipher  = "aes-128-ctr"
	ksPRF     = "hmac-sha256"

	// derivedKeyLength is split into a decryption half and a mac half.
	derivedKeyLength   = 32
	decryptionHalfSize = 16

	ivLength         = 16
	cipherTextLength = 32
	macLength        = 32

	// maxScryptMemory bounds 128*n*r and 128*r*p, the buffers scrypt allocates.
	maxScryptMemory     = 1 << 30
	maxPBKDF2Iterations = 10_000_000
)

// KDFAlgorithm identifies the password based key derivation function of a record.
type KDFAlgorithm string

const (
	// KDFPBKDF2 is PBKDF2 with HMAC-SHA256.
	KDFPBKDF2 KDFAlgorithm = "pbkdf2"
	// KDFScrypt is scrypt.
	KDFScrypt KDFAlgorithm = "scrypt"
)

// KDFParams are the cost parameters of the key derivation.
// Iterations and PRF apply to pbkdf2, N, R and P to scrypt.
type KDFParams struct {
	Iterations int
	PRF        string
	N          int
	R          int
	P          int
	DKLen      int
	Salt       []byte
}

// EncryptedWallet is a validated version 3 keystore record.
type EncryptedWallet struct {
	ID         uuid.UUID
	Address    *ethcommon.Address
	Cipher     string
	CipherText []byte
	CipherIV   []byte
	KDF        KDFAlgorithm
	KDFParams  KDFParams
	MAC        [macLength]byte
}

// Decode parses and validates a keystore record without doing any cryptographic work.
func Decode(raw []byte) (*EncryptedWallet, error) {
	encjson := encryptedKeyJSON{}
	if err := json.Unmarshal(raw, &encjson); err != nil {
		return nil, malformed("failed to unmarshal key data: %v", err)
	}

	if encjson.Version == nil {
		return nil, malformed("version is missing")
	}
	if *encjson.Version != ksVersion {
		return nil, malformed("version %d is not supported", *encjson.Version)
	}

	if encjson.Crypto == nil {
		return nil, malformed("crypto section is missing")
	}
	c := encjson.Crypto

	if c.Cipher == "" {
		return nil, malformed("cipher is missing")
	}
	if c.Cipher != ksCipher {
		return nil, unsupported("cipher %q", c.Cipher)
	}

	w := &EncryptedWallet{
		Cipher: c.Cipher,
	}

	if encjson.ID != "" {
		id, err := uuid.Parse(encjson.ID)
		if err != nil {
			return nil, malformed("failed to parse the uuid: %v", err)
		}
		w.ID = id
	}

	if encjson.Address != "" {
		addr := encjson.Address
		if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
			addr = "0x" + addr
		}
		if !ethcommon.IsHexAddress(addr) {
			return nil, malformed("address is not a valid hex address")
		}
		a := ethcommon.HexToAddress(addr)
		w.Address = &a
	}

	kdf, params, err := decodeKDF(c.KDF, c.KDFParams)
	if err != nil {
		return nil, err
	}
	w.KDF = kdf
	w.KDFParams = params

	w.CipherIV, err = decodeHexField("cipherparams iv", c.CipherParams.IV, ivLength)
	if err != nil {
		return nil, err
	}

	w.CipherText, err = decodeHexField("ciphertext", c.CipherText, cipherTextLength)
	if err != nil {
		return nil, err
	}

	mac, err := decodeHexField("mac", c.MAC, macLength)
	if err != nil {
		return nil, err
	}
	copy(w.MAC[:], mac)

	return w, nil
}

func decodeKDF(name string, p kdfParamsJSON) (KDFAlgorithm, KDFParams, error) {
	params := KDFParams{}

	if p.DKLen == nil {
		return "", params, malformed("kdfparams dklen is missing")
	}
	if *p.DKLen != derivedKeyLength {
		return "", params, malformed("kdfparams dklen must be %d but got %d", derivedKeyLength, *p.DKLen)
	}
	params.DKLen = *p.DKLen

	switch KDFAlgorithm(name) {
	case KDFPBKDF2:
		if p.PRF != ksPRF {
			return "", params, unsupported("pbkdf2 prf %q", p.PRF)
		}
		if p.C == nil || *p.C <= 0 {
			return "", params, malformed("kdfparams c must be a positive integer")
		}
		params.PRF = p.PRF
		params.Iterations = *p.C
	case KDFScrypt:
		if p.N == nil || *p.N <= 1 || *p.N&(*p.N-1) != 0 {
			return "", params, malformed("kdfparams n must be a power of 2 greater than 1")
		}
		if p.R == nil || *p.R <= 0 {
			return "", params, malformed("kdfparams r must be a positive integer")
		}
		if p.P == nil || *p.P <= 0 {
			return "", params, malformed("kdfparams p must be a positive integer")
		}
		params.N = *p.N
		params.R = *p.R
		params.P = *p.P
	case "":
		return "", params, malformed("kdf is missing")
	default:
		return "", params, unsupported("kdf %q", name)
	}

	if err := checkKDFCost(KDFAlgorithm(name), params); err != nil {
		return "", params, err
	}

	salt, err := decodeHexField("salt", p.Salt, -1)
	if err != nil {
		return "", params, err
	}
	params.Salt = salt

	return KDFAlgorithm(name), params, nil
}

// checkKDFCost rejects parameters which would make the key derivation exhaust memory or run for hours.
func checkKDFCost(kdf KDFAlgorithm, p KDFParams) error {
	switch kdf {
	case KDFPBKDF2:
		if p.Iterations > maxPBKDF2Iterations {
			return malformed("kdfparams c=%d exceeds the limit of %d iterations", p.Iterations, maxPBKDF2Iterations)
		}
	case KDFScrypt:
		if p.R <= 0 || p.P <= 0 {
			return malformed("kdfparams r and p must be positive integers")
		}
		limit := maxScryptMemory / 128
		if p.R > limit || p.N > limit/p.R || p.P > limit/p.R {
			return malformed("kdfparams n=%d r=%d p=%d exceed the %d byte scrypt memory limit", p.N, p.R, p.P, maxScryptMemory)
		}
	}
	return nil
}

// decodeHexField decodes an optionally 0x prefixed hex string.
// A negative size only requires the field to be non-empty.
func decodeHexField(name, value string, size int) ([]byte, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if value == "" {
		return nil, malformed("%s is missing", name)
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, malformed("failed to decode %s: %v", name, err)
	}
	if size >= 0 && len(b) != size {
		return nil, malformed("%s must be %d bytes but got %d", name, size, len(b))
	}
	return b, nil
}
