package keystore

import (
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/filefilego/txsign/crypto"
	"github.com/pelletier/go-toml/v2"
)

// DecodePlaintext reads an unencrypted TOML key record:
//
//	secret = "0x..."
//	address = "0x..." # optional, checked against the secret
func DecodePlaintext(raw []byte) (crypto.SecretKey, error) {
	rec := plaintextKeyTOML{}
	if err := toml.Unmarshal(raw, &rec); err != nil {
		// the decoder error may quote the offending line
		return crypto.SecretKey{}, malformed("failed to unmarshal plaintext key record")
	}
	if rec.Secret == "" {
		return crypto.SecretKey{}, malformed("secret is missing")
	}

	secret := rec.Secret
	if !strings.HasPrefix(secret, "0x") {
		secret = "0x" + secret
	}
	secretBytes, err := hexutil.Decode(secret)
	if err != nil {
		return crypto.SecretKey{}, malformed("secret is not valid hex")
	}
	defer zeroBytes(secretBytes)

	if len(secretBytes) != crypto.SecretKeyLength {
		return crypto.SecretKey{}, malformed("secret must be %d bytes but got %d", crypto.SecretKeyLength, len(secretBytes))
	}

	key, err := crypto.SecretKeyFromBytes(secretBytes)
	if err != nil {
		return crypto.SecretKey{}, ErrInvalidKey
	}

	if rec.Address != "" {
		if !ethcommon.IsHexAddress(rec.Address) {
			key.Zero()
			return crypto.SecretKey{}, malformed("address is not a valid hex address")
		}
		if key.Address() != ethcommon.HexToAddress(rec.Address) {
			key.Zero()
			return crypto.SecretKey{}, malformed("address does not match the secret")
		}
	}

	return key, nil
}
