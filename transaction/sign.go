package transaction

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/filefilego/txsign/crypto"
)

// ErrRecoveryFailed is returned when no recovery id reproduces the signing public key.
var ErrRecoveryFailed = errors.New("failed to find signature recovery id")

const (
	compactSigLength = 65
	compactSigMagic  = 27
)

// Sign signs u with a deterministic RFC 6979 signature.
func Sign(u *UnsignedTx, key *crypto.SecretKey) (*SignedTx, error) {
	if u == nil {
		return nil, errors.New("transaction is nil")
	}
	if key == nil || !key.Valid() {
		return nil, errors.New("key is not valid")
	}

	hash, err := u.SigningHash()
	if err != nil {
		return nil, err
	}

	priv := key.PrivateKey()
	defer priv.Zero()

	sig := ecdsa.SignCompact(priv, hash, false)
	if len(sig) != compactSigLength {
		return nil, ErrRecoveryFailed
	}

	recoveryID, err := findRecoveryID(sig[1:], hash, key)
	if err != nil {
		return nil, err
	}

	v := big.NewInt(int64(compactSigMagic + recoveryID))
	var chainID *big.Int
	if eip155(u.ChainID) {
		chainID = new(big.Int).Set(u.ChainID)
		v = new(big.Int).Mul(chainID, big.NewInt(2))
		v.Add(v, big.NewInt(int64(35+recoveryID)))
	}

	return &SignedTx{
		Fields:  u.Fields.copy(),
		ChainID: chainID,
		V:       v,
		R:       new(big.Int).SetBytes(sig[1:33]),
		S:       new(big.Int).SetBytes(sig[33:65]),
	}, nil
}

// findRecoveryID tries both candidate public keys of r || s and returns the id
// of the one matching the key.
func findRecoveryID(rs, hash []byte, key *crypto.SecretKey) (int, error) {
	pub := key.PublicKey()
	candidate := make([]byte, compactSigLength)
	copy(candidate[1:], rs)
	for id := 0; id < 2; id++ {
		candidate[0] = byte(compactSigMagic + id)
		recovered, _, err := ecdsa.RecoverCompact(candidate, hash)
		if err != nil {
			continue
		}
		if recovered.IsEqual(pub) {
			return id, nil
		}
	}
	return 0, ErrRecoveryFailed
}
