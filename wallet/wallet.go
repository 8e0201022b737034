package wallet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/filefilego/txsign/client"
	"github.com/filefilego/txsign/crypto"
	"github.com/filefilego/txsign/keystore"
	"github.com/filefilego/txsign/transaction"
	log "github.com/sirupsen/logrus"
)

// KeyfileKind selects how a key file is read.
type KeyfileKind int

const (
	// Encrypted is a version 3 json keystore record.
	Encrypted KeyfileKind = iota
	// Plaintext is a toml record holding the raw secret.
	Plaintext
)

func (k KeyfileKind) String() string {
	switch k {
	case Encrypted:
		return "encrypted"
	case Plaintext:
		return "plaintext"
	default:
		return fmt.Sprintf("KeyfileKind(%d)", int(k))
	}
}

// KindFromPath picks the kind of a key file from its extension.
func KindFromPath(path string) (KeyfileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Encrypted, nil
	case ".toml":
		return Plaintext, nil
	default:
		return 0, fmt.Errorf("unsupported key file extension %q: expected .json or .toml", filepath.Ext(path))
	}
}

// Submitter sends a signed transaction to the network.
type Submitter interface {
	SendRawTransaction(ctx context.Context, raw []byte) (ethcommon.Hash, error)
}

// RecoverKey reads the secret key of a key file.
// The password is only used for Encrypted key files.
func RecoverKey(kind KeyfileKind, keyfile, password []byte) (crypto.SecretKey, error) {
	switch kind {
	case Encrypted:
		w, err := keystore.Decode(keyfile)
		if err != nil {
			return crypto.SecretKey{}, err
		}
		return keystore.Decrypt(w, password)
	case Plaintext:
		return keystore.DecodePlaintext(keyfile)
	default:
		return crypto.SecretKey{}, fmt.Errorf("unsupported key file kind %s", kind)
	}
}

// BuildAndSign assembles and signs a transaction owned by key.
// The key is zeroed before returning, on success and on failure.
func BuildAndSign(ctx context.Context, key *crypto.SecretKey, p transaction.PartialFields, rpc transaction.RPCPort, opts transaction.AssembleOptions) (*transaction.SignedTx, error) {
	if key == nil {
		return nil, errors.New("key is nil")
	}
	defer key.Zero()

	if !key.Valid() {
		return nil, errors.New("key is not valid")
	}
	owner := key.Address()

	unsigned, err := transaction.Assemble(ctx, owner, p, rpc, opts)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"from":      owner.Hex(),
		"nonce":     unsigned.Nonce,
		"gas_price": unsigned.GasPrice.String(),
		"gas_limit": unsigned.GasLimit,
		"eip155":    unsigned.ChainID != nil,
	}).Debug("transaction assembled")

	signed, err := transaction.Sign(unsigned, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Submit sends a signed transaction and returns the hash reported by the node.
func Submit(ctx context.Context, s Submitter, tx *transaction.SignedTx) (ethcommon.Hash, error) {
	if s == nil {
		return ethcommon.Hash{}, errors.New("submitter is nil")
	}
	if tx == nil {
		return ethcommon.Hash{}, errors.New("transaction is nil")
	}
	raw, err := tx.Encode()
	if err != nil {
		return ethcommon.Hash{}, err
	}
	expected, err := tx.Hash()
	if err != nil {
		return ethcommon.Hash{}, err
	}

	hash, err := s.SendRawTransaction(ctx, raw)
	if client.IsKnownTransaction(err) {
		log.Infof("transaction %s is already known to the node", expected.Hex())
		return expected, nil
	}
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to submit transaction: %w", err)
	}
	if hash != expected {
		log.Warnf("node returned hash %s but the transaction hash is %s", hash.Hex(), expected.Hex())
	}
	return hash, nil
}
