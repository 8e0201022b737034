package transaction

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/filefilego/txsign/crypto"
)

// UnsignedTx is a resolved legacy transaction ready to be signed.
// A nil or zero ChainID selects homestead signing, anything else EIP-155.
type UnsignedTx struct {
	Fields
	ChainID *big.Int
}

// eip155 reports whether the chain id takes part in the signature.
func eip155(chainID *big.Int) bool {
	return chainID != nil && chainID.Sign() > 0
}

// Encode returns the RLP list that is hashed for signing:
// [nonce, gasPrice, gasLimit, to, value, data] plus [chainID, 0, 0] for EIP-155.
func (u *UnsignedTx) Encode() ([]byte, error) {
	f := u.Fields.copy()
	if err := f.validate(); err != nil {
		return nil, err
	}
	items := []interface{}{f.Nonce, f.GasPrice, f.GasLimit, f.To, f.Value, f.Data}
	if eip155(u.ChainID) {
		items = append(items, u.ChainID, uint(0), uint(0))
	}
	data, err := rlp.EncodeToBytes(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return data, nil
}

// SigningHash returns the keccak256 of the unsigned encoding.
func (u *UnsignedTx) SigningHash() ([]byte, error) {
	data, err := u.Encode()
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(data), nil
}

// SignedTx is a legacy transaction with its signature values.
type SignedTx struct {
	Fields
	ChainID *big.Int
	V       *big.Int
	R       *big.Int
	S       *big.Int
}

func (tx *SignedTx) ethTx() *ethTypes.Transaction {
	f := tx.Fields.copy()
	return ethTypes.NewTx(&ethTypes.LegacyTx{
		Nonce:    f.Nonce,
		GasPrice: f.GasPrice,
		Gas:      f.GasLimit,
		To:       f.To,
		Value:    f.Value,
		Data:     f.Data,
		V:        new(big.Int).Set(tx.V),
		R:        new(big.Int).Set(tx.R),
		S:        new(big.Int).Set(tx.S),
	})
}

// Encode returns the RLP list [nonce, gasPrice, gasLimit, to, value, data, v, r, s].
func (tx *SignedTx) Encode() ([]byte, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return nil, errors.New("signature values are empty")
	}
	if err := tx.Fields.validate(); err != nil {
		return nil, err
	}
	data, err := tx.ethTx().MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return data, nil
}

// Hash returns the transaction hash, the keccak256 of the signed encoding.
func (tx *SignedTx) Hash() (ethcommon.Hash, error) {
	data, err := tx.Encode()
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return ethcommon.BytesToHash(crypto.Keccak256(data)), nil
}

// Sender recovers the address that signed the transaction.
func (tx *SignedTx) Sender() (ethcommon.Address, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return ethcommon.Address{}, errors.New("signature values are empty")
	}
	var signer ethTypes.Signer = ethTypes.HomesteadSigner{}
	if eip155(tx.ChainID) {
		signer = ethTypes.NewEIP155Signer(tx.ChainID)
	}
	from, err := ethTypes.Sender(signer, tx.ethTx())
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("failed to recover sender: %w", err)
	}
	return from, nil
}

// DecodeSigned parses a signed legacy transaction.
// Typed transactions and any input that does not re-encode to the same bytes are rejected.
func DecodeSigned(raw []byte) (*SignedTx, error) {
	if len(raw) == 0 {
		return nil, errors.New("transaction data is empty")
	}
	var ethTx ethTypes.Transaction
	if err := ethTx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	if ethTx.Type() != ethTypes.LegacyTxType {
		return nil, fmt.Errorf("unsupported transaction type %d", ethTx.Type())
	}

	v, r, s := ethTx.RawSignatureValues()
	tx := &SignedTx{
		Fields: Fields{
			Nonce:    ethTx.Nonce(),
			GasPrice: ethTx.GasPrice(),
			GasLimit: ethTx.Gas(),
			To:       ethTx.To(),
			Value:    ethTx.Value(),
			Data:     ethTx.Data(),
		},
		V: new(big.Int).Set(v),
		R: new(big.Int).Set(r),
		S: new(big.Int).Set(s),
	}
	if ethTx.Protected() {
		tx.ChainID = ethTx.ChainId()
	}

	encoded, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(encoded, raw) {
		return nil, errors.New("transaction encoding is not canonical")
	}
	return tx, nil
}
