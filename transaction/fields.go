package transaction

import (
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrInvalidField is returned when a quantity is negative or does not fit 256 bits.
var ErrInvalidField = errors.New("invalid transaction field")

// PartialFields are the caller supplied fields of a transaction.
// A nil Nonce, GasPrice or GasLimit is resolved from the network.
// A nil To means contract creation and is never resolved.
type PartialFields struct {
	Nonce    *uint64
	GasPrice *big.Int
	GasLimit *uint64
	To       *ethcommon.Address
	Value    *big.Int
	Data     []byte
}

// Fields are the resolved fields of a legacy transaction.
type Fields struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *ethcommon.Address
	Value    *big.Int
	Data     []byte
}

// Uint64 returns a pointer to v, for building PartialFields.
func Uint64(v uint64) *uint64 {
	return &v
}

func (f Fields) copy() Fields {
	cpy := Fields{
		Nonce:    f.Nonce,
		GasLimit: f.GasLimit,
		GasPrice: new(big.Int),
		Value:    new(big.Int),
		Data:     []byte{},
	}
	if f.GasPrice != nil {
		cpy.GasPrice.Set(f.GasPrice)
	}
	if f.Value != nil {
		cpy.Value.Set(f.Value)
	}
	if f.To != nil {
		to := *f.To
		cpy.To = &to
	}
	if len(f.Data) > 0 {
		cpy.Data = append(cpy.Data, f.Data...)
	}
	return cpy
}

func (f Fields) validate() error {
	if err := checkQuantity("gasPrice", f.GasPrice); err != nil {
		return err
	}
	return checkQuantity("value", f.Value)
}

// checkQuantity verifies that an integer is non negative and fits 256 bits.
func checkQuantity(name string, v *big.Int) error {
	if v == nil {
		return nil
	}
	if v.Sign() < 0 {
		return fmt.Errorf("%w: %s is negative", ErrInvalidField, name)
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return fmt.Errorf("%w: %s exceeds 256 bits", ErrInvalidField, name)
	}
	return nil
}
