package transaction

//go:generate mockgen -source=assemble.go -destination=mock_rpcport_test.go -package=transaction

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// ErrResolutionFailed is matched by every AssemblyError.
var ErrResolutionFailed = errors.New("failed to resolve transaction field")

// Names of the fields resolved from the network, as reported in AssemblyError.Field.
const (
	FieldNonce    = "nonce"
	FieldGasPrice = "gasPrice"
	FieldGasLimit = "gasLimit"
)

// EstimateRequest carries the fields of a gas estimate query.
type EstimateRequest struct {
	From  ethcommon.Address
	To    *ethcommon.Address
	Value *big.Int
	Data  []byte
}

// RPCPort represents the chain state queries needed to fill missing fields.
type RPCPort interface {
	PendingNonce(ctx context.Context, address ethcommon.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, req EstimateRequest) (uint64, error)
}

// AssembleOptions are the signing parameters that are not transaction fields.
type AssembleOptions struct {
	// ChainID selects EIP-155 signing when set and not zero.
	ChainID *big.Int
}

// AssemblyError reports the field whose network resolution failed.
type AssemblyError struct {
	Field string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Field, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrResolutionFailed) hold for any AssemblyError.
func (e *AssemblyError) Is(target error) bool {
	return target == ErrResolutionFailed
}

type fieldResolver struct {
	field    string
	supplied bool
	resolve  func(ctx context.Context) error
}

// Assemble fills the missing nonce, gas price and gas limit of p from the network.
// Resolution runs in the order nonce, gasPrice, gasLimit and stops at the first failure.
func Assemble(ctx context.Context, owner ethcommon.Address, p PartialFields, rpc RPCPort, opts AssembleOptions) (*UnsignedTx, error) {
	if rpc == nil {
		return nil, errors.New("rpc is nil")
	}

	fields := Fields{
		GasPrice: p.GasPrice,
		To:       p.To,
		Value:    p.Value,
		Data:     p.Data,
	}
	if p.Nonce != nil {
		fields.Nonce = *p.Nonce
	}
	if p.GasLimit != nil {
		fields.GasLimit = *p.GasLimit
	}
	fields = fields.copy()
	if err := fields.validate(); err != nil {
		return nil, err
	}
	if err := checkQuantity("chainID", opts.ChainID); err != nil {
		return nil, err
	}

	resolvers := []fieldResolver{
		{
			field:    FieldNonce,
			supplied: p.Nonce != nil,
			resolve: func(ctx context.Context) error {
				nonce, err := rpc.PendingNonce(ctx, owner)
				if err != nil {
					return err
				}
				fields.Nonce = nonce
				return nil
			},
		},
		{
			field:    FieldGasPrice,
			supplied: p.GasPrice != nil,
			resolve: func(ctx context.Context) error {
				price, err := rpc.GasPrice(ctx)
				if err != nil {
					return err
				}
				if price == nil {
					return errors.New("gas price is empty")
				}
				if err := checkQuantity(FieldGasPrice, price); err != nil {
					return err
				}
				fields.GasPrice = new(big.Int).Set(price)
				return nil
			},
		},
		{
			field:    FieldGasLimit,
			supplied: p.GasLimit != nil,
			resolve: func(ctx context.Context) error {
				gas, err := rpc.EstimateGas(ctx, EstimateRequest{
					From:  owner,
					To:    fields.To,
					Value: fields.Value,
					Data:  fields.Data,
				})
				if err != nil {
					return err
				}
				fields.GasLimit = gas
				return nil
			},
		},
	}

	for _, r := range resolvers {
		if r.supplied {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, &AssemblyError{Field: r.field, Err: err}
		}
		if err := r.resolve(ctx); err != nil {
			return nil, &AssemblyError{Field: r.field, Err: err}
		}
		log.Debugf("resolved %s from the network", r.field)
	}

	u := &UnsignedTx{Fields: fields}
	if opts.ChainID != nil && opts.ChainID.Sign() > 0 {
		u.ChainID = new(big.Int).Set(opts.ChainID)
	}
	return u, nil
}
