package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/filefilego/txsign/transaction"
)

// ErrReceiptNotFound is returned while a transaction is not yet included in a block.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// callArgs are the eth_estimateGas parameters.
type callArgs struct {
	From  ethcommon.Address  `json:"from"`
	To    *ethcommon.Address `json:"to,omitempty"`
	Value *hexutil.Big       `json:"value,omitempty"`
	Data  hexutil.Bytes      `json:"data"`
}

// Receipt is the subset of a transaction receipt shown to users.
type Receipt struct {
	TransactionHash   ethcommon.Hash     `json:"transactionHash"`
	BlockHash         ethcommon.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64     `json:"blockNumber"`
	From              ethcommon.Address  `json:"from"`
	To                *ethcommon.Address `json:"to"`
	ContractAddress   *ethcommon.Address `json:"contractAddress"`
	GasUsed           hexutil.Uint64     `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big       `json:"effectiveGasPrice"`
	Status            hexutil.Uint64     `json:"status"`
}

// Succeeded reports whether the transaction was executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// EstimateGas estimates the gas limit of a transaction.
// The data field is always sent, also for contract creation.
func (cli *Client) EstimateGas(ctx context.Context, req transaction.EstimateRequest) (uint64, error) {
	args := callArgs{
		From: req.From,
		To:   req.To,
		Data: req.Data,
	}
	if args.Data == nil {
		args.Data = hexutil.Bytes{}
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(req.Value)
	}

	result, err := cli.call(ctx, "eth_estimateGas", args)
	if err != nil {
		return 0, err
	}

	var gas hexutil.Uint64
	if err := decodeResult(result, &gas); err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return uint64(gas), nil
}

// SendRawTransaction submits a signed transaction and returns its hash.
// The request is sent once: a retry after a lost answer would be rejected as already known.
func (cli *Client) SendRawTransaction(ctx context.Context, raw []byte) (ethcommon.Hash, error) {
	if len(raw) == 0 {
		return ethcommon.Hash{}, errors.New("raw transaction is empty")
	}
	result, err := cli.callOnce(ctx, "eth_sendRawTransaction", hexutil.Encode(raw))
	if err != nil {
		return ethcommon.Hash{}, err
	}

	var hash ethcommon.Hash
	if err := decodeResult(result, &hash); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to send raw transaction: %w", err)
	}
	return hash, nil
}

// TransactionReceipt returns the receipt of a mined transaction.
func (cli *Client) TransactionReceipt(ctx context.Context, hash ethcommon.Hash) (*Receipt, error) {
	result, err := cli.call(ctx, "eth_getTransactionReceipt", hash.Hex())
	if err != nil {
		return nil, err
	}

	receipt := Receipt{}
	if err := decodeResult(result, &receipt); err != nil {
		if errors.Is(err, ErrEmptyResult) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	return &receipt, nil
}

// IsKnownTransaction reports whether err is the rejection of a transaction which is already in the pool of the node.
func IsKnownTransaction(err error) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	msg := strings.ToLower(rpcErr.Message)
	return strings.Contains(msg, "already known") || strings.HasPrefix(msg, "known transaction")
}
