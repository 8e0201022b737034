package client

import (
	"context"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PendingNonce returns the next nonce of an address, counting pending transactions.
func (cli *Client) PendingNonce(ctx context.Context, address ethcommon.Address) (uint64, error) {
	result, err := cli.call(ctx, "eth_getTransactionCount", address.Hex(), "pending")
	if err != nil {
		return 0, err
	}

	var nonce hexutil.Uint64
	if err := decodeResult(result, &nonce); err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	return uint64(nonce), nil
}

// Balance returns the balance of an address at the latest block.
func (cli *Client) Balance(ctx context.Context, address ethcommon.Address) (*hexutil.Big, error) {
	result, err := cli.call(ctx, "eth_getBalance", address.Hex(), "latest")
	if err != nil {
		return nil, err
	}

	var balance hexutil.Big
	if err := decodeResult(result, &balance); err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}
