package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainID returns the chain id used for EIP-155 signing.
func (cli *Client) ChainID(ctx context.Context) (*big.Int, error) {
	result, err := cli.call(ctx, "eth_chainId")
	if err != nil {
		return nil, err
	}

	var id hexutil.Big
	if err := decodeResult(result, &id); err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id.ToInt(), nil
}

// GasPrice returns the current gas price of the network.
func (cli *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	result, err := cli.call(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}

	var price hexutil.Big
	if err := decodeResult(result, &price); err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return price.ToInt(), nil
}
