package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/filefilego/txsign/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingNonce(t *testing.T) {
	stub := &httpClientStub{replies: []stubReply{
		{body: `{"jsonrpc":"2.0","id":1,"result":"0x2a"}`},
	}}
	c := newTestClient(t, stub)

	nonce, err := c.PendingNonce(context.Background(), ethcommon.HexToAddress("0x96233bcC823159C3c08EB76a24E98F20CE7d48DE"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"eth_getTransactionCount","params":["0x96233bcC823159C3c08EB76a24E98F20CE7d48DE","pending"],"id":1}`, stub.requests()[0].body)
}

func TestBalance(t *testing.T) {
	stub := &httpClientStub{replies: []stubReply{
		{body: `{"jsonrpc":"2.0","id":1,"result":"0xde0b6b3a7640000"}`},
	}}
	c := newTestClient(t, stub)

	balance, err := c.Balance(context.Background(), ethcommon.HexToAddress("0x96233bcC823159C3c08EB76a24E98F20CE7d48DE"))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.ToInt().String())
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"eth_getBalance","params":["0x96233bcC823159C3c08EB76a24E98F20CE7d48DE","latest"],"id":1}`, stub.requests()[0].body)
}

func TestEstimateGas(t *testing.T) {
	t.Parallel()
	to := ethcommon.HexToAddress("0xdead00000000000000000000000000000000beef")
	from := ethcommon.HexToAddress("0x96233bcC823159C3c08EB76a24E98F20CE7d48DE")
	cases := map[string]struct {
		req     transaction.EstimateRequest
		expBody string
	}{
		"transfer": {
			req:     transaction.EstimateRequest{From: from, To: &to, Value: big.NewInt(7)},
			expBody: `{"jsonrpc":"2.0","method":"eth_estimateGas","params":[{"from":"0x96233bcc823159c3c08eb76a24e98f20ce7d48de","to":"0xdead00000000000000000000000000000000beef","value":"0x7","data":"0x"}],"id":1}`,
		},
		"contract creation keeps data": {
			req:     transaction.EstimateRequest{From: from, Data: []byte{0x60, 0x80}},
			expBody: `{"jsonrpc":"2.0","method":"eth_estimateGas","params":[{"from":"0x96233bcc823159c3c08eb76a24e98f20ce7d48de","data":"0x6080"}],"id":1}`,
		},
	}

	for name, tt := range cases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			stub := &httpClientStub{replies: []stubReply{
				{body: `{"jsonrpc":"2.0","id":1,"result":"0x5208"}`},
			}}
			c := newTestClient(t, stub)

			gas, err := c.EstimateGas(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, uint64(21000), gas)
			assert.JSONEq(t, tt.expBody, stub.requests()[0].body)
		})
	}
}

func TestSendRawTransaction(t *testing.T) {
	stub := &httpClientStub{replies: []stubReply{
		{body: `{"jsonrpc":"2.0","id":1,"result":"0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"}`},
	}}
	c := newTestClient(t, stub)

	_, err := c.SendRawTransaction(context.Background(), nil)
	assert.EqualError(t, err, "raw transaction is empty")

	hash, err := c.SendRawTransaction(context.Background(), []byte{0xf8, 0x6c, 0x09})
	require.NoError(t, err)
	assert.Equal(t, "0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788", hash.Hex())
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"eth_sendRawTransaction","params":["0xf86c09"],"id":1}`, stub.requests()[0].body)
}

func TestSendRawTransactionIsNotRetried(t *testing.T) {
	cases := map[string]stubReply{
		"transport failure": {err: errors.New("connection reset by peer")},
		"server error":      {status: http.StatusBadGateway, body: "bad gateway"},
	}

	for name, reply := range cases {
		reply := reply
		t.Run(name, func(t *testing.T) {
			stub := &httpClientStub{replies: []stubReply{
				reply,
				{body: `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"already known"}}`},
			}}
			c := newTestClient(t, stub)

			_, err := c.SendRawTransaction(context.Background(), []byte{0xf8, 0x6c, 0x09})
			assert.Error(t, err)
			assert.False(t, IsKnownTransaction(err))
			assert.Len(t, stub.requests(), 1)
		})
	}
}

func TestIsKnownTransaction(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		err      error
		expected bool
	}{
		"nil":                  {},
		"plain error":          {err: errors.New("already known")},
		"already known":        {err: &RPCError{Code: -32000, Message: "already known"}, expected: true},
		"wrapped":              {err: fmt.Errorf("send: %w", &RPCError{Code: -32000, Message: "already known"}), expected: true},
		"legacy known message": {err: &RPCError{Code: -32000, Message: "known transaction: 33469b22"}, expected: true},
		"nonce too low":        {err: &RPCError{Code: -32000, Message: "nonce too low"}},
	}

	for name, tt := range cases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsKnownTransaction(tt.err))
		})
	}
}

func TestTransactionReceipt(t *testing.T) {
	hash := ethcommon.HexToHash("0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788")
	stub := &httpClientStub{replies: []stubReply{
		{body: `{"jsonrpc":"2.0","id":1,"result":null}`},
		{body: `{"jsonrpc":"2.0","id":2,"result":{"transactionHash":"0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788","blockHash":"0x0b7f0ce54aa1e0ba5f5e5a6e3ab4a6c7a79c1d60b0a3c3e3a8a3d4d6c1f8e2a1","blockNumber":"0x10","from":"0x96233bcc823159c3c08eb76a24e98f20ce7d48de","to":"0xdead00000000000000000000000000000000beef","contractAddress":null,"gasUsed":"0x5208","effectiveGasPrice":"0x1","status":"0x1","logs":[]}}`},
	}}
	c := newTestClient(t, stub)

	receipt, err := c.TransactionReceipt(context.Background(), hash)
	assert.Nil(t, receipt)
	assert.True(t, errors.Is(err, ErrReceiptNotFound))

	receipt, err = c.TransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, hash, receipt.TransactionHash)
	assert.Equal(t, uint64(16), uint64(receipt.BlockNumber))
	assert.Equal(t, uint64(21000), uint64(receipt.GasUsed))
	assert.Nil(t, receipt.ContractAddress)
	assert.True(t, receipt.Succeeded())
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"eth_getTransactionReceipt","params":["0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"],"id":2}`, stub.requests()[1].body)
}

func TestClientImplementsRPCPort(t *testing.T) {
	var _ transaction.RPCPort = &Client{}
}
