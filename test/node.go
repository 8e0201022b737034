package test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/filefilego/txsign/crypto"
	"github.com/filefilego/txsign/transaction"
	"github.com/gorilla/mux"
)

const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type receipt struct {
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

// Node is an in-memory json-rpc node which mines every valid legacy transaction it receives
// in its own block.
type Node struct {
	mu       sync.Mutex
	chainID  *big.Int
	gasPrice *big.Int
	gas      uint64
	nonces   map[ethcommon.Address]uint64
	balances map[ethcommon.Address]*big.Int
	receipts map[ethcommon.Hash]receipt
	requests []string
	server   *httptest.Server
}

// NewNode creates a node which quotes gasPrice and estimates every transaction at gas.
func NewNode(chainID, gasPrice *big.Int, gas uint64) *Node {
	return &Node{
		chainID:  new(big.Int).Set(chainID),
		gasPrice: new(big.Int).Set(gasPrice),
		gas:      gas,
		nonces:   make(map[ethcommon.Address]uint64),
		balances: make(map[ethcommon.Address]*big.Int),
		receipts: make(map[ethcommon.Hash]receipt),
	}
}

// Start serves the node and returns its endpoint.
func (n *Node) Start() string {
	r := mux.NewRouter()
	r.HandleFunc("/rpc", n.serveRPC).Methods(http.MethodPost)
	n.server = httptest.NewServer(r)
	return n.server.URL + "/rpc"
}

// Close stops the node.
func (n *Node) Close() {
	if n.server != nil {
		n.server.Close()
	}
}

// Fund adds amount to the balance of address.
func (n *Node) Fund(address ethcommon.Address, amount *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balanceOf(address).Add(n.balanceOf(address), amount)
}

// Requests returns the methods called so far.
func (n *Node) Requests() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.requests...)
}

func (n *Node) serveRPC(w http.ResponseWriter, r *http.Request) {
	req := request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.requests = append(n.requests, req.Method)
	result, rpcErr := n.handle(req)
	n.mu.Unlock()

	res := response{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
	if rpcErr == nil && result == nil {
		res.Result = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func (n *Node) handle(req request) (interface{}, *rpcError) {
	switch req.Method {
	case "eth_chainId":
		return (*hexutil.Big)(n.chainID), nil
	case "eth_gasPrice":
		return (*hexutil.Big)(n.gasPrice), nil
	case "eth_estimateGas":
		return hexutil.Uint64(n.gas), nil
	case "eth_getTransactionCount":
		var address ethcommon.Address
		if err := param(req.Params, 0, &address); err != nil {
			return nil, err
		}
		return hexutil.Uint64(n.nonces[address]), nil
	case "eth_getBalance":
		var address ethcommon.Address
		if err := param(req.Params, 0, &address); err != nil {
			return nil, err
		}
		return (*hexutil.Big)(new(big.Int).Set(n.balanceOf(address))), nil
	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		if err := param(req.Params, 0, &raw); err != nil {
			return nil, err
		}
		return n.mine(raw)
	case "eth_getTransactionReceipt":
		var hash ethcommon.Hash
		if err := param(req.Params, 0, &hash); err != nil {
			return nil, err
		}
		rec, ok := n.receipts[hash]
		if !ok {
			return nil, nil
		}
		return rec, nil
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("the method %s does not exist/is not available", req.Method)}
	}
}

// mine applies a transaction the way a node validates a legacy transaction for its pool.
func (n *Node) mine(raw []byte) (interface{}, *rpcError) {
	tx, err := transaction.DecodeSigned(raw)
	if err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}
	if tx.ChainID != nil && tx.ChainID.Cmp(n.chainID) != 0 {
		return nil, &rpcError{Code: codeServerError, Message: "invalid chain id for signer"}
	}
	from, err := tx.Sender()
	if err != nil {
		return nil, &rpcError{Code: codeServerError, Message: "invalid sender"}
	}

	nonce := n.nonces[from]
	if tx.Nonce < nonce {
		return nil, &rpcError{Code: codeServerError, Message: "nonce too low"}
	}
	if tx.Nonce > nonce {
		return nil, &rpcError{Code: codeServerError, Message: "nonce too high"}
	}

	cost := new(big.Int).Mul(tx.GasPrice, new(big.Int).SetUint64(tx.GasLimit))
	cost.Add(cost, tx.Value)
	balance := n.balanceOf(from)
	if balance.Cmp(cost) < 0 {
		return nil, &rpcError{Code: codeServerError, Message: "insufficient funds for gas * price + value"}
	}

	hash, err := tx.Hash()
	if err != nil {
		return nil, &rpcError{Code: codeServerError, Message: err.Error()}
	}

	balance.Sub(balance, cost)
	if tx.To != nil {
		n.balanceOf(*tx.To).Add(n.balanceOf(*tx.To), tx.Value)
	}
	n.nonces[from] = nonce + 1

	blockNumber := uint64(len(n.receipts) + 1)
	rec := receipt{
		TransactionHash:   hash,
		BlockHash:         ethcommon.BytesToHash(crypto.Keccak256(hash.Bytes(), new(big.Int).SetUint64(blockNumber).Bytes())),
		BlockNumber:       hexutil.Uint64(blockNumber),
		From:              from,
		To:                tx.To,
		GasUsed:           hexutil.Uint64(tx.GasLimit),
		EffectiveGasPrice: (*hexutil.Big)(new(big.Int).Set(tx.GasPrice)),
		Status:            1,
	}
	if tx.To == nil {
		contract := ethcrypto.CreateAddress(from, tx.Nonce)
		rec.ContractAddress = &contract
	}
	n.receipts[hash] = rec

	return hash, nil
}

func (n *Node) balanceOf(address ethcommon.Address) *big.Int {
	b, ok := n.balances[address]
	if !ok {
		b = big.NewInt(0)
		n.balances[address] = b
	}
	return b
}

func param(params []json.RawMessage, index int, v interface{}) *rpcError {
	if index >= len(params) {
		return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("missing value for required argument %d", index)}
	}
	if err := json.Unmarshal(params[index], v); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid argument %d: %v", index, err)}
	}
	return nil
}
