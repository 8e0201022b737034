package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxRetries is the number of retries of a request that failed in transport.
const DefaultMaxRetries = 3

// ErrEmptyResult is returned when a node answers with a null result.
var ErrEmptyResult = errors.New("empty result in json response")

// HTTPClient defines the functionality of an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a JSON-RPC client of an ethereum node.
type Client struct {
	httpClient HTTPClient
	url        string
	headers    map[string]string
	maxRetries uint64
	requestID  atomic.Uint64
	newBackOff func() backoff.BackOff
}

// JSONRPCRequest is the jsonrpc2.0 request.
type JSONRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

// JSONRPCResponse is the jsonrpc2.0 response.
type JSONRPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	ID     uint64          `json:"id"`
}

// RPCError is the error object of a jsonrpc2.0 response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// New creates a new client.
func New(urlEndpoint string, httpClient HTTPClient) (*Client, error) {
	if urlEndpoint == "" {
		return nil, errors.New("url is empty")
	}

	u, err := url.Parse(urlEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	if httpClient == nil {
		return nil, errors.New("http client is nil")
	}

	return &Client{
		url:        urlEndpoint,
		httpClient: httpClient,
		headers:    make(map[string]string),
		maxRetries: DefaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 0
			return b
		},
	}, nil
}

// SetMaxRetries sets how many times a request is retried after a transport failure.
func (cli *Client) SetMaxRetries(n uint64) {
	cli.maxRetries = n
}

// OverrideHTTPHeaders adds headers to all requests.
func (cli *Client) OverrideHTTPHeaders(headers map[string]string) {
	for k, v := range headers {
		cli.headers[k] = v
	}
}

// call performs a jsonrpc request and returns the raw result.
// Transport failures and 5xx answers are retried, rpc errors are not.
func (cli *Client) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	return cli.callWithRetries(ctx, cli.maxRetries, method, params...)
}

// callOnce performs a jsonrpc request without retrying, for requests which are not idempotent.
func (cli *Client) callOnce(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	return cli.callWithRetries(ctx, 0, method, params...)
}

func (cli *Client) callWithRetries(ctx context.Context, retries uint64, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	payload := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      cli.requestID.Add(1),
	}

	var result json.RawMessage
	op := func() error {
		log.Debugf("rpc request %s id %d", method, payload.ID)
		res, err := cli.do(ctx, payload)
		if err != nil {
			return err
		}
		result = res
		return nil
	}
	notify := func(err error, d time.Duration) {
		log.Warnf("rpc request %s failed, retrying in %s: %v", method, d, err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(cli.newBackOff(), retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return result, nil
}

func (cli *Client) do(ctx context.Context, payload JSONRPCRequest) (json.RawMessage, error) {
	bodyBuf, err := encodeDataToJSON(payload)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to encode body to json: %w", err))
	}

	req, err := cli.buildRequest(ctx, http.MethodPost, cli.url, bodyBuf, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}

	response, err := cli.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	if response == nil || response.Body == nil {
		return nil, errors.New("failed to do request: empty response")
	}

	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("node returned status %d", response.StatusCode)
	}

	jsonResponse := JSONRPCResponse{}
	if err := json.Unmarshal(body, &jsonResponse); err != nil {
		if response.StatusCode != 0 && response.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("node returned status %d", response.StatusCode))
		}
		return nil, backoff.Permanent(fmt.Errorf("failed to unmarshal response body: %w", err))
	}

	if jsonResponse.Error != nil {
		return nil, backoff.Permanent(jsonResponse.Error)
	}

	return jsonResponse.Result, nil
}

// decodeResult unmarshals a non null result into v.
func decodeResult(result json.RawMessage, v interface{}) error {
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return ErrEmptyResult
	}
	if err := json.Unmarshal(result, v); err != nil {
		return fmt.Errorf("failed to unmarshal the result of response: %w", err)
	}
	return nil
}

func (cli *Client) buildRequest(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	mustHaveBody := method == http.MethodPost || method == http.MethodPut
	if mustHaveBody && body == nil {
		body = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	// set the overrides headers first
	for k, v := range cli.headers {
		req.Header.Set(k, v)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func encodeDataToJSON(data interface{}) (*bytes.Buffer, error) {
	params := bytes.NewBuffer(nil)
	if data != nil {
		if err := json.NewEncoder(params).Encode(data); err != nil {
			return nil, err
		}
	}
	return params, nil
}
