package httpclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RPCProber checks JSON-RPC endpoint reachability without involving the
// application's connection state.
type RPCProber interface {
	// Probe issues an eth_chainId call against the endpoint and returns the
	// reported chain id.
	Probe(rpcURL string) (uint64, error)
}

type rpcProber struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewRPCProber creates a prober with the given per-request timeout.
func NewRPCProber(timeout time.Duration, logger *zap.Logger) RPCProber {
	return &rpcProber{
		client:  &fasthttp.Client{},
		timeout: timeout,
		logger:  logger.Named("RPCProber"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Probe issues an eth_chainId call against the endpoint.
func (p *rpcProber) Probe(rpcURL string) (uint64, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "eth_chainId", Params: []any{}, ID: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal probe request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	p.logger.Debug("Probing RPC endpoint", zap.String("url", rpcURL))
	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		p.logger.Warn("RPC probe request failed", zap.String("url", rpcURL), zap.Error(err))
		return 0, fmt.Errorf("probe request to %s failed: %w", rpcURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		p.logger.Warn("RPC probe returned non-OK status",
			zap.String("url", rpcURL),
			zap.Int("statusCode", resp.StatusCode()))
		return 0, fmt.Errorf("probe to %s returned status %d", rpcURL, resp.StatusCode())
	}

	var parsed rpcResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("failed to decode probe response from %s: %w", rpcURL, err)
	}
	if parsed.Error != nil {
		return 0, fmt.Errorf("probe to %s returned RPC error %d: %s", rpcURL, parsed.Error.Code, parsed.Error.Message)
	}

	chainID, err := strconv.ParseUint(strings.TrimPrefix(parsed.Result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chain id %q from %s: %w", parsed.Result, rpcURL, err)
	}

	p.logger.Debug("RPC endpoint reachable", zap.String("url", rpcURL), zap.Uint64("chainId", chainID))
	return chainID, nil
}
