package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize caps how much of a gateway response body is read (10MB).
const maxResponseSize = 10 * 1024 * 1024

// AccessTokenHeader carries the storefront access token on every request.
const AccessTokenHeader = "X-Shopify-Storefront-Access-Token"

const (
	MsgMissingEndpoint = "Missing API end point env variable"
	MsgMissingToken    = "Missing API access token env variable"
	MsgParse           = "Could not parse JSON response"
)

var (
	ErrMissingEndpoint = errors.New("gateway: endpoint not configured")
	ErrMissingToken    = errors.New("gateway: access token not configured")
	ErrTransport       = errors.New("gateway: transport failure")
	ErrParse           = errors.New("gateway: invalid JSON response")
	ErrCircuitOpen     = errors.New("gateway: circuit open")

	// errAbandoned marks a call whose caller context ended first. It is
	// excluded from the breaker counts.
	errAbandoned = errors.New("gateway: caller gave up")
)

// Config holds the remote gateway coordinates.
type Config struct {
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit. Zero disables tripping.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client issues GraphQL documents against the commerce gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

// Request is one GraphQL operation. Values are always passed as variables.
type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Envelope is the uniform result of a gateway call. Err is true for local
// configuration, transport and parse failures; a response with Err false may
// still carry top-level or user errors that callers must inspect.
type Envelope[T any] struct {
	Err     bool
	Message string
	Res     *T
	Cause   error
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-gateway",
		Timeout: cfg.BreakerCooldown,
		IsExcluded: func(err error) bool {
			return errors.Is(err, errAbandoned)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("gateway breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}
}

// Do sends req and decodes the body into T. It never returns a Go error;
// every failure is folded into the envelope.
func Do[T any](ctx context.Context, c *Client, req Request) Envelope[T] {
	if c.cfg.Endpoint == "" {
		c.logger.Error("gateway call without endpoint", zap.String("operation", req.OperationName))
		return Envelope[T]{Err: true, Message: MsgMissingEndpoint, Cause: ErrMissingEndpoint}
	}
	if c.cfg.AccessToken == "" {
		c.logger.Error("gateway call without access token", zap.String("operation", req.OperationName))
		return Envelope[T]{Err: true, Message: MsgMissingToken, Cause: ErrMissingToken}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		c.logger.Warn("gateway transport failure", zap.String("operation", req.OperationName), zap.Error(err))
		cause := ErrTransport
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			cause = ErrCircuitOpen
		}
		return Envelope[T]{Err: true, Message: err.Error(), Cause: fmt.Errorf("%w: %w", cause, err)}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Warn("gateway response not JSON", zap.String("operation", req.OperationName), zap.Error(err))
		return Envelope[T]{Err: true, Message: MsgParse, Cause: fmt.Errorf("%w: %w", ErrParse, err)}
	}
	return Envelope[T]{Res: &out}
}

func (c *Client) post(ctx context.Context, req Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(AccessTokenHeader, c.cfg.AccessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, abandoned(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, abandoned(ctx, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= http.StatusInternalServerError && len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("gateway returned %s", resp.Status)
	}
	return body, nil
}

func abandoned(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", errAbandoned, err)
	}
	return err
}
