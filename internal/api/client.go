// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the ShelfWise REST backend. It is safe for
// concurrent use. The backend is the sole arbiter of consistency; the
// client never retries mutating requests on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer

	tokenMu   sync.RWMutex
	authToken string
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithRateLimit caps outgoing requests at rps requests per second with
// the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rate limit requires positive rps and burst")
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL must not be empty")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tracer:     otel.Tracer("shelfwise/api"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "shelfwise-search",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetAuthToken installs the bearer token sent on every request.
// An empty token clears it. Login and logout may race with in-flight
// search fetches, so access is guarded.
func (c *Client) SetAuthToken(token string) {
	c.tokenMu.Lock()
	c.authToken = token
	c.tokenMu.Unlock()
}

func (c *Client) token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.authToken
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Timestamp  string          `json:"timestamp"`
	Pagination *Pagination     `json:"pagination"`
}

// do performs one request and decodes the envelope's data field into
// out (which may be nil for fire-and-forget calls). Every workflow
// failure is returned as an error, never a panic.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (*Pagination, error) {
	ctx, span := c.tracer.Start(ctx, "shelfwise.api "+method+" "+path,
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.SetStatus(codes.Error, "rate limiter")
			return nil, err
		}
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := jsonAPI.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logError("request failed", err, "method", method, "path", path)
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logDebug("request completed",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var env envelope
		if jsonAPI.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	if out == nil {
		return nil, nil
	}

	var env envelope
	if err := jsonAPI.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(env.Data) > 0 {
		if err := jsonAPI.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return env.Pagination, nil
}

// decorate adds the headers common to every request.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// get performs an idempotent read with bounded retry on transport
// failures. Responses the backend actually produced, including errors,
// are never retried.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*Pagination, error) {
	var pagination *Pagination

	op := func() error {
		p, err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if err != nil {
			if IsTransport(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		pagination = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return pagination, nil
}

// search performs a read behind the circuit breaker so a struggling
// backend stops being hammered by keystroke-driven queries.
func (c *Client) search(ctx context.Context, path string, query url.Values, out any) (*Pagination, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, path, query, out)
	})
	if err != nil {
		return nil, err
	}
	pagination, _ := result.(*Pagination)
	return pagination, nil
}
