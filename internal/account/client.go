package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"signup/internal/platform/metrics"
	"signup/pkg/platform/circuit"
)

const (
	registerPath = "/users/register"
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// HTTPClient calls the account service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
	tracer  trace.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying client. The configured timeout is
// not applied to a replaced client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.http = c
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(h *HTTPClient) {
		h.breaker = b
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(h *HTTPClient) {
		h.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPClient) {
		h.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

// NewHTTPClient builds a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: circuit.New("account"),
		tracer:  otel.Tracer("signup/account"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register posts reg to the account service.
//
// A 2xx response is success. Any other status becomes a *RemoteError carrying
// the service's message. Transport failures and 5xx responses count against
// the circuit breaker; while it is open calls fail fast with an
// *UnavailableError.
func (c *HTTPClient) Register(ctx context.Context, reg Registration) error {
	ctx, span := c.tracer.Start(ctx, "account.register",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("account.username", reg.Username)),
	)
	defer span.End()

	if !c.breaker.Allow() {
		err := &UnavailableError{}
		span.SetStatus(codes.Error, "circuit open")
		c.metrics.ObserveAccountCall("circuit_open", 0)
		return err
	}

	start := time.Now()
	err := c.do(ctx, reg)
	elapsed := time.Since(start)

	var remote *RemoteError
	switch {
	case err == nil:
		c.recordSuccess(ctx)
		c.metrics.ObserveAccountCall("ok", elapsed)
	case errors.As(err, &remote) && remote.StatusCode < http.StatusInternalServerError:
		// The service answered; a rejection says nothing about its health.
		c.recordSuccess(ctx)
		c.metrics.ObserveAccountCall("rejected", elapsed)
		span.SetAttributes(attribute.Int("http.response.status_code", remote.StatusCode))
		span.SetStatus(codes.Error, "rejected")
	default:
		c.recordFailure(ctx)
		c.metrics.ObserveAccountCall("error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, reg Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+registerPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	remote := &RemoteError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &payload) == nil {
		remote.Message = payload.Message
	}
	return remote
}

func (c *HTTPClient) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "account service circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *HTTPClient) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "account service circuit opened", "breaker", c.breaker.Name())
	}
}
