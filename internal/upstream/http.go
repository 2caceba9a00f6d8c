package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"gfde/internal/query"
	"gfde/internal/upstream/metrics"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/platform/circuit"
	"gfde/pkg/platform/httputil"
	"gfde/pkg/requestcontext"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 4 << 20
)

var tracer = otel.Tracer("gfde/upstream")

// HTTPClient calls a remote subgraph's POST /graphql endpoint.
type HTTPClient struct {
	domain  string
	url     string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout bounds each call, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBreaker guards calls with a circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *HTTPClient) {
		c.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPClient creates a client for the subgraph of domain served at baseURL.
func NewHTTPClient(domain, baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		domain:  domain,
		url:     strings.TrimRight(baseURL, "/") + "/graphql",
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Execute(ctx context.Context, req query.Request) (query.Response, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "upstream.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("gfde.domain", c.domain)),
	)
	defer span.End()

	resp, err := c.execute(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	c.metrics.ObserveCall(c.domain, outcome, time.Since(start))
	return resp, err
}

func (c *HTTPClient) execute(ctx context.Context, req query.Request) (query.Response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return query.Response{}, dErrors.New(dErrors.CodeUpstreamUnavailable, c.domain+" is unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return query.Response{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode upstream request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return query.Response{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		httpReq.Header.Set(requestcontext.RequestIDHeader, requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.recordFailure(ctx)
		return query.Response{}, c.transportError(ctx, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		c.recordFailure(ctx)
		return query.Response{}, c.transportError(ctx, err)
	}

	if httpResp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure(ctx)
	} else {
		c.recordSuccess(ctx)
	}

	if httpResp.StatusCode != http.StatusOK {
		return query.Response{}, c.statusError(httpResp.StatusCode, raw)
	}

	var out query.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return query.Response{}, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable,
			c.domain+" returned a malformed response")
	}
	return out, nil
}

// statusError keeps the code of an error envelope written by the subgraph;
// anything else from a non-200 response means the upstream is unusable.
func (c *HTTPClient) statusError(status int, body []byte) error {
	if env, ok := httputil.ReadErrorResponse(body); ok {
		return &dErrors.Error{Code: dErrors.Code(env.Error), Message: env.ErrorDescription}
	}
	return dErrors.New(dErrors.CodeUpstreamUnavailable,
		fmt.Sprintf("%s responded with status %d", c.domain, status))
}

func (c *HTTPClient) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, c.domain+" did not respond in time")
	}
	return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, c.domain+" is unavailable")
}

func (c *HTTPClient) recordFailure(ctx context.Context) {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.IncrementBreakerTransition(c.domain, string(circuit.StateOpen))
		c.logger.WarnContext(ctx, "upstream circuit opened",
			"domain", c.domain,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (c *HTTPClient) recordSuccess(ctx context.Context) {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.IncrementBreakerTransition(c.domain, string(circuit.StateClosed))
		c.logger.InfoContext(ctx, "upstream circuit closed", "domain", c.domain)
	}
}

var _ DomainClient = (*HTTPClient)(nil)
