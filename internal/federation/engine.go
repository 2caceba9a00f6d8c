// Package federation executes classified query plans against the domain
// subgraphs and stitches cross-domain results together.
package federation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gfde/internal/federation/metrics"
	"gfde/internal/query"
	"gfde/internal/record"
	"gfde/internal/upstream"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/requestcontext"
)

var tracer = otel.Tracer("gfde/federation")

// Engine runs plans. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	users   upstream.DomainClient
	orders  upstream.DomainClient
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an engine over the users and orders domains.
func New(users, orders upstream.DomainClient, opts ...Option) *Engine {
	e := &Engine{users: users, orders: orders, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs plan. A failed join returns an error and no data.
func (e *Engine) Execute(ctx context.Context, plan query.Plan) (query.Response, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "federation.execute",
		trace.WithAttributes(attribute.String("gfde.plan", plan.Kind())))
	defer span.End()

	var (
		resp query.Response
		err  error
	)
	switch p := plan.(type) {
	case query.SingleDomain:
		resp, err = e.single(ctx, p)
	case query.UserWithOrders:
		resp, err = e.userWithOrders(ctx, p)
	default:
		err = dErrors.New(dErrors.CodeInternal, "unsupported plan "+plan.Kind())
	}

	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	e.metrics.ObserveExecute(plan.Kind(), outcome, time.Since(start))
	return resp, err
}

func (e *Engine) single(ctx context.Context, p query.SingleDomain) (query.Response, error) {
	client, err := e.client(p.Domain)
	if err != nil {
		return query.Response{}, err
	}
	return client.Execute(ctx, p.Request)
}

func (e *Engine) userWithOrders(ctx context.Context, p query.UserWithOrders) (query.Response, error) {
	requestID := requestcontext.RequestID(ctx)

	primary, err := e.users.Execute(ctx, p.Primary)
	if err != nil {
		e.metrics.IncrementJoinFailure("primary")
		return query.Response{}, err
	}

	key, entity, userID, err := joinSource(primary.Data, p.IDKey)
	if err != nil {
		e.metrics.IncrementJoinFailure("source_missing")
		e.logger.InfoContext(ctx, "join source missing",
			"request_id", requestID,
			"response_key", p.ResponseKey,
		)
		return query.Response{}, err
	}

	secondaryReq, err := query.OrdersByUser(userID, p.Limit, p.Selection, p.Fragments)
	if err != nil {
		return query.Response{}, err
	}
	secondary, err := e.orders.Execute(ctx, secondaryReq)
	if err != nil {
		e.metrics.IncrementJoinFailure("secondary")
		e.logger.WarnContext(ctx, "join secondary call failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		return query.Response{}, err
	}

	orders, ok := secondary.Data.Get(query.SecondaryField)
	if !ok || orders.Kind() != record.KindList {
		e.metrics.IncrementJoinFailure("bad_secondary")
		return query.Response{}, dErrors.New(dErrors.CodeUpstreamUnavailable,
			"orders response has no "+query.SecondaryField+" list")
	}

	if p.IDKey == query.JoinIDKey {
		entity = entity.Without(query.JoinIDKey)
	}
	merged := entity.With(query.JoinField, orders)
	e.logger.DebugContext(ctx, "join merged",
		"request_id", requestID,
		"user_id", userID,
		"limit", p.Limit,
	)
	return query.Response{Data: primary.Data.With(key, record.DocumentValue(merged))}, nil
}

// joinSource extracts the entity the join hangs off: the first value of the
// primary data, which must be a non-empty document with a string id under
// idKey ("id" when empty).
func joinSource(data record.Document, idKey string) (key string, entity record.Document, id string, err error) {
	if idKey == "" {
		idKey = "id"
	}
	key, v, ok := data.First()
	if !ok {
		return "", record.Document{}, "", dErrors.New(dErrors.CodeJoinSourceMissing, "primary response has no data")
	}
	entity, ok = v.AsDocument()
	if !ok || entity.Len() == 0 {
		return "", record.Document{}, "", dErrors.New(dErrors.CodeJoinSourceMissing, "no "+key+" to join orders to")
	}
	id, ok = entity.GetString(idKey)
	if !ok || id == "" {
		return "", record.Document{}, "", dErrors.New(dErrors.CodeJoinSourceMissing, key+" has no id to join orders on")
	}
	return key, entity, id, nil
}

func (e *Engine) client(d query.Domain) (upstream.DomainClient, error) {
	switch d {
	case query.DomainUsers:
		return e.users, nil
	case query.DomainOrders:
		return e.orders, nil
	default:
		return nil, dErrors.New(dErrors.CodeInternal, "no client for domain "+string(d))
	}
}
