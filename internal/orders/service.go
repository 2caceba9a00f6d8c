// Package orders is the orders domain: a thin typed service over the record
// store and the subgraph schema that serves it.
package orders

import (
	"context"
	"log/slog"

	"gfde/internal/record"
	"gfde/pkg/requestcontext"
)

// DefaultListCount is used when ListByUser is called without a count.
const DefaultListCount = 10

// Service reads and writes orders. Every operation is a single store call.
type Service struct {
	store  record.Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates an orders service backed by store.
func NewService(store record.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListByUser returns up to count orders of userID in creation order. A zero
// count means DefaultListCount.
func (s *Service) ListByUser(ctx context.Context, userID string, count int) ([]*Order, error) {
	if count == 0 {
		count = DefaultListCount
	}
	recs, err := s.store.Scan(ctx, RecordType, "userId", record.String(userID), count)
	if err != nil {
		return nil, err
	}
	out := make([]*Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

// Create stores an order stamped with the request time and returns it with
// its version. Writing an existing id replaces that order.
func (s *Service) Create(ctx context.Context, id, userID string, total float64) (*Order, error) {
	o := &Order{
		ID:        id,
		UserID:    userID,
		Total:     total,
		CreatedAt: formatCreatedAt(requestcontext.Now(ctx)),
	}
	version, err := s.store.Put(ctx, RecordType, id, o.Document())
	if err != nil {
		return nil, err
	}
	o.Version = version
	s.logger.DebugContext(ctx, "order created", "order_id", id, "user_id", userID, "version", version)
	return o, nil
}
