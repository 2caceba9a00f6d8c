// Package users is the users domain: a thin typed service over the record
// store and the subgraph schema that serves it.
package users

import (
	"context"
	"log/slog"

	"gfde/internal/record"
)

// Service reads and writes users. Every operation is a single store call.
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

// NewService creates a users service backed by store.
func NewService(store record.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupByID returns the user with id, or nil when there is none.
func (s *Service) LookupByID(ctx context.Context, id string) (*User, error) {
	rec, found, err := s.store.Get(ctx, RecordType, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return fromRecord(rec), nil
}

// LookupByEmail returns the first user with email, or nil when there is none.
func (s *Service) LookupByEmail(ctx context.Context, email string) (*User, error) {
	recs, err := s.store.Scan(ctx, RecordType, "email", record.String(email), 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return fromRecord(recs[0]), nil
}

// Upsert creates or replaces the user and returns it with its new version.
func (s *Service) Upsert(ctx context.Context, id, email, name string) (*User, error) {
	u := &User{ID: id, Email: email, Name: name}
	version, err := s.store.Put(ctx, RecordType, id, u.Document())
	if err != nil {
		return nil, err
	}
	u.Version = version
	s.logger.DebugContext(ctx, "user upserted", "user_id", id, "version", version)
	return u, nil
}
