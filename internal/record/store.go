// Package record is the versioned record store shared by every domain service.
//
// Records are addressed by (domain type, id), carry a dynamically typed
// Document payload and a per-key version that starts at 1 and grows by exactly
// one on every Put. The version is also stored on the payload under VersionField
// so readers see it without a second call.
package record

import (
	"context"

	dErrors "gfde/pkg/domain-errors"
)

// VersionField is the reserved payload field holding a record's version.
const VersionField = "_ver"

// Record is one committed record.
type Record struct {
	Type    string
	ID      string
	Version uint64
	Payload Document
}

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store

// Store is the record store contract. Implementations must serialize version
// assignment per key, never expose a version without its payload, and not make
// writers on different keys wait on each other.
//
// Absence and empty scans are ordinary results; errors only come from the
// backend (or from Put validation).
type Store interface {
	// Get returns the current record for the key; found is false when none exists.
	Get(ctx context.Context, domainType, id string) (rec Record, found bool, err error)

	// Put creates or replaces the record and returns its new version. A
	// caller-supplied VersionField is overwritten.
	Put(ctx context.Context, domainType, id string, payload Document) (uint64, error)

	// Scan returns up to limit records of domainType whose field equals value.
	// limit <= 0 yields an empty result.
	Scan(ctx context.Context, domainType, field string, value Value, limit int) ([]Record, error)
}

// WithVersion returns a copy of payload with VersionField set to version.
func WithVersion(payload Document, version uint64) Document {
	return payload.With(VersionField, Number(float64(version)))
}

func validateKey(domainType, id string) error {
	if domainType == "" {
		return dErrors.New(dErrors.CodeValidation, "record type is required")
	}
	if id == "" {
		return dErrors.New(dErrors.CodeValidation, "record id is required")
	}
	return nil
}
