package record

import (
	"context"
	"sync"
	"sync/atomic"
)

// InMemoryStore is the default Store. Each instance is independent, so tests
// and processes can hold as many as they need.
//
// Locking: the store lock guards the type->table map, a table lock guards the
// id->slot map, and each slot has its own writer mutex. Committed state is an
// immutable snapshot swapped in atomically, so readers never take a slot lock
// and never see a version without its payload.
type InMemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	mu    sync.RWMutex
	slots map[string]*slot
	order []*slot
}

type slot struct {
	id      string
	writeMu sync.Mutex
	current atomic.Pointer[snapshot]
}

type snapshot struct {
	version uint64
	payload Document
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tables: make(map[string]*table)}
}

func (s *InMemoryStore) Get(_ context.Context, domainType, id string) (Record, bool, error) {
	t := s.table(domainType, false)
	if t == nil {
		return Record{}, false, nil
	}
	sl := t.slot(id, false)
	if sl == nil {
		return Record{}, false, nil
	}
	snap := sl.current.Load()
	if snap == nil {
		return Record{}, false, nil
	}
	return snap.record(domainType, id), true, nil
}

func (s *InMemoryStore) Put(_ context.Context, domainType, id string, payload Document) (uint64, error) {
	if err := validateKey(domainType, id); err != nil {
		return 0, err
	}
	sl := s.table(domainType, true).slot(id, true)

	sl.writeMu.Lock()
	defer sl.writeMu.Unlock()

	var version uint64 = 1
	if prev := sl.current.Load(); prev != nil {
		version = prev.version + 1
	}
	sl.current.Store(&snapshot{
		version: version,
		payload: WithVersion(payload, version),
	})
	return version, nil
}

func (s *InMemoryStore) Scan(_ context.Context, domainType, field string, value Value, limit int) ([]Record, error) {
	out := []Record{}
	if limit <= 0 {
		return out, nil
	}
	t := s.table(domainType, false)
	if t == nil {
		return out, nil
	}

	t.mu.RLock()
	slots := append([]*slot(nil), t.order...)
	t.mu.RUnlock()

	for _, sl := range slots {
		snap := sl.current.Load()
		if snap == nil {
			continue
		}
		fv, ok := snap.payload.fields[field]
		if !ok || !fv.Equal(value) {
			continue
		}
		out = append(out, snap.record(domainType, sl.id))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) table(domainType string, create bool) *table {
	s.mu.RLock()
	t := s.tables[domainType]
	s.mu.RUnlock()
	if t != nil || !create {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t = s.tables[domainType]; t == nil {
		t = &table{slots: make(map[string]*slot)}
		s.tables[domainType] = t
	}
	return t
}

func (t *table) slot(id string, create bool) *slot {
	t.mu.RLock()
	sl := t.slots[id]
	t.mu.RUnlock()
	if sl != nil || !create {
		return sl
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if sl = t.slots[id]; sl == nil {
		sl = &slot{id: id}
		t.slots[id] = sl
		t.order = append(t.order, sl)
	}
	return sl
}

func (s *snapshot) record(domainType, id string) Record {
	return Record{
		Type:    domainType,
		ID:      id,
		Version: s.version,
		Payload: s.payload.Clone(),
	}
}

var _ Store = (*InMemoryStore)(nil)
