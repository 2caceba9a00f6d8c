package record

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "gfde/pkg/domain-errors"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func userDoc(id, email string) Document {
	return NewDocument(
		Field{"id", String(id)},
		Field{"email", String(email)},
	)
}

func (s *InMemoryStoreSuite) TestReadYourWrite() {
	s.Run("get returns payload plus version", func() {
		v, err := s.store.Put(s.ctx, "User", "u1", userDoc("u1", "a@x.com"))
		s.Require().NoError(err)
		s.Equal(uint64(1), v)

		rec, found, err := s.store.Get(s.ctx, "User", "u1")
		s.Require().NoError(err)
		s.Require().True(found)
		s.Equal(uint64(1), rec.Version)
		s.True(rec.Payload.Equal(WithVersion(userDoc("u1", "a@x.com"), 1)))
	})

	s.Run("put replaces payload and bumps version", func() {
		v, err := s.store.Put(s.ctx, "User", "u1", userDoc("u1", "b@x.com"))
		s.Require().NoError(err)
		s.Equal(uint64(2), v)

		rec, found, err := s.store.Get(s.ctx, "User", "u1")
		s.Require().NoError(err)
		s.Require().True(found)
		email, _ := rec.Payload.GetString("email")
		s.Equal("b@x.com", email)
		ver, _ := rec.Payload.Get(VersionField)
		s.True(ver.Equal(Int(2)))
	})

	s.Run("absent key is not an error", func() {
		_, found, err := s.store.Get(s.ctx, "User", "missing")
		s.Require().NoError(err)
		s.False(found)

		_, found, err = s.store.Get(s.ctx, "Nope", "u1")
		s.Require().NoError(err)
		s.False(found)
	})
}

func (s *InMemoryStoreSuite) TestPutValidation() {
	_, err := s.store.Put(s.ctx, "", "u1", Document{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.store.Put(s.ctx, "User", "", Document{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Run("whitespace is a valid id", func() {
		v, err := s.store.Put(s.ctx, "User", " ", userDoc(" ", "blank@x.com"))
		s.Require().NoError(err)
		s.Equal(uint64(1), v)

		rec, found, err := s.store.Get(s.ctx, "User", " ")
		s.Require().NoError(err)
		s.True(found)
		s.Equal(" ", rec.ID)
	})
}

func (s *InMemoryStoreSuite) TestReservedVersionFieldIsOverwritten() {
	payload := userDoc("u1", "a@x.com").With(VersionField, Int(99))

	v, err := s.store.Put(s.ctx, "User", "u1", payload)
	s.Require().NoError(err)
	s.Equal(uint64(1), v)

	rec, _, err := s.store.Get(s.ctx, "User", "u1")
	s.Require().NoError(err)
	ver, _ := rec.Payload.Get(VersionField)
	s.True(ver.Equal(Int(1)))
}

func (s *InMemoryStoreSuite) TestCallerCannotMutateStoredState() {
	payload := userDoc("u1", "a@x.com")
	_, err := s.store.Put(s.ctx, "User", "u1", payload)
	s.Require().NoError(err)
	payload.Set("email", String("mutated@x.com"))

	rec, _, err := s.store.Get(s.ctx, "User", "u1")
	s.Require().NoError(err)
	rec.Payload.Set("email", String("also-mutated@x.com"))

	again, _, err := s.store.Get(s.ctx, "User", "u1")
	s.Require().NoError(err)
	email, _ := again.Payload.GetString("email")
	s.Equal("a@x.com", email)
}

func (s *InMemoryStoreSuite) TestScan() {
	for i, uid := range []string{"u1", "u2", "u1", "u3", "u1"} {
		doc := NewDocument(
			Field{"id", String(fmt.Sprintf("o%d", i+1))},
			Field{"userId", String(uid)},
			Field{"total", Int(int64(10 * (i + 1)))},
		)
		_, err := s.store.Put(s.ctx, "Order", fmt.Sprintf("o%d", i+1), doc)
		s.Require().NoError(err)
	}

	s.Run("returns exactly the matching subset in first-write order", func() {
		recs, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), 10)
		s.Require().NoError(err)
		s.Equal([]string{"o1", "o3", "o5"}, ids(recs))
	})

	s.Run("truncates to limit", func() {
		recs, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), 2)
		s.Require().NoError(err)
		s.Equal([]string{"o1", "o3"}, ids(recs))
	})

	s.Run("limit zero or negative is empty", func() {
		for _, limit := range []int{0, -3} {
			recs, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), limit)
			s.Require().NoError(err)
			s.NotNil(recs)
			s.Empty(recs)
		}
	})

	s.Run("unknown type or field is empty", func() {
		recs, err := s.store.Scan(s.ctx, "Invoice", "userId", String("u1"), 5)
		s.Require().NoError(err)
		s.Empty(recs)

		recs, err = s.store.Scan(s.ctx, "Order", "customer", String("u1"), 5)
		s.Require().NoError(err)
		s.Empty(recs)
	})

	s.Run("equality is exact and kind sensitive", func() {
		recs, err := s.store.Scan(s.ctx, "Order", "total", Int(20), 5)
		s.Require().NoError(err)
		s.Equal([]string{"o2"}, ids(recs))

		recs, err = s.store.Scan(s.ctx, "Order", "total", String("20"), 5)
		s.Require().NoError(err)
		s.Empty(recs)

		recs, err = s.store.Scan(s.ctx, "Order", "userId", String("u"), 5)
		s.Require().NoError(err)
		s.Empty(recs, "no prefix matching")
	})

	s.Run("each record carries its own version", func() {
		_, err := s.store.Put(s.ctx, "Order", "o3", NewDocument(
			Field{"id", String("o3")},
			Field{"userId", String("u1")},
			Field{"total", Int(31)},
		))
		s.Require().NoError(err)

		recs, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), 10)
		s.Require().NoError(err)
		s.Equal([]string{"o1", "o3", "o5"}, ids(recs), "update keeps scan position")
		s.Equal([]uint64{1, 2, 1}, versions(recs))
	})

	s.Run("reads are idempotent", func() {
		first, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), 10)
		s.Require().NoError(err)
		second, err := s.store.Scan(s.ctx, "Order", "userId", String("u1"), 10)
		s.Require().NoError(err)
		s.Require().Len(second, len(first))
		for i := range first {
			s.True(first[i].Payload.Equal(second[i].Payload))
		}
	})
}

func (s *InMemoryStoreSuite) TestConcurrentPutsSameKey() {
	const writers = 64

	var wg sync.WaitGroup
	got := make([]uint64, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.store.Put(s.ctx, "User", "hot", userDoc("hot", fmt.Sprintf("%d@x.com", i)))
			s.NoError(err)
			got[i] = v
		}()
	}
	wg.Wait()

	sort.Slice(got, func(a, b int) bool { return got[a] < got[b] })
	for i, v := range got {
		s.Equal(uint64(i+1), v, "versions must be 1..N without gaps or repeats")
	}

	rec, found, err := s.store.Get(s.ctx, "User", "hot")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(uint64(writers), rec.Version)
}

func (s *InMemoryStoreSuite) TestConcurrentPutsDistinctKeys() {
	const perKey = 50
	keys := []string{"a", "b"}

	var wg sync.WaitGroup
	results := map[string][]uint64{}
	var mu sync.Mutex
	for _, key := range keys {
		for range perKey {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := s.store.Put(s.ctx, "User", key, userDoc(key, key+"@x.com"))
				s.NoError(err)
				mu.Lock()
				results[key] = append(results[key], v)
				mu.Unlock()
			}()
		}
	}
	wg.Wait()

	for _, key := range keys {
		vs := results[key]
		sort.Slice(vs, func(a, b int) bool { return vs[a] < vs[b] })
		s.Len(vs, perKey)
		for i, v := range vs {
			s.Equal(uint64(i+1), v, "key %s", key)
		}
	}
}

func (s *InMemoryStoreSuite) TestReadersNeverSeeTornWrites() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			_, err := s.store.Put(s.ctx, "User", "u1", NewDocument(
				Field{"id", String("u1")},
				Field{"seq", Int(int64(i + 1))},
			))
			s.NoError(err)
		}
		close(done)
	}()

	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		rec, found, err := s.store.Get(s.ctx, "User", "u1")
		s.Require().NoError(err)
		if !found {
			continue
		}
		seq, _ := rec.Payload.Get("seq")
		s.True(seq.Equal(Int(int64(rec.Version))), "payload written with version %d", rec.Version)
	}
}

func (s *InMemoryStoreSuite) TestInstancesAreIsolated() {
	other := NewInMemoryStore()
	_, err := s.store.Put(s.ctx, "User", "u1", userDoc("u1", "a@x.com"))
	s.Require().NoError(err)

	_, found, err := other.Get(s.ctx, "User", "u1")
	s.Require().NoError(err)
	s.False(found)
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func versions(recs []Record) []uint64 {
	out := make([]uint64, len(recs))
	for i, r := range recs {
		out[i] = r.Version
	}
	return out
}
