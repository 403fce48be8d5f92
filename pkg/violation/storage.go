package violation

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Storage persists violation records. Records are append-only; no storage
// implementation exposes mutation or deletion.
type Storage interface {
	// Store appends a single record.
	Store(ctx context.Context, record Record) error

	// Query retrieves records matching the criteria, newest first.
	Query(ctx context.Context, criteria Criteria) ([]Record, error)
}

// Criteria filters violation queries.
type Criteria struct {
	Kind        Kind
	TenantID    string // matches either expected or actual tenant
	UserID      string
	MinSeverity Severity
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

// MemoryStorage is an in-memory append-only store, suitable for tests and
// single-instance development setups.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a record.
func (s *MemoryStorage) Store(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return nil
}

// Query retrieves matching records, newest first.
func (s *MemoryStorage) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if !matches(r, criteria) {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if criteria.Offset > 0 {
		if criteria.Offset >= len(out) {
			return nil, nil
		}
		out = out[criteria.Offset:]
	}
	if criteria.Limit > 0 && len(out) > criteria.Limit {
		out = out[:criteria.Limit]
	}

	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(r Record, c Criteria) bool {
	if c.Kind != "" && r.Kind != c.Kind {
		return false
	}
	if c.TenantID != "" && r.ExpectedTenant != c.TenantID && r.ActualTenant != c.TenantID {
		return false
	}
	if c.UserID != "" && !strings.EqualFold(r.Actor.UserID, c.UserID) {
		return false
	}
	if c.MinSeverity != "" && !r.Severity.AtLeast(c.MinSeverity) {
		return false
	}
	if !c.Since.IsZero() && r.CreatedAt.Before(c.Since) {
		return false
	}
	if !c.Until.IsZero() && r.CreatedAt.After(c.Until) {
		return false
	}
	return true
}
