package violation_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/violation"
)

func newRecord(kind violation.Kind, severity violation.Severity, createdAt time.Time) violation.Record {
	return violation.Record{
		ID:          uuid.New(),
		Kind:        kind,
		Severity:    severity,
		Description: "test",
		CreatedAt:   createdAt,
	}
}

// slowStorage delays every write to keep the async buffer occupied.
type slowStorage struct {
	violation.Storage
	delay time.Duration
}

func (s *slowStorage) Store(ctx context.Context, record violation.Record) error {
	time.Sleep(s.delay)
	return s.Storage.Store(ctx, record)
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	t.Run("rejects record without kind", func(t *testing.T) {
		t.Parallel()

		s := violation.NewMemoryStorage()
		err := s.Store(context.Background(), violation.Record{ID: uuid.New()})
		assert.ErrorIs(t, err, violation.ErrRecordValidation)
	})

	t.Run("query filters by kind and severity", func(t *testing.T) {
		t.Parallel()

		s := violation.NewMemoryStorage()
		ctx := context.Background()
		now := time.Now()

		require.NoError(t, s.Store(ctx, newRecord(violation.KindTenantNotFound, violation.SeverityWarning, now)))
		require.NoError(t, s.Store(ctx, newRecord(violation.KindTokenScopeViolation, violation.SeverityCritical, now)))
		require.NoError(t, s.Store(ctx, newRecord(violation.KindUnscopedAccess, violation.SeverityInfo, now)))

		records, err := s.Query(ctx, violation.Criteria{Kind: violation.KindTokenScopeViolation})
		require.NoError(t, err)
		require.Len(t, records, 1)

		records, err = s.Query(ctx, violation.Criteria{MinSeverity: violation.SeverityWarning})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("query orders newest first and paginates", func(t *testing.T) {
		t.Parallel()

		s := violation.NewMemoryStorage()
		ctx := context.Background()
		base := time.Now()

		for i := range 5 {
			require.NoError(t, s.Store(ctx, newRecord(violation.KindTenantNotFound,
				violation.SeverityWarning, base.Add(time.Duration(i)*time.Second))))
		}

		records, err := s.Query(ctx, violation.Criteria{Limit: 2})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))

		records, err = s.Query(ctx, violation.Criteria{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Len(t, records, 1)

		records, err = s.Query(ctx, violation.Criteria{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("query filters by time window", func(t *testing.T) {
		t.Parallel()

		s := violation.NewMemoryStorage()
		ctx := context.Background()
		base := time.Now()

		require.NoError(t, s.Store(ctx, newRecord(violation.KindTenantNotFound, violation.SeverityWarning, base.Add(-time.Hour))))
		require.NoError(t, s.Store(ctx, newRecord(violation.KindTenantNotFound, violation.SeverityWarning, base)))

		records, err := s.Query(ctx, violation.Criteria{Since: base.Add(-time.Minute)})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestAsyncStorage(t *testing.T) {
	t.Parallel()

	t.Run("flushes buffered records on close", func(t *testing.T) {
		t.Parallel()

		inner := violation.NewMemoryStorage()
		s := violation.NewAsyncStorage(inner, 16, time.Second, slog.New(slog.DiscardHandler))

		ctx := context.Background()
		for range 10 {
			require.NoError(t, s.Store(ctx, newRecord(violation.KindTenantNotFound, violation.SeverityWarning, time.Now())))
		}

		require.NoError(t, s.Close())
		assert.Equal(t, 10, inner.Len())
	})

	t.Run("overflow degrades to synchronous write", func(t *testing.T) {
		t.Parallel()

		inner := violation.NewMemoryStorage()
		slow := &slowStorage{Storage: inner, delay: 5 * time.Millisecond}
		s := violation.NewAsyncStorage(slow, 1, time.Second, slog.New(slog.DiscardHandler))

		ctx := context.Background()

		// The slow backend keeps the single-slot buffer occupied, so
		// later stores must take the synchronous overflow path. No
		// record may be lost either way.
		var sawOverflow bool
		for range 20 {
			if err := s.Store(ctx, newRecord(violation.KindTenantNotFound, violation.SeverityWarning, time.Now())); err != nil {
				require.ErrorIs(t, err, violation.ErrBufferFull)
				sawOverflow = true
			}
		}

		require.NoError(t, s.Close())
		assert.Equal(t, 20, inner.Len())
		assert.True(t, sawOverflow)
	})

	t.Run("query passes through to inner storage", func(t *testing.T) {
		t.Parallel()

		inner := violation.NewMemoryStorage()
		require.NoError(t, inner.Store(context.Background(),
			newRecord(violation.KindTokenUserMismatch, violation.SeverityError, time.Now())))

		s := violation.NewAsyncStorage(inner, 4, time.Second, slog.New(slog.DiscardHandler))
		t.Cleanup(func() { _ = s.Close() })

		records, err := s.Query(context.Background(), violation.Criteria{})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	assert.True(t, violation.SeverityCritical.AtLeast(violation.SeverityInfo))
	assert.True(t, violation.SeverityWarning.AtLeast(violation.SeverityWarning))
	assert.False(t, violation.SeverityInfo.AtLeast(violation.SeverityError))

	assert.Equal(t, violation.SeverityCritical, violation.ParseSeverity("critical"))
	assert.Equal(t, violation.SeverityWarning, violation.ParseSeverity("bogus"))
}
