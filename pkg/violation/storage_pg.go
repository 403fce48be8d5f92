package violation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage persists violation records in PostgreSQL.
// Expects the tenant_violations table from the bundled migrations.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a PostgreSQL-backed violation storage.
func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, errors.New("violation: pg pool is required")
	}
	return &PGStorage{pool: pool}, nil
}

// Store appends a record. The table carries no update or delete paths.
func (s *PGStorage) Store(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	var metadata []byte
	if record.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(record.Metadata); err != nil {
			return fmt.Errorf("failed to marshal violation metadata: %w", err)
		}
	}

	const q = `
		INSERT INTO tenant_violations (
			id, kind, severity, actor_user_id, actor_session_id, actor_ip,
			actor_user_agent, description, expected_tenant, actual_tenant,
			path, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, q,
		record.ID, string(record.Kind), string(record.Severity),
		nullable(record.Actor.UserID), nullable(record.Actor.SessionID),
		nullable(record.Actor.IP), nullable(record.Actor.UserAgent),
		record.Description, nullable(record.ExpectedTenant),
		nullable(record.ActualTenant), nullable(record.Path),
		metadata, record.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}

	return nil
}

// Query retrieves matching records, newest first.
func (s *PGStorage) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if criteria.Kind != "" {
		conds = append(conds, "kind = "+arg(string(criteria.Kind)))
	}
	if criteria.TenantID != "" {
		p := arg(criteria.TenantID)
		conds = append(conds, fmt.Sprintf("(expected_tenant = %s OR actual_tenant = %s)", p, p))
	}
	if criteria.UserID != "" {
		conds = append(conds, "actor_user_id = "+arg(criteria.UserID))
	}
	if !criteria.Since.IsZero() {
		conds = append(conds, "created_at >= "+arg(criteria.Since))
	}
	if !criteria.Until.IsZero() {
		conds = append(conds, "created_at <= "+arg(criteria.Until))
	}

	q := `
		SELECT id, kind, severity, actor_user_id, actor_session_id, actor_ip,
		       actor_user_agent, description, expected_tenant, actual_tenant,
		       path, metadata, created_at
		FROM tenant_violations`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if criteria.Limit > 0 {
		q += " LIMIT " + arg(criteria.Limit)
	}
	if criteria.Offset > 0 {
		q += " OFFSET " + arg(criteria.Offset)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r        Record
			kind     string
			severity string
			userID, sessionID, ip, userAgent,
			expected, actual, path *string
			metadata []byte
		)

		if err := rows.Scan(&r.ID, &kind, &severity, &userID, &sessionID, &ip,
			&userAgent, &r.Description, &expected, &actual, &path,
			&metadata, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan violation record: %w", err)
		}

		r.Kind = Kind(kind)
		r.Severity = Severity(severity)
		r.Actor.UserID = deref(userID)
		r.Actor.SessionID = deref(sessionID)
		r.Actor.IP = deref(ip)
		r.Actor.UserAgent = deref(userAgent)
		r.ExpectedTenant = deref(expected)
		r.ActualTenant = deref(actual)
		r.Path = deref(path)

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal violation metadata: %w", err)
			}
		}

		// Severity filtering happens here rather than in SQL: severities
		// are ordinal in Go but plain strings in the table.
		if criteria.MinSeverity != "" && !r.Severity.AtLeast(criteria.MinSeverity) {
			continue
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
