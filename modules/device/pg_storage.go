package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openacs/tenantkit/pkg/pg"
	"github.com/openacs/tenantkit/pkg/scope"
)

// PGStorage implements scope.Storage for devices on PostgreSQL.
// The devices table carries a unique (tenant_id, serial_number) index;
// see the migrations directory.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a PostgreSQL-backed device storage.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

const deviceColumns = `id, tenant_id, serial_number, oui, product_class, manufacturer,
	software_version, connection_url, online, last_inform_at, created_at, updated_at`

func (s *PGStorage) Insert(ctx context.Context, d *Device) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID(), d.TenantID(), d.SerialNumber, d.OUI, d.ProductClass, d.Manufacturer,
		d.SoftwareVersion, d.ConnectionURL, d.Online, d.LastInformAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateSerial
		}
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

func (s *PGStorage) Find(ctx context.Context, id uuid.UUID) (*Device, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE id = $1`, id)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, scope.ErrEntityNotFound
		}
		return nil, fmt.Errorf("select device: %w", err)
	}
	return d, nil
}

func (s *PGStorage) Select(ctx context.Context, filter scope.Filter) ([]*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices`
	args := []any{}
	if filter.TenantID != nil {
		query += ` WHERE tenant_id = $1`
		args = append(args, *filter.TenantID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select devices: %w", err)
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	return devices, nil
}

func (s *PGStorage) Count(ctx context.Context, filter scope.Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM devices`
	args := []any{}
	if filter.TenantID != nil {
		query += ` WHERE tenant_id = $1`
		args = append(args, *filter.TenantID)
	}

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count devices: %w", err)
	}
	return count, nil
}

func (s *PGStorage) Save(ctx context.Context, d *Device) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE devices
		SET tenant_id = $2, serial_number = $3, oui = $4, product_class = $5,
			manufacturer = $6, software_version = $7, connection_url = $8,
			online = $9, last_inform_at = $10, updated_at = $11
		WHERE id = $1`,
		d.ID(), d.TenantID(), d.SerialNumber, d.OUI, d.ProductClass,
		d.Manufacturer, d.SoftwareVersion, d.ConnectionURL,
		d.Online, d.LastInformAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return scope.ErrEntityNotFound
	}
	return nil
}

func (s *PGStorage) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return scope.ErrEntityNotFound
	}
	return nil
}

func scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(&d.id, &d.tenantID, &d.SerialNumber, &d.OUI, &d.ProductClass,
		&d.Manufacturer, &d.SoftwareVersion, &d.ConnectionURL,
		&d.Online, &d.LastInformAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
