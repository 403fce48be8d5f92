package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/logger"
	"github.com/openacs/tenantkit/pkg/scope"
	"github.com/openacs/tenantkit/pkg/tenant"
)

// Service manages the device inventory of the ambient tenant. All reads
// and writes go through the scope repository, so a request bound to one
// tenant can never see or touch another tenant's devices.
type Service struct {
	repo *scope.Repository[*Device]
	log  *slog.Logger
}

// NewService creates a device inventory service over the given repository.
func NewService(repo *scope.Repository[*Device], log *slog.Logger) *Service {
	if repo == nil {
		panic("device: repository cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

// RegisterInput describes a new CPE announcing itself to the platform.
type RegisterInput struct {
	SerialNumber    string `json:"serial_number"`
	OUI             string `json:"oui"`
	ProductClass    string `json:"product_class"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
	ConnectionURL   string `json:"connection_url"`
}

// Register adds a device to the ambient tenant's inventory. The tenant's
// MaxDevices quota is checked first; zero means unlimited.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Device, error) {
	if in.SerialNumber == "" {
		return nil, ErrMissingSerial
	}

	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, scope.ErrNoTenantInScope
	}

	if t.MaxDevices > 0 {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count >= int64(t.MaxDevices) {
			s.log.WarnContext(ctx, "device registration rejected",
				logger.TenantID(t.ID.String()),
				slog.Int64("device_count", count),
				slog.Int("max_devices", t.MaxDevices))
			return nil, ErrQuotaExceeded
		}
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range existing {
		if d.SerialNumber == in.SerialNumber {
			return nil, ErrDuplicateSerial
		}
	}

	d := New(in.SerialNumber, in.OUI, in.ProductClass)
	d.Manufacturer = in.Manufacturer
	d.SoftwareVersion = in.SoftwareVersion
	d.ConnectionURL = in.ConnectionURL

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "device registered",
		logger.DeviceID(d.ID().String()),
		slog.String("serial_number", d.SerialNumber))
	return d, nil
}

// Get retrieves one of the ambient tenant's devices.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Device, error) {
	return s.repo.Get(ctx, id)
}

// List returns the ambient tenant's device inventory.
func (s *Service) List(ctx context.Context) ([]*Device, error) {
	return s.repo.List(ctx)
}

// UpdateInput carries the mutable device attributes. Nil fields are
// left unchanged.
type UpdateInput struct {
	SoftwareVersion *string `json:"software_version"`
	ConnectionURL   *string `json:"connection_url"`
}

// Update applies attribute changes to one of the ambient tenant's devices.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Device, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.SoftwareVersion != nil {
		d.SoftwareVersion = *in.SoftwareVersion
	}
	if in.ConnectionURL != nil {
		d.ConnectionURL = *in.ConnectionURL
	}
	d.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RecordInform marks a device online after it delivered a CWMP Inform.
func (s *Service) RecordInform(ctx context.Context, id uuid.UUID) (*Device, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	d.Online = true
	d.LastInformAt = &now
	d.UpdatedAt = now

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Deregister removes a device from the ambient tenant's inventory.
func (s *Service) Deregister(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "device deregistered", logger.DeviceID(id.String()))
	return nil
}
