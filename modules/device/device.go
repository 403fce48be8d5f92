package device

import (
	"time"

	"github.com/google/uuid"
)

// Device is a CPE registered with the platform. Ownership lives in the
// unexported tenant id and is only reachable through the scope.Entity
// methods, so handlers cannot set it directly from request payloads.
type Device struct {
	id       uuid.UUID
	tenantID uuid.UUID

	SerialNumber    string
	OUI             string
	ProductClass    string
	Manufacturer    string
	SoftwareVersion string
	ConnectionURL   string
	Online          bool
	LastInformAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New creates an unowned device record. The owning tenant is stamped by
// the scope repository at creation time.
func New(serialNumber, oui, productClass string) *Device {
	now := time.Now()
	return &Device{
		id:           uuid.New(),
		SerialNumber: serialNumber,
		OUI:          oui,
		ProductClass: productClass,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (d *Device) ID() uuid.UUID            { return d.id }
func (d *Device) TenantID() uuid.UUID      { return d.tenantID }
func (d *Device) SetTenantID(id uuid.UUID) { d.tenantID = id }
