package device_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/modules/device"
	"github.com/openacs/tenantkit/pkg/scope"
	"github.com/openacs/tenantkit/pkg/tenant"
)

func newService(t *testing.T) *device.Service {
	t.Helper()
	storage := scope.NewMemoryStorage[*device.Device]()
	repo := scope.NewRepository(storage)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return device.NewService(repo, log)
}

func tenantCtx(id uuid.UUID, maxDevices int) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{
		ID:         id,
		Slug:       "acme",
		Name:       "Acme Networks",
		Active:     true,
		MaxDevices: maxDevices,
	})
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("stamps ambient tenant", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		tenantID := uuid.New()

		d, err := svc.Register(tenantCtx(tenantID, 0), device.RegisterInput{
			SerialNumber: "SN-001",
			OUI:          "00D09E",
			ProductClass: "IGD",
			Manufacturer: "ZyXEL",
		})
		require.NoError(t, err)
		assert.Equal(t, tenantID, d.TenantID())
		assert.Equal(t, "SN-001", d.SerialNumber)
		assert.False(t, d.Online)
	})

	t.Run("enforces device quota", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		ctx := tenantCtx(uuid.New(), 1)

		_, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-002"})
		require.ErrorIs(t, err, device.ErrQuotaExceeded)
	})

	t.Run("zero quota means unlimited", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		ctx := tenantCtx(uuid.New(), 0)

		for i := range 10 {
			_, err := svc.Register(ctx, device.RegisterInput{SerialNumber: fmt.Sprintf("SN-%03d", i)})
			require.NoError(t, err)
		}

		devices, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, devices, 10)
	})

	t.Run("quota counts only ambient tenant devices", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		other := tenantCtx(uuid.New(), 0)
		for range 5 {
			_, err := svc.Register(other, device.RegisterInput{SerialNumber: uuid.NewString()})
			require.NoError(t, err)
		}

		_, err := svc.Register(tenantCtx(uuid.New(), 2), device.RegisterInput{SerialNumber: "SN-100"})
		require.NoError(t, err)
	})

	t.Run("rejects duplicate serial within tenant", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		ctx := tenantCtx(uuid.New(), 0)

		_, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
		require.ErrorIs(t, err, device.ErrDuplicateSerial)
	})

	t.Run("same serial allowed across tenants", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)

		_, err := svc.Register(tenantCtx(uuid.New(), 0), device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)

		_, err = svc.Register(tenantCtx(uuid.New(), 0), device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)
	})

	t.Run("requires serial number", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		_, err := svc.Register(tenantCtx(uuid.New(), 0), device.RegisterInput{})
		require.ErrorIs(t, err, device.ErrMissingSerial)
	})

	t.Run("requires bound tenant", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		_, err := svc.Register(context.Background(), device.RegisterInput{SerialNumber: "SN-001"})
		require.ErrorIs(t, err, scope.ErrNoTenantInScope)
	})
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	t.Run("other tenant's device is not found", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		d, err := svc.Register(tenantCtx(uuid.New(), 0), device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)

		_, err = svc.Get(tenantCtx(uuid.New(), 0), d.ID())
		require.ErrorIs(t, err, scope.ErrEntityNotFound)
	})

	t.Run("own device is returned", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		ctx := tenantCtx(uuid.New(), 0)
		d, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
		require.NoError(t, err)

		got, err := svc.Get(ctx, d.ID())
		require.NoError(t, err)
		assert.Equal(t, d.ID(), got.ID())
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := tenantCtx(uuid.New(), 0)
	d, err := svc.Register(ctx, device.RegisterInput{
		SerialNumber:    "SN-001",
		SoftwareVersion: "1.0.0",
	})
	require.NoError(t, err)

	version := "1.1.0"
	updated, err := svc.Update(ctx, d.ID(), device.UpdateInput{SoftwareVersion: &version})
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", updated.SoftwareVersion)
	assert.Equal(t, "SN-001", updated.SerialNumber)
}

func TestService_RecordInform(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := tenantCtx(uuid.New(), 0)
	d, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
	require.NoError(t, err)
	require.False(t, d.Online)

	informed, err := svc.RecordInform(ctx, d.ID())
	require.NoError(t, err)
	assert.True(t, informed.Online)
	require.NotNil(t, informed.LastInformAt)

	t.Run("cross tenant inform is not found", func(t *testing.T) {
		_, err := svc.RecordInform(tenantCtx(uuid.New(), 0), d.ID())
		require.ErrorIs(t, err, scope.ErrEntityNotFound)
	})
}

func TestService_Deregister(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := tenantCtx(uuid.New(), 0)
	d, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
	require.NoError(t, err)

	require.NoError(t, svc.Deregister(ctx, d.ID()))

	_, err = svc.Get(ctx, d.ID())
	require.ErrorIs(t, err, scope.ErrEntityNotFound)
}
