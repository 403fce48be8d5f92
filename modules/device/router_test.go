package device_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/modules/device"
	"github.com/openacs/tenantkit/pkg/scope"
	"github.com/openacs/tenantkit/pkg/tenant"
)

// bindTenant simulates the isolation pipeline binding a discovered tenant.
func bindTenant(t *tenant.Tenant) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), t)))
		})
	}
}

func newRouter(t *testing.T, ten *tenant.Tenant) (*device.Service, http.Handler) {
	t.Helper()

	storage := scope.NewMemoryStorage[*device.Device]()
	repo := scope.NewRepository(storage)
	svc := device.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	if ten != nil {
		r.Use(bindTenant(ten))
	}
	r.Mount("/", device.Router(svc))
	return svc, r
}

func registerBody(t *testing.T, serial string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(device.RegisterInput{
		SerialNumber: serial,
		OUI:          "00D09E",
		ProductClass: "IGD",
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates device", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{ID: uuid.New(), Active: true}
		_, r := newRouter(t, ten)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", registerBody(t, "SN-001")))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID           uuid.UUID `json:"id"`
			SerialNumber string    `json:"serial_number"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, "SN-001", resp.SerialNumber)
		assert.NotContains(t, rec.Body.String(), "tenant")
	})

	t.Run("quota exceeded returns conflict", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{ID: uuid.New(), Active: true, MaxDevices: 1}
		_, r := newRouter(t, ten)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", registerBody(t, "SN-001")))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", registerBody(t, "SN-002")))
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"device quota exceeded"}`, rec.Body.String())
	})

	t.Run("no tenant bound returns forbidden", func(t *testing.T) {
		t.Parallel()

		_, r := newRouter(t, nil)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", registerBody(t, "SN-001")))
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"access denied"}`, rec.Body.String())
	})

	t.Run("malformed body returns bad request", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{ID: uuid.New(), Active: true}
		_, r := newRouter(t, ten)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", bytes.NewReader([]byte("{"))))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_List(t *testing.T) {
	t.Parallel()

	ten := &tenant.Tenant{ID: uuid.New(), Active: true}
	svc, r := newRouter(t, ten)

	ctx := tenant.WithTenant(t.Context(), ten)
	_, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-002"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Devices []struct {
			SerialNumber string `json:"serial_number"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Devices, 2)
}

func TestRouter_Get(t *testing.T) {
	t.Parallel()

	t.Run("other tenant's device is not found", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{ID: uuid.New(), Active: true}
		svc, r := newRouter(t, ten)

		otherCtx := tenant.WithTenant(t.Context(), &tenant.Tenant{ID: uuid.New(), Active: true})
		d, err := svc.Register(otherCtx, device.RegisterInput{SerialNumber: "SN-X"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/"+d.ID().String(), nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"device not found"}`, rec.Body.String())
	})

	t.Run("invalid id is not found", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{ID: uuid.New(), Active: true}
		_, r := newRouter(t, ten)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/not-a-uuid", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_Inform(t *testing.T) {
	t.Parallel()

	ten := &tenant.Tenant{ID: uuid.New(), Active: true}
	svc, r := newRouter(t, ten)

	ctx := tenant.WithTenant(t.Context(), ten)
	d, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices/"+d.ID().String()+"/inform", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Online       bool    `json:"online"`
		LastInformAt *string `json:"last_inform_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Online)
	assert.NotNil(t, resp.LastInformAt)
}

func TestRouter_Deregister(t *testing.T) {
	t.Parallel()

	ten := &tenant.Tenant{ID: uuid.New(), Active: true}
	svc, r := newRouter(t, ten)

	ctx := tenant.WithTenant(t.Context(), ten)
	d, err := svc.Register(ctx, device.RegisterInput{SerialNumber: "SN-001"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/devices/"+d.ID().String(), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/"+d.ID().String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
