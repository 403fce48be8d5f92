package device

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/scope"
)

// Handle returns the device inventory router. Mount it behind the
// isolation pipeline so a tenant is already bound when handlers run.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleList)
	r.Post("/", s.handleRegister)

	r.Route("/{deviceID}", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Put("/", s.handleUpdate)
		r.Delete("/", s.handleDeregister)
		r.Post("/inform", s.handleInform)
	})

	return r
}

// Router mounts the device service under /devices.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Mount("/devices", svc.Handle())
	return r
}

type deviceResponse struct {
	ID              uuid.UUID  `json:"id"`
	SerialNumber    string     `json:"serial_number"`
	OUI             string     `json:"oui"`
	ProductClass    string     `json:"product_class"`
	Manufacturer    string     `json:"manufacturer"`
	SoftwareVersion string     `json:"software_version"`
	ConnectionURL   string     `json:"connection_url"`
	Online          bool       `json:"online"`
	LastInformAt    *time.Time `json:"last_inform_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// toResponse intentionally omits the tenant id: the caller already is
// the tenant, and ids of the isolation boundary never go on the wire.
func toResponse(d *Device) deviceResponse {
	return deviceResponse{
		ID:              d.ID(),
		SerialNumber:    d.SerialNumber,
		OUI:             d.OUI,
		ProductClass:    d.ProductClass,
		Manufacturer:    d.Manufacturer,
		SoftwareVersion: d.SoftwareVersion,
		ConnectionURL:   d.ConnectionURL,
		Online:          d.Online,
		LastInformAt:    d.LastInformAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	devices, err := s.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, toResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": resp})
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := s.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(d))
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	d, err := s.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := s.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (s *Service) handleInform(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	d, err := s.RecordInform(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (s *Service) handleDeregister(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	if err := s.Deregister(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func deviceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "deviceID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors to HTTP responses. Entities of other
// tenants surface as plain not-found, same as absent ones.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scope.ErrEntityNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
	case errors.Is(err, scope.ErrNoTenantInScope):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, ErrQuotaExceeded):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "device quota exceeded"})
	case errors.Is(err, ErrDuplicateSerial):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "duplicate serial number"})
	case errors.Is(err, ErrMissingSerial):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "serial number is required"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
