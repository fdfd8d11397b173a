// Package debug serves container diagnostics over HTTP.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xraph/crate"
)

// ContainerReport is the body of GET /services.
type ContainerReport struct {
	ID       string              `json:"id"`
	Valid    bool                `json:"valid"`
	Error    string              `json:"error,omitempty"`
	Services []crate.ServiceInfo `json:"services"`
}

type handler struct {
	container *crate.Container
	logger    *zap.Logger
}

// NewHandler returns a read-only handler over c:
//
//	GET /services         container report
//	GET /services/{name}  one service, 404 when not registered
//
// Nothing is resolved by these endpoints.
func NewHandler(c *crate.Container, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{container: c, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/services", h.list)
	r.Get("/services/{name}", h.show)

	return r
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	report := ContainerReport{
		ID:       h.container.ID(),
		Valid:    true,
		Services: make([]crate.ServiceInfo, 0),
	}

	if err := h.container.Validate(); err != nil {
		report.Valid = false
		report.Error = err.Error()
	}

	for _, name := range h.container.Services() {
		report.Services = append(report.Services, h.container.Inspect(name))
	}

	h.write(w, http.StatusOK, report)
}

func (h *handler) show(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !h.container.Has(name) {
		h.write(w, http.StatusNotFound, map[string]string{
			"error": crate.ErrServiceNotFound(name).Error(),
		})

		return
	}

	h.write(w, http.StatusOK, h.container.Inspect(name))
}

func (h *handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
