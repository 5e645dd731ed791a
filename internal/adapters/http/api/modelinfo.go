package api

import (
	"net/http"
	"strings"

	service "github.com/okian/partyrisk/internal/app"
)

// ModelInfoProvider describes model sets.
type ModelInfoProvider interface {
	ModelInfo(setID string) (*service.ModelSetInfo, error)
}

// ModelInfoHandler handles model info requests.
type ModelInfoHandler struct {
	deps ModelInfoProvider
}

// NewModelInfoHandler creates a new model info handler.
func NewModelInfoHandler(deps ModelInfoProvider) *ModelInfoHandler {
	return &ModelInfoHandler{deps: deps}
}

// HandleModelInfo handles GET /api/model_info/{set}.
func (h *ModelInfoHandler) HandleModelInfo(w http.ResponseWriter, r *http.Request) {
	const op = "api.model_info"
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed), nil)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/model_info/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, NewKind(op, ErrBadRequest), nil)
		return
	}
	info, err := h.deps.ModelInfo(id)
	if err != nil {
		writeError(w, Wrap(op, err), nil)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
