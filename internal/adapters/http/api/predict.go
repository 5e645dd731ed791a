package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/pkg/logger"
)

// Predictor scores one subject from direct feature values.
type Predictor interface {
	Predict(ctx context.Context, setID string, input map[string]float64) (*service.Prediction, error)
}

// predictRequest mirrors the OpenAPI schema for POST /api/predict.
// model_set_id and model_type are accepted as aliases of model_set.
type predictRequest struct {
	ModelSet   string             `json:"model_set"`
	ModelSetID string             `json:"model_set_id"`
	ModelType  string             `json:"model_type"`
	InputData  map[string]float64 `json:"input_data"`
}

func (p predictRequest) set() string {
	for _, s := range []string{p.ModelSet, p.ModelSetID, p.ModelType} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (p predictRequest) validate() error {
	if p.set() == "" {
		return errors.New("missing model_set")
	}
	if p.InputData == nil {
		return errors.New("missing input_data")
	}
	return nil
}

// PredictHandler handles single prediction requests.
type PredictHandler struct {
	deps    Predictor
	maxBody int64
	logger  logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Predictor, maxBody int64, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, maxBody: maxBody, logger: l}
}

// HandlePredict handles POST /api/predict.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed), nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, bodyError(op, err), nil)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), nil)
		return
	}

	p, err := h.deps.Predict(r.Context(), req.set(), req.InputData)
	if err != nil {
		h.logger.Warn(r.Context(), "predict failed", logger.String("model_set", req.set()), logger.Error(err))
		writeError(w, Wrap(op, err), nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
