// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/pkg/logger"
)

const defaultMaxBodyBytes = 32 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	ScoreBatch(ctx context.Context, rows []model.RawTransaction) (*model.BatchResult, error)
	Predict(ctx context.Context, setID string, input map[string]float64) (*service.Prediction, error)
	ModelInfo(setID string) (*service.ModelSetInfo, error)
	Health() map[string]service.SetHealth
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	batchHandler     *BatchHandler
	modelInfoHandler *ModelInfoHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// WithMaxBodyBytes caps request bodies for POST endpoints.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.Named("api")
	return &Server{
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		predictHandler:   NewPredictHandler(deps, o.maxBodyBytes, log),
		batchHandler:     NewBatchHandler(deps, o.maxBodyBytes, log),
		modelInfoHandler: NewModelInfoHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/api/batch", MetricsMiddleware(s.batchHandler.HandleBatch, "batch"))
	mux.HandleFunc("/api/model_info/", MetricsMiddleware(s.modelInfoHandler.HandleModelInfo, "model_info"))
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, details any) {
	kind := kindOf(err)
	msg := http.StatusText(statusFor(kind))
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, statusFor(kind), errorResponse{Kind: kind, Message: msg, Details: details})
}

// Kinds owned by the HTTP layer.
const (
	kindBadRequest       = "bad_request"
	kindMethodNotAllowed = "method_not_allowed"
	kindUnsupportedMedia = "unsupported_media_type"
	kindBodyTooLarge     = "body_too_large"
)

func kindOf(err error) string {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return kindBodyTooLarge
	case errors.Is(err, ErrUnsupportedMedia):
		return kindUnsupportedMedia
	case errors.Is(err, ErrMethodNotAllowed):
		return kindMethodNotAllowed
	case errors.Is(err, ErrBadRequest):
		return kindBadRequest
	}
	return service.ErrorKind(err)
}

func statusFor(kind string) int {
	switch kind {
	case kindBadRequest, service.KindSchema, service.KindParse, service.KindEmptyBatch, service.KindFeatureShape:
		return http.StatusBadRequest
	case kindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case kindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case kindBodyTooLarge, service.KindTooManyRows:
		return http.StatusRequestEntityTooLarge
	case service.KindUnknownModelSet:
		return http.StatusNotFound
	case service.KindNoResults, service.KindInsufficientData:
		return http.StatusUnprocessableEntity
	case service.KindModelUnavailable, service.KindCanceled:
		return http.StatusServiceUnavailable
	case service.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func bodyError(op string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return WrapKind(op, ErrBodyTooLarge, err)
	}
	return WrapKind(op, ErrBadRequest, err)
}
