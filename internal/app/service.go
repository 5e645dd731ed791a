// Package service wires the scoring pipeline: it turns raw transaction
// batches and single applications into risk verdicts.
package service

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/okian/partyrisk/internal/domain/predict"
	"github.com/okian/partyrisk/internal/domain/scoring"
	"github.com/okian/partyrisk/internal/worker"
	"github.com/okian/partyrisk/pkg/logger"
)

// Default service configuration.
const (
	defaultBatchTimeout = 30 * time.Second
	defaultMaxRows      = 500_000
	defaultDedupeSize   = 500_000
)

// Service runs batches and single predictions against an injected model
// registry. It is safe for concurrent use.
type Service struct {
	registry *predict.Registry
	invoker  *predict.Invoker
	pool     *worker.Pool
	scorers  map[string]*scoring.Scorer

	workerCount    int
	batchTimeout   time.Duration
	maxRows        int
	dedupeInvoices bool
	dedupeSize     int

	batches        atomic.Int64
	failedBatches  atomic.Int64
	partiesScored  atomic.Int64
	partiesSkipped atomic.Int64
	rowsRejected   atomic.Int64
	predictions    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRegistry injects the model registry.
func WithRegistry(r *predict.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithWorkerCount sets how many parties are scored at once.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithBatchTimeout bounds a whole batch run.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.batchTimeout = d
		}
	}
}

// WithMaxRows rejects batches with more rows.
func WithMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithDedupe turns duplicate invoice detection on or off and bounds its
// memory.
func WithDedupe(enabled bool, size int) Option {
	return func(s *Service) {
		s.dedupeInvoices = enabled
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithRegistry every model is unavailable.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		batchTimeout:   defaultBatchTimeout,
		maxRows:        defaultMaxRows,
		dedupeInvoices: false,
		dedupeSize:     defaultDedupeSize,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry, _ = predict.NewRegistry()
	}

	s.invoker = predict.NewInvoker(s.registry, predict.WithLogger(s.logger.Named("invoker")))
	s.pool = worker.NewPool(
		worker.WithSize(s.workerCount),
		worker.WithName("party-scoring"),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.scorers = make(map[string]*scoring.Scorer, len(modelSets))
	for _, set := range modelSets {
		s.scorers[set.ID] = scoring.NewScorer(scoring.WithRecommendations(set.Recommendations))
	}
	return s
}

// Registry returns the injected model registry.
func (s *Service) Registry() *predict.Registry { return s.registry }

// Stats is a snapshot of service counters.
type Stats struct {
	WorkerCount       int                   `json:"worker_count"`
	BatchTimeoutMS    int64                 `json:"batch_timeout_ms"`
	MaxRows           int                   `json:"max_rows"`
	DedupeInvoices    bool                  `json:"dedupe_invoices"`
	Batches           int64                 `json:"batches"`
	FailedBatches     int64                 `json:"failed_batches"`
	PartiesScored     int64                 `json:"parties_scored"`
	PartiesSkipped    int64                 `json:"parties_skipped"`
	RowsRejected      int64                 `json:"rows_rejected"`
	Predictions       int64                 `json:"predictions"`
	ModelsAvailable   int                   `json:"models_available"`
	ModelsUnavailable int                   `json:"models_unavailable"`
	Models            []predict.ModelStatus `json:"models"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	available, unavailable := s.registry.Counts()
	return Stats{
		WorkerCount:       s.pool.Size(),
		BatchTimeoutMS:    s.batchTimeout.Milliseconds(),
		MaxRows:           s.maxRows,
		DedupeInvoices:    s.dedupeInvoices,
		Batches:           s.batches.Load(),
		FailedBatches:     s.failedBatches.Load(),
		PartiesScored:     s.partiesScored.Load(),
		PartiesSkipped:    s.partiesSkipped.Load(),
		RowsRejected:      s.rowsRejected.Load(),
		Predictions:       s.predictions.Load(),
		ModelsAvailable:   available,
		ModelsUnavailable: unavailable,
		Models:            s.registry.Status(),
	}
}

// SetHealth is the load state of one model set.
type SetHealth struct {
	State       string   `json:"state"` // loaded, degraded or unavailable
	Unavailable []string `json:"unavailable,omitempty"`
}

// Health reports, per model set, whether its models are loaded.
func (s *Service) Health() map[string]SetHealth {
	out := make(map[string]SetHealth, len(modelSets))
	for _, set := range modelSets {
		h := SetHealth{State: "loaded"}
		for _, r := range set.Roles {
			if s.registry.Available(r.ModelID) {
				continue
			}
			h.Unavailable = append(h.Unavailable, r.Name)
			if r.Required {
				h.State = "unavailable"
			} else if h.State == "loaded" {
				h.State = "degraded"
			}
		}
		out[set.ID] = h
	}
	return out
}
