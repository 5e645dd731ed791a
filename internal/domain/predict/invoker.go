package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/pkg/logger"
	"github.com/okian/partyrisk/pkg/metrics"
)

// Invoker calls registered models by id.
type Invoker struct {
	registry *Registry
	logger   logger.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the invoker's logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInvoker creates an invoker over registry.
func NewInvoker(registry *Registry, opts ...Option) *Invoker {
	i := &Invoker{registry: registry, logger: logger.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the registry the invoker reads from.
func (i *Invoker) Registry() *Registry { return i.registry }

// Invoke runs modelID on v. The vector's feature names must equal the model's
// feature list, in order; models never see a mis-shaped vector.
func (i *Invoker) Invoke(ctx context.Context, modelID string, v aggregate.Vector) (out model.ModelOutput, err error) {
	if err := ctx.Err(); err != nil {
		return model.ModelOutput{}, err
	}
	m, err := i.registry.Get(modelID)
	if err != nil {
		metrics.RecordModelInvocation(modelID, "unavailable", 0)
		return model.ModelOutput{}, err
	}
	if !sameShape(m.Features(), v) {
		metrics.RecordModelInvocation(modelID, "shape_error", 0)
		return model.ModelOutput{}, &aggregate.FeatureShapeError{ModelID: modelID, Expected: m.Features(), Got: v.Names}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model %s panicked: %v", modelID, r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
			i.logger.Debug(ctx, "model invocation failed", logger.String("model", modelID), logger.Error(err))
		}
		metrics.RecordModelInvocation(modelID, outcome, float64(time.Since(start).Microseconds())/1000)
	}()

	x := append([]float64(nil), v.Values...)
	out, err = m.predict(x)
	if err != nil {
		return model.ModelOutput{}, fmt.Errorf("model %s: %w", modelID, err)
	}
	if err := validate(out); err != nil {
		return model.ModelOutput{}, fmt.Errorf("model %s: %w", modelID, err)
	}
	return out, nil
}

func sameShape(features []string, v aggregate.Vector) bool {
	if len(features) != len(v.Names) || len(v.Names) != len(v.Values) {
		return false
	}
	for k := range features {
		if features[k] != v.Names[k] {
			return false
		}
	}
	return true
}

func validate(o model.ModelOutput) error {
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidOutput, o.Kind)
	}
	if o.Kind == model.Probability && (o.Value < 0 || o.Value > 1) {
		return fmt.Errorf("%w: probability %v outside [0,1]", ErrInvalidOutput, o.Value)
	}
	return nil
}
