// Package predict invokes heterogeneous pre-trained models through one
// interface and reduces their native outputs to typed ModelOutputs.
package predict

import (
	"fmt"
	"math"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Classifier is a binary classifier returning per-class probabilities.
type Classifier interface {
	Features() []string
	PredictProba(x []float64) ([]float64, error)
}

// Regressor returns a continuous estimate.
type Regressor interface {
	Features() []string
	Predict(x []float64) (float64, error)
}

// AnomalyDetector returns a raw anomaly score; lower is more anomalous.
type AnomalyDetector interface {
	Features() []string
	ScoreSamples(x []float64) (float64, error)
}

// Model is an adapted artifact producing exactly one output kind. Only this
// package can implement it.
type Model interface {
	ID() string
	Kind() model.OutputKind
	Features() []string
	predict(x []float64) (model.ModelOutput, error)
}

type base struct {
	id       string
	features []string
}

func (b base) ID() string         { return b.id }
func (b base) Features() []string { return append([]string(nil), b.features...) }

type classifier struct {
	base
	c Classifier
}

// Classify adapts a classifier to the positive-class probability.
func Classify(id string, c Classifier) Model {
	return &classifier{base: base{id: id, features: c.Features()}, c: c}
}

func (m *classifier) Kind() model.OutputKind { return model.Probability }

func (m *classifier) predict(x []float64) (model.ModelOutput, error) {
	proba, err := m.c.PredictProba(x)
	if err != nil {
		return model.ModelOutput{}, err
	}
	var p float64
	switch len(proba) {
	case 1:
		p = proba[0]
	case 2:
		p = proba[1]
	default:
		return model.ModelOutput{}, fmt.Errorf("%w: %d class probabilities", ErrInvalidOutput, len(proba))
	}
	return model.NewProbability(m.id, p), nil
}

type regressor struct {
	base
	r Regressor
}

// Regress adapts a regressor to a non-negative continuous estimate.
func Regress(id string, r Regressor) Model {
	return &regressor{base: base{id: id, features: r.Features()}, r: r}
}

func (m *regressor) Kind() model.OutputKind { return model.ContinuousEstimate }

func (m *regressor) predict(x []float64) (model.ModelOutput, error) {
	v, err := m.r.Predict(x)
	if err != nil {
		return model.ModelOutput{}, err
	}
	return model.NewContinuousEstimate(m.id, math.Max(0, v)), nil
}

type detector struct {
	base
	a AnomalyDetector
}

// Detect adapts an anomaly detector to its raw score.
func Detect(id string, a AnomalyDetector) Model {
	return &detector{base: base{id: id, features: a.Features()}, a: a}
}

func (m *detector) Kind() model.OutputKind { return model.AnomalyScore }

func (m *detector) predict(x []float64) (model.ModelOutput, error) {
	s, err := m.a.ScoreSamples(x)
	if err != nil {
		return model.ModelOutput{}, err
	}
	return model.NewAnomalyScore(m.id, s), nil
}
