// Package scoring combines model outputs into a bounded composite score, a
// risk tier and a recommendation.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Normalisation and weighting constants.
const (
	// DelayDaysCap is the delay estimate, in days, that maps to 100.
	DelayDaysCap = 90.0

	anomalyCenter = -0.5
	anomalyWidth  = 0.5

	delayProbabilityWeight = 0.6
	delayDaysWeight        = 0.4

	defaultWeight = 0.4
	delayWeight   = 0.3
	fraudWeight   = 0.3

	minScore = 0
	maxScore = 100
)

// Policy names.
const (
	PolicyDelayFocused = "delay_focused"
	PolicyMultiModel   = "multi_model"
)

// Errors.
var (
	ErrNoPolicy      = errors.New("no scoring policy applies")
	ErrSignalKind    = errors.New("signal has wrong output kind")
	ErrInvalidSignal = errors.New("signal is not finite")
)

// Signals are the named model outputs available for one subject. Nil means
// the model was not run or not available.
type Signals struct {
	DelayProbability   *model.ModelOutput
	DelayDays          *model.ModelOutput
	DefaultProbability *model.ModelOutput
	Fraud              *model.ModelOutput

	// Unavailable names the roles whose models could not be used.
	Unavailable []string
}

// Composite is a clamped score and how it was produced.
type Composite struct {
	Score    float64
	Raw      float64
	Clamped  bool
	Policy   string
	Degraded string
}

// Compose applies the multi-model policy when default, delay and fraud
// signals are all present, and the delay-focused policy otherwise. A missing
// delay-days estimate counts as 0 days.
func Compose(s Signals) (Composite, error) {
	if err := s.check(); err != nil {
		return Composite{}, err
	}

	var c Composite
	switch {
	case s.DefaultProbability != nil && s.DelayProbability != nil && s.Fraud != nil:
		c.Policy = PolicyMultiModel
		c.Raw = defaultWeight*s.DefaultProbability.Value*100 +
			delayWeight*s.DelayProbability.Value*100 +
			fraudWeight*NormalizeAnomaly(s.Fraud.Value)
	case s.DelayProbability != nil:
		c.Policy = PolicyDelayFocused
		days := 0.0
		if s.DelayDays != nil {
			days = s.DelayDays.Value
		}
		c.Raw = delayProbabilityWeight*s.DelayProbability.Value*100 +
			delayDaysWeight*NormalizeDelayDays(days)
	default:
		return Composite{}, ErrNoPolicy
	}

	if math.IsNaN(c.Raw) {
		return Composite{}, ErrInvalidSignal
	}
	c.Score = math.Max(minScore, math.Min(maxScore, c.Raw))
	c.Clamped = c.Score != c.Raw
	if len(s.Unavailable) > 0 {
		c.Degraded = "missing " + strings.Join(s.Unavailable, ", ")
	}
	return c, nil
}

func (s Signals) check() error {
	for _, sig := range []struct {
		name string
		out  *model.ModelOutput
		kind model.OutputKind
	}{
		{"delay probability", s.DelayProbability, model.Probability},
		{"delay days", s.DelayDays, model.ContinuousEstimate},
		{"default probability", s.DefaultProbability, model.Probability},
		{"fraud", s.Fraud, model.AnomalyScore},
	} {
		if sig.out == nil {
			continue
		}
		if sig.out.Kind != sig.kind {
			return fmt.Errorf("%w: %s from %s is %s, want %s", ErrSignalKind, sig.name, sig.out.ModelID, sig.out.Kind, sig.kind)
		}
		if math.IsNaN(sig.out.Value) || math.IsInf(sig.out.Value, 0) {
			return fmt.Errorf("%w: %s from %s", ErrInvalidSignal, sig.name, sig.out.ModelID)
		}
	}
	return nil
}

// NormalizeDelayDays maps a delay estimate onto [0,100], saturating at
// DelayDaysCap.
func NormalizeDelayDays(days float64) float64 {
	return math.Max(0, math.Min(days/DelayDaysCap, 1)) * 100
}

// NormalizeAnomaly maps a raw anomaly score onto a [0,100] fraud score.
// Scores at or above 0 map to 0, at or below -0.5 to 100.
func NormalizeAnomaly(s float64) float64 {
	v := (1 - (s-anomalyCenter)/anomalyWidth) * 100
	return math.Max(0, math.Min(100, v))
}
