package service

import (
	"context"
	"math"
	"time"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/scoring"
	"github.com/okian/partyrisk/pkg/logger"
	"github.com/okian/partyrisk/pkg/metrics"
)

// Acceptance decisions.
const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"

	acceptThreshold = 0.5
)

// Prediction is the answer to a single prediction request.
type Prediction struct {
	ModelSet    string         `json:"model_set"`
	Predictions map[string]any `json:"predictions"`
	Confidence  float64        `json:"confidence"`
	RiskLevel   model.Tier     `json:"risk_level"`
}

// Predict scores one subject described directly by feature values. Features
// missing from input count as 0.
func (s *Service) Predict(ctx context.Context, setID string, input map[string]float64) (*Prediction, error) {
	s.predictions.Add(1)
	set, err := LookupSet(setID)
	if err != nil {
		metrics.RecordPredict(setID, KindUnknownModelSet)
		return nil, err
	}

	start := time.Now()
	ev, err := s.evaluate(ctx, set, func(r Role) (aggregate.Vector, error) {
		return aggregate.FromMap(input, r.FeatureNames()), nil
	})
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordPredict(set.ID, kind)
		s.logger.Warn(ctx, "prediction failed", logger.String("model_set", set.ID), logger.String("kind", kind), logger.Error(err))
		return nil, err
	}
	metrics.RecordPredict(set.ID, "ok")

	p := &Prediction{
		ModelSet:    set.ID,
		Predictions: s.describe(set, ev),
		Confidence:  confidence(ev.outputs),
		RiskLevel:   ev.verdict.Tier,
	}
	s.logger.Debug(ctx, "prediction",
		logger.String("model_set", set.ID),
		logger.Float64("risk_score", ev.verdict.Score),
		logger.String("tier", string(ev.verdict.Tier)),
		logger.Duration("took", time.Since(start)),
	)
	return p, nil
}

// describe renders role outputs in display units: probabilities as percent,
// delay days to one decimal, fraud on the 0-100 scale.
func (s *Service) describe(set *ModelSet, ev evaluation) map[string]any {
	out := make(map[string]any, len(ev.byRole)+6)
	for _, r := range set.Roles {
		o, ok := ev.byRole[r.Name]
		if !ok {
			continue
		}
		entry := map[string]any{"model_id": o.ModelID}
		switch o.Kind {
		case model.Probability:
			entry["probability"] = model.Round(o.Value*100, 2)
			if r.Signal == SignalNone {
				entry["decision"] = decision(o.Value)
				entry["confidence"] = model.Round(math.Abs(o.Value-acceptThreshold)*200, 2)
			}
		case model.ContinuousEstimate:
			entry["days"] = model.Round(o.Value, 1)
		case model.AnomalyScore:
			entry["raw_score"] = o.Value
			entry["score"] = model.Round(scoring.NormalizeAnomaly(o.Value), 2)
		}
		out[r.Name] = entry
	}

	v := ev.verdict
	out["risk_score"] = model.Round(v.Score, 1)
	out["risk_tier"] = v.Tier
	out["recommendation"] = v.Recommendation
	out["policy"] = v.Policy
	if v.Clamped {
		out["clamped"] = true
	}
	if v.Degraded != "" {
		out["degraded"] = v.Degraded
	}
	return out
}

func decision(p float64) string {
	if p >= acceptThreshold {
		return DecisionAccept
	}
	return DecisionReject
}

// confidence is the mean distance of each probability from 0.5, scaled to
// [0,1]. Zero when there are no probabilities.
func confidence(outs []model.ModelOutput) float64 {
	var sum float64
	n := 0
	for _, o := range outs {
		if o.Kind != model.Probability {
			continue
		}
		sum += math.Abs(2*o.Value - 1)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
