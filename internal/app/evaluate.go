package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/predict"
	"github.com/okian/partyrisk/internal/domain/scoring"
)

// evaluation is the outcome of running every role of a model set once.
type evaluation struct {
	verdict scoring.Verdict
	outputs []model.ModelOutput
	byRole  map[string]model.ModelOutput
}

// evaluate invokes each role of set on the vector vectorFor builds for it and
// scores the outputs. Optional roles whose model is unavailable are left out
// and reported as degraded; any other failure is returned.
func (s *Service) evaluate(ctx context.Context, set *ModelSet, vectorFor func(Role) (aggregate.Vector, error)) (evaluation, error) {
	ev := evaluation{byRole: make(map[string]model.ModelOutput, len(set.Roles))}
	var sig scoring.Signals

	for _, r := range set.Roles {
		v, err := vectorFor(r)
		if err != nil {
			return ev, fmt.Errorf("%s: %w", r.Name, err)
		}
		out, err := s.invoker.Invoke(ctx, r.ModelID, v)
		if err != nil {
			if !r.Required && errors.Is(err, predict.ErrModelUnavailable) {
				sig.Unavailable = append(sig.Unavailable, r.Name)
				continue
			}
			return ev, fmt.Errorf("%s: %w", r.Name, err)
		}
		if out.Kind != r.Kind {
			return ev, fmt.Errorf("%w: role %s expects %s, model %s produced %s",
				scoring.ErrSignalKind, r.Name, r.Kind, r.ModelID, out.Kind)
		}

		ev.outputs = append(ev.outputs, out)
		ev.byRole[r.Name] = out
		o := out
		switch r.Signal {
		case SignalDelayProbability:
			sig.DelayProbability = &o
		case SignalDelayDays:
			sig.DelayDays = &o
		case SignalDefaultProbability:
			sig.DefaultProbability = &o
		case SignalFraud:
			sig.Fraud = &o
		case SignalNone:
		}
	}

	verdict, err := s.scorers[set.ID].Score(sig)
	if err != nil {
		return ev, err
	}
	ev.verdict = verdict
	return ev, nil
}
