package scoring

import "github.com/okian/partyrisk/internal/domain/model"

// Verdict is a composite score with its tier and recommendation.
type Verdict struct {
	Composite
	Tier           model.Tier
	Recommendation string
}

// Scorer turns signals into a verdict.
type Scorer struct {
	recommendations Recommendations
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithRecommendations selects the tier to action table.
func WithRecommendations(r Recommendations) Option {
	return func(s *Scorer) {
		if len(r) > 0 {
			s.recommendations = r
		}
	}
}

// NewScorer creates a scorer using PaymentRecommendations by default.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{recommendations: PaymentRecommendations}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score composes, classifies and recommends.
func (s *Scorer) Score(sig Signals) (Verdict, error) {
	c, err := Compose(sig)
	if err != nil {
		return Verdict{}, err
	}
	tier := Classify(c.Score)
	return Verdict{
		Composite:      c,
		Tier:           tier,
		Recommendation: s.recommendations.Recommend(tier),
	}, nil
}
