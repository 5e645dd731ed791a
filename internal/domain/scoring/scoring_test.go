package scoring_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/scoring"
)

func prob(id string, p float64) *model.ModelOutput {
	o := model.NewProbability(id, p)
	return &o
}

func days(v float64) *model.ModelOutput {
	o := model.NewContinuousEstimate("delay_days", v)
	return &o
}

func anomaly(s float64) *model.ModelOutput {
	o := model.NewAnomalyScore("fraud", s)
	return &o
}

func TestCompose(t *testing.T) {
	Convey("Given delay-focused signals", t, func() {
		Convey("When probability and expected days are moderate", func() {
			c, err := scoring.Compose(scoring.Signals{
				DelayProbability: prob("delay_probability", 0.5),
				DelayDays:        days(45),
			})

			Convey("Then the weighted score is computed", func() {
				So(err, ShouldBeNil)
				So(c.Policy, ShouldEqual, scoring.PolicyDelayFocused)
				So(c.Score, ShouldAlmostEqual, 0.6*50+0.4*50, 1e-9)
				So(c.Clamped, ShouldBeFalse)
				So(c.Degraded, ShouldEqual, "")
			})
		})

		Convey("When the estimate is far beyond the cap", func() {
			c, err := scoring.Compose(scoring.Signals{
				DelayProbability: prob("delay_probability", 1.0),
				DelayDays:        days(1e6),
			})

			Convey("Then the score saturates at 100", func() {
				So(err, ShouldBeNil)
				So(c.Score, ShouldEqual, 100)
			})
		})

		Convey("When adversarial outputs push the weighted sum out of range", func() {
			high, errHigh := scoring.Compose(scoring.Signals{
				DelayProbability: prob("delay_probability", 1.8),
				DelayDays:        days(500),
			})
			low, errLow := scoring.Compose(scoring.Signals{
				DelayProbability: prob("delay_probability", -0.5),
				DelayDays:        days(-30),
			})

			Convey("Then the score is clamped and flagged", func() {
				So(errHigh, ShouldBeNil)
				So(high.Score, ShouldEqual, 100)
				So(high.Raw, ShouldBeGreaterThan, 100)
				So(high.Clamped, ShouldBeTrue)

				So(errLow, ShouldBeNil)
				So(low.Score, ShouldEqual, 0)
				So(low.Raw, ShouldBeLessThan, 0)
				So(low.Clamped, ShouldBeTrue)
			})
		})

		Convey("When the delay-days model is unavailable", func() {
			c, err := scoring.Compose(scoring.Signals{
				DelayProbability: prob("delay_probability", 0.5),
				Unavailable:      []string{"delay_days"},
			})

			Convey("Then missing days count as zero and the result is marked degraded", func() {
				So(err, ShouldBeNil)
				So(c.Score, ShouldEqual, 30)
				So(c.Degraded, ShouldEqual, "missing delay_days")
			})
		})
	})

	Convey("Given multi-model signals", t, func() {
		sig := scoring.Signals{
			DefaultProbability: prob("default", 0.5),
			DelayProbability:   prob("delay", 0.2),
			Fraud:              anomaly(-0.25),
		}

		Convey("When all three are present", func() {
			c, err := scoring.Compose(sig)

			Convey("Then the multi-model weights apply", func() {
				So(err, ShouldBeNil)
				So(c.Policy, ShouldEqual, scoring.PolicyMultiModel)
				So(c.Score, ShouldAlmostEqual, 0.4*50+0.3*20+0.3*50, 1e-9)
			})
		})

		Convey("When the anomaly score is past saturation", func() {
			sig.Fraud = anomaly(-0.75)
			c, err := scoring.Compose(sig)

			Convey("Then the fraud component caps at 100", func() {
				So(err, ShouldBeNil)
				So(c.Score, ShouldAlmostEqual, 0.4*50+0.3*20+0.3*100, 1e-9)
			})
		})

		Convey("When the fraud model failed to load", func() {
			sig.Fraud = nil
			sig.Unavailable = []string{"fraud"}
			c, err := scoring.Compose(sig)

			Convey("Then the delay-focused policy still runs", func() {
				So(err, ShouldBeNil)
				So(c.Policy, ShouldEqual, scoring.PolicyDelayFocused)
				So(c.Score, ShouldAlmostEqual, 12, 1e-9)
				So(c.Degraded, ShouldContainSubstring, "fraud")
			})
		})
	})

	Convey("Given no delay probability", t, func() {
		_, err := scoring.Compose(scoring.Signals{DelayDays: days(10)})
		So(errors.Is(err, scoring.ErrNoPolicy), ShouldBeTrue)
	})

	Convey("Given a signal of the wrong kind", t, func() {
		_, err := scoring.Compose(scoring.Signals{DelayProbability: days(0.5)})
		So(errors.Is(err, scoring.ErrSignalKind), ShouldBeTrue)
	})

	Convey("Given a non-finite signal", t, func() {
		_, err := scoring.Compose(scoring.Signals{DelayProbability: prob("p", math.NaN())})
		So(errors.Is(err, scoring.ErrInvalidSignal), ShouldBeTrue)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given delay estimates", t, func() {
		So(scoring.NormalizeDelayDays(0), ShouldEqual, 0)
		So(scoring.NormalizeDelayDays(45), ShouldEqual, 50)
		So(scoring.NormalizeDelayDays(scoring.DelayDaysCap), ShouldEqual, 100)
		So(scoring.NormalizeDelayDays(400), ShouldEqual, 100)
		So(scoring.NormalizeDelayDays(-5), ShouldEqual, 0)
	})

	Convey("Given anomaly scores", t, func() {
		So(scoring.NormalizeAnomaly(0), ShouldEqual, 0)
		So(scoring.NormalizeAnomaly(0.3), ShouldEqual, 0)
		So(scoring.NormalizeAnomaly(-0.5), ShouldEqual, 100)
		So(scoring.NormalizeAnomaly(-0.25), ShouldEqual, 50)
		So(scoring.NormalizeAnomaly(-2), ShouldEqual, 100)
	})
}

func TestClassify(t *testing.T) {
	Convey("Given scores around the tier boundaries", t, func() {
		cases := []struct {
			score float64
			tier  model.Tier
		}{
			{0, model.TierLow},
			{24.999, model.TierLow},
			{25.0, model.TierMedium},
			{49.99, model.TierMedium},
			{50.0, model.TierHigh},
			{74.999, model.TierHigh},
			{75.0, model.TierCritical},
			{100, model.TierCritical},
		}
		for _, c := range cases {
			So(scoring.Classify(c.score), ShouldEqual, c.tier)
		}
	})
}

func TestScorer(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := scoring.NewScorer()

		Convey("When a low-risk party is scored", func() {
			v, err := s.Score(scoring.Signals{DelayProbability: prob("p", 0.1), DelayDays: days(0)})

			Convey("Then it is LOW with the payment recommendation", func() {
				So(err, ShouldBeNil)
				So(v.Tier, ShouldEqual, model.TierLow)
				So(v.Recommendation, ShouldEqual, "LOW RISK - Proceed with normal credit terms")
			})
		})

		Convey("Then every tier has a recommendation", func() {
			for _, tier := range []model.Tier{model.TierLow, model.TierMedium, model.TierHigh, model.TierCritical} {
				So(scoring.PaymentRecommendations.Recommend(tier), ShouldNotBeEmpty)
				So(scoring.CreditRecommendations.Recommend(tier), ShouldNotBeEmpty)
			}
		})
	})

	Convey("Given a credit scorer", t, func() {
		s := scoring.NewScorer(scoring.WithRecommendations(scoring.CreditRecommendations))
		v, err := s.Score(scoring.Signals{
			DefaultProbability: prob("default", 1),
			DelayProbability:   prob("delay", 1),
			Fraud:              anomaly(-1),
		})

		Convey("Then a critical applicant is rejected", func() {
			So(err, ShouldBeNil)
			So(v.Score, ShouldEqual, 100)
			So(v.Tier, ShouldEqual, model.TierCritical)
			So(v.Recommendation, ShouldStartWith, "REJECT")
		})
	})
}
