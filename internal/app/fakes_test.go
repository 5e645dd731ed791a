package service_test

import (
	"time"

	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/predict"
)

type fakeClassifier struct {
	features []string
	p        func(x []float64) float64
	delay    time.Duration
}

func (f fakeClassifier) Features() []string { return f.features }

func (f fakeClassifier) PredictProba(x []float64) ([]float64, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	p := f.p(x)
	return []float64{1 - p, p}, nil
}

type fakeRegressor struct {
	features []string
	v        func(x []float64) float64
}

func (f fakeRegressor) Features() []string                   { return f.features }
func (f fakeRegressor) Predict(x []float64) (float64, error) { return f.v(x), nil }

type fakeDetector struct {
	features []string
	s        float64
}

func (f fakeDetector) Features() []string                      { return f.features }
func (f fakeDetector) ScoreSamples([]float64) (float64, error) { return f.s, nil }

func constant(v float64) func([]float64) float64 {
	return func([]float64) float64 { return v }
}

func roleFeatures(set *service.ModelSet, role string) []string {
	r, _ := set.Role(role)
	return r.FeatureNames()
}

// delayProbabilityModel returns p for on-time parties and 0.9 when any
// transaction was delayed (on_time_rate < 1).
func delayProbabilityModel(p float64) predict.Model {
	features := roleFeatures(&service.PaymentDelay, "delay_probability")
	return predict.Classify("delay_probability", fakeClassifier{
		features: features,
		p: func(x []float64) float64 {
			if x[3] < 1 {
				return 0.9
			}
			return p
		},
	})
}

func delayDaysModel(days float64) predict.Model {
	return predict.Regress("delay_days", fakeRegressor{
		features: roleFeatures(&service.PaymentDelay, "delay_days"),
		v:        constant(days),
	})
}

func paymentRegistry(opts ...predict.RegistryOption) *predict.Registry {
	if len(opts) == 0 {
		opts = []predict.RegistryOption{
			predict.WithModel(delayProbabilityModel(0.1)),
			predict.WithModel(delayDaysModel(2)),
		}
	}
	reg, err := predict.NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func creditModels(fraud bool) []predict.RegistryOption {
	features := roleFeatures(&service.CreditRisk, "default")
	opts := []predict.RegistryOption{
		predict.WithModel(predict.Classify("credit_acceptance", fakeClassifier{features: features, p: constant(0.8)})),
		predict.WithModel(predict.Classify("credit_default", fakeClassifier{features: features, p: constant(0.5)})),
		predict.WithModel(predict.Classify("credit_delay", fakeClassifier{features: features, p: constant(0.2)})),
	}
	if fraud {
		opts = append(opts, predict.WithModel(predict.Detect("credit_fraud", fakeDetector{features: features, s: -0.25})))
	} else {
		opts = append(opts, predict.WithUnavailable("credit_fraud", errArtifactMissing))
	}
	return opts
}

type constError string

func (e constError) Error() string { return string(e) }

const errArtifactMissing = constError("credit_fraud.yaml: no such file")

func row(party string, days float64, delayed bool, amount, credit float64) model.RawTransaction {
	return model.RawTransaction{
		"PartyName":     party,
		"DaysInPayment": days,
		"IsDelayed":     delayed,
		"Amount":        amount,
		"CreditDays":    credit,
	}
}
