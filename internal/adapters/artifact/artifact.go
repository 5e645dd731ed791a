// Package artifact loads pre-trained model parameters from YAML or JSON files
// and adapts them to the predict package's native model interfaces.
package artifact

import (
	"fmt"
	"math"
)

// Model kinds.
const (
	KindClassifier = "classifier"
	KindRegressor  = "regressor"
	KindAnomaly    = "anomaly"
)

// Algorithms.
const (
	AlgoLogistic = "logistic"
	AlgoLinear   = "linear"
	AlgoForest   = "forest"
	AlgoGaussian = "gaussian"
)

// Spec is the on-disk description of one model.
type Spec struct {
	ID          string   `yaml:"id"`
	Kind        string   `yaml:"kind"`
	Algorithm   string   `yaml:"algorithm"`
	Description string   `yaml:"description,omitempty"`
	Features    []string `yaml:"features"`
	Scaler      *Scaler  `yaml:"scaler,omitempty"`

	// logistic, linear
	Coefficients []float64 `yaml:"coefficients,omitempty"`
	Intercept    float64   `yaml:"intercept,omitempty"`

	// forest
	Trees []Tree `yaml:"trees,omitempty"`

	// gaussian
	Center []float64 `yaml:"center,omitempty"`
	Spread []float64 `yaml:"spread,omitempty"`
}

// Scaler standardises inputs as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

// Tree is a binary decision tree stored as a node array rooted at index 0.
// A node with no children is a leaf.
type Tree struct {
	Nodes []Node `yaml:"nodes"`
}

// Node goes left when x[Feature] <= Threshold.
type Node struct {
	Feature   int     `yaml:"feature,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty"`
	Left      int     `yaml:"left,omitempty"`
	Right     int     `yaml:"right,omitempty"`
	Value     float64 `yaml:"value,omitempty"`
}

func (n Node) leaf() bool { return n.Left == 0 && n.Right == 0 }

// Validate checks the spec is internally consistent.
func (s *Spec) Validate() error {
	n := len(s.Features)
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrArtifact)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s has no features", ErrArtifact, s.ID)
	}
	if s.Scaler != nil {
		if len(s.Scaler.Mean) != n || len(s.Scaler.Scale) != n {
			return fmt.Errorf("%w: %s scaler needs %d means and scales", ErrArtifact, s.ID, n)
		}
		for _, v := range s.Scaler.Scale {
			if v == 0 {
				return fmt.Errorf("%w: %s scaler has zero scale", ErrArtifact, s.ID)
			}
		}
	}

	switch s.Algorithm {
	case AlgoLogistic, AlgoLinear:
		if len(s.Coefficients) != n {
			return fmt.Errorf("%w: %s has %d coefficients for %d features", ErrArtifact, s.ID, len(s.Coefficients), n)
		}
		if s.Algorithm == AlgoLogistic && s.Kind != KindClassifier {
			return fmt.Errorf("%w: %s logistic must be a classifier", ErrArtifact, s.ID)
		}
		if s.Algorithm == AlgoLinear && s.Kind != KindRegressor {
			return fmt.Errorf("%w: %s linear must be a regressor", ErrArtifact, s.ID)
		}
	case AlgoForest:
		if s.Kind != KindClassifier && s.Kind != KindRegressor {
			return fmt.Errorf("%w: %s forest must be a classifier or regressor", ErrArtifact, s.ID)
		}
		if len(s.Trees) == 0 {
			return fmt.Errorf("%w: %s forest has no trees", ErrArtifact, s.ID)
		}
		for i, t := range s.Trees {
			if err := t.validate(n); err != nil {
				return fmt.Errorf("%w: %s tree %d: %v", ErrArtifact, s.ID, i, err)
			}
		}
	case AlgoGaussian:
		if s.Kind != KindAnomaly {
			return fmt.Errorf("%w: %s gaussian must be an anomaly detector", ErrArtifact, s.ID)
		}
		if len(s.Center) != n || len(s.Spread) != n {
			return fmt.Errorf("%w: %s needs %d centers and spreads", ErrArtifact, s.ID, n)
		}
		for _, v := range s.Spread {
			if v <= 0 {
				return fmt.Errorf("%w: %s spread must be positive", ErrArtifact, s.ID)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupported, s.Algorithm)
	}
	return nil
}

// Children always point forward, so evaluation terminates.
func (t Tree) validate(features int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.leaf() {
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
		if n.Feature < 0 || n.Feature >= features {
			return fmt.Errorf("node %d splits on unknown feature %d", i, n.Feature)
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// params is the compiled, immutable form shared by every adapter.
type params struct {
	spec Spec
}

func (p *params) Features() []string { return p.spec.Features }

func (p *params) scale(x []float64) []float64 {
	if p.spec.Scaler == nil {
		return x
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - p.spec.Scaler.Mean[i]) / p.spec.Scaler.Scale[i]
	}
	return out
}

func (p *params) linear(x []float64) float64 {
	z := p.spec.Intercept
	for i, w := range p.spec.Coefficients {
		z += w * x[i]
	}
	return z
}

func (p *params) forest(x []float64) float64 {
	sum := 0.0
	for _, t := range p.spec.Trees {
		sum += t.eval(x)
	}
	return sum / float64(len(p.spec.Trees))
}

func (p *params) check(x []float64) error {
	if len(x) != len(p.spec.Features) {
		return fmt.Errorf("%w: %s got %d values for %d features", ErrArtifact, p.spec.ID, len(x), len(p.spec.Features))
	}
	return nil
}

type classifier struct{ *params }

// PredictProba returns [P(negative), P(positive)].
func (c classifier) PredictProba(x []float64) ([]float64, error) {
	if err := c.check(x); err != nil {
		return nil, err
	}
	x = c.scale(x)
	var p float64
	if c.spec.Algorithm == AlgoForest {
		p = c.forest(x)
	} else {
		p = 1 / (1 + math.Exp(-c.linear(x)))
	}
	return []float64{1 - p, p}, nil
}

type regressor struct{ *params }

func (r regressor) Predict(x []float64) (float64, error) {
	if err := r.check(x); err != nil {
		return 0, err
	}
	x = r.scale(x)
	if r.spec.Algorithm == AlgoForest {
		return r.forest(x), nil
	}
	return r.linear(x), nil
}

type detector struct{ *params }

// ScoreSamples returns a score in (-0.5, 0]; 0 at the center, approaching
// -0.5 as inputs move away from it.
func (d detector) ScoreSamples(x []float64) (float64, error) {
	if err := d.check(x); err != nil {
		return 0, err
	}
	x = d.scale(x)
	sum := 0.0
	for i, v := range x {
		z := (v - d.spec.Center[i]) / d.spec.Spread[i]
		sum += z * z
	}
	return -0.5 * (1 - math.Exp(-sum/float64(len(x))/2)), nil
}
