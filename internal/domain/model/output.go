package model

import "fmt"

// OutputKind tags the three result shapes a model can produce.
type OutputKind int

const (
	// Probability is a positive-class probability in [0,1].
	Probability OutputKind = iota + 1
	// ContinuousEstimate is a non-negative regression estimate.
	ContinuousEstimate
	// AnomalyScore is a raw anomaly score; lower means more anomalous.
	AnomalyScore
)

func (k OutputKind) String() string {
	switch k {
	case Probability:
		return "probability"
	case ContinuousEstimate:
		return "continuous_estimate"
	case AnomalyScore:
		return "anomaly_score"
	}
	return fmt.Sprintf("OutputKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k OutputKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ModelOutput is one model's typed prediction.
type ModelOutput struct {
	ModelID string     `json:"model_id"`
	Kind    OutputKind `json:"kind"`
	Value   float64    `json:"value"`
}

// NewProbability builds a Probability output.
func NewProbability(modelID string, p float64) ModelOutput {
	return ModelOutput{ModelID: modelID, Kind: Probability, Value: p}
}

// NewContinuousEstimate builds a ContinuousEstimate output.
func NewContinuousEstimate(modelID string, v float64) ModelOutput {
	return ModelOutput{ModelID: modelID, Kind: ContinuousEstimate, Value: v}
}

// NewAnomalyScore builds an AnomalyScore output.
func NewAnomalyScore(modelID string, s float64) ModelOutput {
	return ModelOutput{ModelID: modelID, Kind: AnomalyScore, Value: s}
}
