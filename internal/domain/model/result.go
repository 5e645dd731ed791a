package model

import (
	"math"
	"sort"
)

// Tier is a discrete risk bucket.
type Tier string

// Risk tiers in ascending order.
const (
	TierLow      Tier = "LOW"
	TierMedium   Tier = "MEDIUM"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
)

// RiskResult is the terminal verdict for one party.
type RiskResult struct {
	PartyID        string              `json:"party_id"`
	CompositeScore float64             `json:"composite_score"`
	Tier           Tier                `json:"tier"`
	Recommendation string              `json:"recommendation"`
	Policy         string              `json:"policy"`
	Clamped        bool                `json:"clamped,omitempty"`
	Degraded       string              `json:"degraded,omitempty"`
	Features       *PartyFeatureVector `json:"features,omitempty"`
	Outputs        []ModelOutput       `json:"outputs"`
}

// Output returns the output produced by modelID.
func (r *RiskResult) Output(modelID string) (ModelOutput, bool) {
	for _, o := range r.Outputs {
		if o.ModelID == modelID {
			return o, true
		}
	}
	return ModelOutput{}, false
}

// Skip explains why a party has no RiskResult.
type Skip struct {
	PartyID string `json:"party_id"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
}

// BatchResult is the assembled output of one batch run.
type BatchResult struct {
	RunID      string       `json:"run_id"`
	PartyCount int          `json:"party_count"`
	Results    []RiskResult `json:"results"`
	Skipped    []Skip       `json:"skipped"`
	RowIssues  []RowIssue   `json:"row_issues"`
}

// SkippedCount is the number of parties without a result.
func (b *BatchResult) SkippedCount() int { return len(b.Skipped) }

// ResultRow is one line of the output table.
type ResultRow struct {
	PartyName         string  `json:"PartyName" yaml:"PartyName"`
	DelayProbability  float64 `json:"Delay_Probability" yaml:"Delay_Probability"`
	ExpectedDelayDays float64 `json:"Expected_Delay_Days" yaml:"Expected_Delay_Days"`
	RiskScore         float64 `json:"Risk_Score" yaml:"Risk_Score"`
	RiskTier          Tier    `json:"Risk_Tier" yaml:"Risk_Tier"`
	Recommendation    string  `json:"Recommendation" yaml:"Recommendation"`
}

// TableColumns is the header of the output table.
var TableColumns = []string{
	"PartyName", "Delay_Probability", "Expected_Delay_Days", "Risk_Score", "Risk_Tier", "Recommendation",
}

// Table renders results as output rows. delayProbabilityID and delayDaysID name
// the models whose outputs fill the probability and expected-days columns.
func (b *BatchResult) Table(delayProbabilityID, delayDaysID string) []ResultRow {
	rows := make([]ResultRow, 0, len(b.Results))
	for i := range b.Results {
		r := &b.Results[i]
		row := ResultRow{
			PartyName:      r.PartyID,
			RiskScore:      Round(r.CompositeScore, 1),
			RiskTier:       r.Tier,
			Recommendation: r.Recommendation,
		}
		if o, ok := r.Output(delayProbabilityID); ok {
			row.DelayProbability = Round(o.Value*100, 2)
		}
		if o, ok := r.Output(delayDaysID); ok {
			row.ExpectedDelayDays = Round(math.Max(0, o.Value), 1)
		}
		rows = append(rows, row)
	}
	return rows
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func sortStrings(s []string) { sort.Strings(s) }
