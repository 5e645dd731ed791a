package model

// Feature names exposed by PartyFeatureVector. The first block feeds the delay
// probability classifier, the second the delay-days regressor.
const (
	FeatureAvgDelayDays      = "avg_delay_days"
	FeatureMaxDelayDays      = "max_delay_days"
	FeatureStdDelayDays      = "std_delay_days"
	FeatureOnTimeRate        = "on_time_rate"
	FeatureTotalValue        = "total_value"
	FeatureAvgCreditDays     = "avg_credit_days"
	FeatureDelayedCount      = "delayed_count"
	FeatureTotalTxn          = "total_txn"
	FeatureCreditDays        = "CreditDays"
	FeatureAmount            = "Amount"
	FeatureOutstandingAmount = "OutstandingAmount"
)

// PartyFeatureVector is the per-party statistical summary of one batch.
type PartyFeatureVector struct {
	PartyID       string  `json:"party_id"`
	AvgDelayDays  float64 `json:"avg_delay_days"`
	MaxDelayDays  float64 `json:"max_delay_days"`
	StdDelayDays  float64 `json:"std_delay_days"`
	DelayedCount  int     `json:"delayed_count"`
	TotalTxn      int     `json:"total_txn"`
	TotalValue    float64 `json:"total_value"`
	Amount        float64 `json:"Amount"` // mean transaction amount
	AvgCreditDays float64 `json:"avg_credit_days"`
	OnTimeRate    float64 `json:"on_time_rate"`
	// Always 0 for aggregated parties; kept for the regressor contract.
	OutstandingAmount float64 `json:"OutstandingAmount"`
}

// Lookup returns the value of a named feature.
func (v *PartyFeatureVector) Lookup(name string) (float64, bool) {
	switch name {
	case FeatureAvgDelayDays:
		return v.AvgDelayDays, true
	case FeatureMaxDelayDays:
		return v.MaxDelayDays, true
	case FeatureStdDelayDays:
		return v.StdDelayDays, true
	case FeatureOnTimeRate:
		return v.OnTimeRate, true
	case FeatureTotalValue:
		return v.TotalValue, true
	case FeatureAvgCreditDays, FeatureCreditDays:
		return v.AvgCreditDays, true
	case FeatureDelayedCount:
		return float64(v.DelayedCount), true
	case FeatureTotalTxn:
		return float64(v.TotalTxn), true
	case FeatureAmount:
		return v.Amount, true
	case FeatureOutstandingAmount:
		return v.OutstandingAmount, true
	}
	return 0, false
}
