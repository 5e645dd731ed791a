package scoring

import "github.com/okian/partyrisk/internal/domain/model"

// Tier lower bounds.
const (
	mediumFloor   = 25.0
	highFloor     = 50.0
	criticalFloor = 75.0
)

// Classify maps a score to its tier. Bounds are lower-inclusive.
func Classify(score float64) model.Tier {
	switch {
	case score >= criticalFloor:
		return model.TierCritical
	case score >= highFloor:
		return model.TierHigh
	case score >= mediumFloor:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// Recommendations maps each tier to a canned action.
type Recommendations map[model.Tier]string

// PaymentRecommendations apply to counterparties scored on payment behaviour.
var PaymentRecommendations = Recommendations{
	model.TierCritical: "HIGH RISK - Require advance payment or collateral",
	model.TierHigh:     "ELEVATED RISK - Reduce credit terms, monitor closely",
	model.TierMedium:   "MODERATE RISK - Standard terms with monitoring",
	model.TierLow:      "LOW RISK - Proceed with normal credit terms",
}

// CreditRecommendations apply to single credit applications.
var CreditRecommendations = Recommendations{
	model.TierCritical: "REJECT - Critical risk level detected",
	model.TierHigh:     "REVIEW - Consider additional verification or higher rates",
	model.TierMedium:   "APPROVE - Monitor closely during term",
	model.TierLow:      "APPROVE - Standard terms apply",
}

// Recommend returns the action for tier.
func (r Recommendations) Recommend(t model.Tier) string {
	return r[t]
}
