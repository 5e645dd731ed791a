package service

import (
	"sort"
	"strings"

	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/scoring"
)

// Model set ids.
const (
	SetPaymentDelay = "payment_delay"
	SetCreditRisk   = "credit_risk"
)

// Signal says which scoring input a role's output feeds.
type Signal int

const (
	SignalNone Signal = iota
	SignalDelayProbability
	SignalDelayDays
	SignalDefaultProbability
	SignalFraud
)

// FeatureInfo documents one model input.
type FeatureInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Default     float64 `json:"default"`
}

// Role binds a model id to its place in a model set.
type Role struct {
	Name     string
	ModelID  string
	Kind     model.OutputKind
	Signal   Signal
	Required bool
	Features []FeatureInfo
}

// FeatureNames returns the ordered feature names of the role.
func (r Role) FeatureNames() []string {
	names := make([]string, len(r.Features))
	for i, f := range r.Features {
		names[i] = f.Name
	}
	return names
}

// ModelSet is a fixed group of models scored together.
type ModelSet struct {
	ID              string
	Name            string
	Description     string
	Aliases         []string
	Roles           []Role
	Recommendations scoring.Recommendations
}

// Role returns the role with name.
func (m *ModelSet) Role(name string) (Role, bool) {
	for _, r := range m.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// RoleFor returns the role feeding signal.
func (m *ModelSet) RoleFor(sig Signal) (Role, bool) {
	for _, r := range m.Roles {
		if r.Signal == sig {
			return r, true
		}
	}
	return Role{}, false
}

var (
	delayProbabilityFeatures = []FeatureInfo{
		{model.FeatureAvgDelayDays, "Average historical delay days", 0},
		{model.FeatureMaxDelayDays, "Maximum historical delay days", 0},
		{model.FeatureStdDelayDays, "Standard deviation of delay days", 0},
		{model.FeatureOnTimeRate, "On-time payment rate (0-1)", 0.8},
		{model.FeatureTotalValue, "Total transaction value", 100000},
		{model.FeatureAvgCreditDays, "Average credit days", 30},
	}
	delayDaysFeatures = []FeatureInfo{
		{model.FeatureDelayedCount, "Number of delayed payments", 0},
		{model.FeatureTotalTxn, "Total transactions", 10},
		{model.FeatureCreditDays, "Current credit days", 30},
		{model.FeatureAmount, "Mean transaction amount", 10000},
		{model.FeatureOutstandingAmount, "Outstanding amount", 0},
	}
	creditFeatures = []FeatureInfo{
		{"loan_amnt", "Loan amount", 15000},
		{"dti", "Debt-to-income ratio (%)", 20},
		{"emp_length_years", "Employment length (years)", 5},
		{"state_encoded", "State code (0-50)", 5},
		{"int_rate", "Interest rate (%)", 12},
		{"installment", "Monthly installment", 450},
		{"annual_inc", "Annual income", 65000},
		{"delinq_2yrs", "Delinquencies in last 2 years", 0},
		{"inq_last_6mths", "Credit inquiries (last 6 months)", 1},
		{"open_acc", "Open credit accounts", 10},
		{"pub_rec", "Public records", 0},
		{"revol_bal", "Revolving balance", 8000},
		{"total_acc", "Total credit accounts", 15},
		{"Credit_Utilization", "Credit utilization (%)", 35},
		{"Default_Rate_By_State", "State default rate (%)", 15},
		{"Dispute_Count", "Dispute count", 0},
		{"collections_12_mths_ex_med", "Collections (last 12 months)", 0},
		{"pub_rec_bankruptcies", "Bankruptcies", 0},
		{"term", "Loan term (months)", 36},
		{"grade", "Credit grade (1=A to 7=G)", 2},
		{"acc_now_delinq", "Accounts now delinquent", 0},
	}
)

// PaymentDelay scores counterparties from aggregated payment history.
var PaymentDelay = ModelSet{
	ID:          SetPaymentDelay,
	Name:        "Payment delay",
	Description: "Payment delay prediction for counterparties based on historical transaction data",
	Aliases:     []string{"synthetic_ai"},
	Roles: []Role{
		{"delay_probability", "delay_probability", model.Probability, SignalDelayProbability, true, delayProbabilityFeatures},
		{"delay_days", "delay_days", model.ContinuousEstimate, SignalDelayDays, false, delayDaysFeatures},
	},
	Recommendations: scoring.PaymentRecommendations,
}

// CreditRisk scores a single loan application.
var CreditRisk = ModelSet{
	ID:          SetCreditRisk,
	Name:        "Credit risk",
	Description: "Loan risk assessment including acceptance, default, delay and fraud prediction",
	Aliases:     []string{"lending_club"},
	Roles: []Role{
		{"acceptance", "credit_acceptance", model.Probability, SignalNone, false, creditFeatures},
		{"default", "credit_default", model.Probability, SignalDefaultProbability, false, creditFeatures},
		{"delay", "credit_delay", model.Probability, SignalDelayProbability, true, creditFeatures},
		{"fraud", "credit_fraud", model.AnomalyScore, SignalFraud, false, creditFeatures},
	},
	Recommendations: scoring.CreditRecommendations,
}

var modelSets = []*ModelSet{&PaymentDelay, &CreditRisk}

// LookupSet finds a model set by id or alias, case-insensitively.
func LookupSet(id string) (*ModelSet, error) {
	id = strings.TrimSpace(id)
	for _, set := range modelSets {
		if strings.EqualFold(set.ID, id) {
			return set, nil
		}
		for _, alias := range set.Aliases {
			if strings.EqualFold(alias, id) {
				return set, nil
			}
		}
	}
	return nil, &UnknownModelSetError{ID: id}
}

// ModelSets returns every model set.
func ModelSets() []*ModelSet {
	return append([]*ModelSet(nil), modelSets...)
}

// ModelIDs returns every model id referenced by a model set, sorted.
func ModelIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, set := range modelSets {
		for _, r := range set.Roles {
			if !seen[r.ModelID] {
				seen[r.ModelID] = true
				ids = append(ids, r.ModelID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
