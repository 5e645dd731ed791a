// Package aggregate reduces a party's transactions to a feature vector.
package aggregate

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/partyrisk/internal/domain/model"
)

// accumulator is the single-pass state over one party's transactions.
type accumulator struct {
	n          int
	sum        float64
	sumSq      float64
	max        float64
	delayed    int
	total      decimal.Decimal
	creditDays float64
}

func (a *accumulator) add(tx *model.CanonicalTransaction) {
	d := tx.DaysInPayment
	if a.n == 0 || d > a.max {
		a.max = d
	}
	a.n++
	a.sum += d
	a.sumSq += d * d
	if tx.IsDelayed {
		a.delayed++
	}
	a.total = a.total.Add(tx.Amount)
	a.creditDays += tx.CreditDays
}

// Party aggregates the transactions of one party. txs must all share partyID.
// rejected is the number of the party's rows dropped upstream and is only
// used for the error message.
func Party(partyID string, txs []model.CanonicalTransaction, rejected int) (model.PartyFeatureVector, error) {
	if len(txs) == 0 {
		return model.PartyFeatureVector{}, &InsufficientDataError{PartyID: partyID, Rejected: rejected}
	}

	var acc accumulator
	for i := range txs {
		acc.add(&txs[i])
	}

	n := float64(acc.n)
	mean := acc.sum / n
	std := 0.0
	if acc.n > 1 {
		std = math.Sqrt(math.Max(0, acc.sumSq/n-mean*mean))
	}
	totalValue := acc.total.InexactFloat64()
	avgAmount := acc.total.Div(decimal.NewFromInt(int64(acc.n))).InexactFloat64()

	return model.PartyFeatureVector{
		PartyID:       partyID,
		AvgDelayDays:  mean,
		MaxDelayDays:  acc.max,
		StdDelayDays:  std,
		DelayedCount:  acc.delayed,
		TotalTxn:      acc.n,
		TotalValue:    totalValue,
		Amount:        avgAmount,
		AvgCreditDays: acc.creditDays / n,
		OnTimeRate:    1 - float64(acc.delayed)/n,
	}, nil
}

// Vector is a named, ordered projection of a feature vector.
type Vector struct {
	Names  []string
	Values []float64
}

// Project builds the vector of the named features in the given order.
func Project(modelID string, fv *model.PartyFeatureVector, names []string) (Vector, error) {
	v := Vector{Names: append([]string(nil), names...), Values: make([]float64, len(names))}
	var got, unknown []string
	for i, name := range names {
		val, ok := fv.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		got = append(got, name)
		v.Values[i] = val
	}
	if len(unknown) > 0 {
		return Vector{}, &FeatureShapeError{ModelID: modelID, Expected: v.Names, Got: got, Unknown: unknown}
	}
	return v, nil
}

// FromMap builds a vector from loose named inputs. Missing names default to 0.
func FromMap(input map[string]float64, names []string) Vector {
	v := Vector{Names: append([]string(nil), names...), Values: make([]float64, len(names))}
	for i, name := range names {
		v.Values[i] = input[name]
	}
	return v
}
