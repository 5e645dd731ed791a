// Package model contains domain models passed between layers.
package model

import "github.com/shopspring/decimal"

// RawTransaction is one input row as delivered by ingestion: field name to
// scalar (string, number, bool or time.Time).
type RawTransaction map[string]any

// Keys returns the row's field names in sorted order.
func (r RawTransaction) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

// CanonicalTransaction is a RawTransaction resolved to canonical field names
// and typed values.
type CanonicalTransaction struct {
	Row               int // zero-based index of the source row
	PartyID           string
	Amount            decimal.Decimal
	CreditDays        float64
	DaysInPayment     float64
	IsDelayed         bool
	OutstandingAmount decimal.Decimal

	// InvoiceNo is only read by duplicate detection.
	InvoiceNo string
	// Extra holds optional pass-through fields keyed by canonical name,
	// with their raw values untouched.
	Extra map[string]any
}

// RowIssue records why an input row was not used.
type RowIssue struct {
	Row     int    `json:"row"`
	PartyID string `json:"party_id,omitempty"`
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
