// Package columns resolves aliased input field names to canonical fields and
// converts raw rows into typed transactions.
package columns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Canonical field names.
const (
	PartyID           = "party_id"
	Amount            = "amount"
	CreditDays        = "credit_days"
	DaysInPayment     = "days_in_payment"
	IsDelayed         = "is_delayed"
	OutstandingAmount = "outstanding_amount"
	TransactionType   = "transaction_type"
	InvoiceNo         = "invoice_no"
	InvoiceDate       = "invoice_date"
	PaymentDate       = "payment_date"
	DueDate           = "due_date"
	GSTNo             = "gst_no"
)

type field struct {
	name     string
	required bool
	aliases  []string
}

// Aliases are matched case-insensitively; earlier aliases win.
var table = []field{
	{PartyID, true, []string{"PartyName", "Party", "Company", "Customer", "party_id", "party_name"}},
	{Amount, true, []string{"Amount", "TransactionAmount", "transaction_amount", "InvoiceAmount"}},
	{CreditDays, true, []string{"CreditDays", "credit_days", "CreditPeriod"}},
	{DaysInPayment, true, []string{"DaysInPayment", "days_in_payment"}},
	{IsDelayed, true, []string{"IsDelayed", "is_delayed", "Delayed"}},
	{OutstandingAmount, false, []string{"OutstandingAmount", "outstanding_amount", "Outstanding"}},
	{TransactionType, false, []string{"TransactionType", "transaction_type"}},
	{InvoiceNo, false, []string{"InvoiceNo", "invoice_no", "InvoiceNumber"}},
	{InvoiceDate, false, []string{"InvoiceDate", "invoice_date"}},
	{PaymentDate, false, []string{"PaymentDate", "payment_date", "PaymentReceiptDate"}},
	{DueDate, false, []string{"DueDate", "due_date"}},
	{GSTNo, false, []string{"GSTNo", "gst_no", "GSTIN"}},
}

// passthrough fields are copied into CanonicalTransaction.Extra untouched.
var passthrough = []string{TransactionType, InvoiceDate, PaymentDate, DueDate, GSTNo}

func lookup(canonical string) (field, bool) {
	for _, f := range table {
		if f.name == canonical {
			return f, true
		}
	}
	return field{}, false
}

// Aliases returns the accepted aliases of a canonical field.
func Aliases(canonical string) []string {
	f, ok := lookup(canonical)
	if !ok {
		return nil
	}
	return append([]string(nil), f.aliases...)
}

// Resolve returns the first available field name matching an alias of
// canonical. Optional fields with no match resolve to "" and no error.
func Resolve(available []string, canonical string) (string, error) {
	f, ok := lookup(canonical)
	if !ok {
		return "", fmt.Errorf("%w: unknown canonical field %q", ErrSchema, canonical)
	}
	if m := match(available, f.aliases); len(m) > 0 {
		return m[0], nil
	}
	if f.required {
		return "", &SchemaError{Field: f.name, Aliases: f.aliases}
	}
	return "", nil
}

func match(available, aliases []string) []string {
	var out []string
	for _, alias := range aliases {
		for _, name := range available {
			if strings.EqualFold(strings.TrimSpace(name), alias) && !contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Mapping is the alias resolution of one batch, computed once from the union
// of field names and reused for every row.
type Mapping struct {
	present map[string][]string
}

// Build resolves every canonical field against the available field names.
// Missing required fields are reported together as SchemaErrors.
func Build(available []string) (*Mapping, error) {
	m := &Mapping{present: make(map[string][]string, len(table))}
	var errs []error
	for _, f := range table {
		found := match(available, f.aliases)
		if len(found) == 0 && f.required {
			errs = append(errs, &SchemaError{Field: f.name, Aliases: f.aliases})
			continue
		}
		m.present[f.name] = found
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Column returns the input field chosen first for canonical.
func (m *Mapping) Column(canonical string) string {
	if cols := m.present[canonical]; len(cols) > 0 {
		return cols[0]
	}
	return ""
}

// value returns the first non-blank value among the columns mapped to
// canonical, so mixed-schema batches work row by row.
func (m *Mapping) value(raw model.RawTransaction, canonical string) (any, string, bool) {
	for _, col := range m.present[canonical] {
		v, ok := raw[col]
		if ok && !blank(v) {
			return v, col, true
		}
	}
	return nil, "", false
}

// Canonicalize converts one raw row. Any error is a *ParseError for that row.
func (m *Mapping) Canonicalize(row int, raw model.RawTransaction) (model.CanonicalTransaction, error) {
	tx := model.CanonicalTransaction{Row: row, OutstandingAmount: zero}

	v, col, ok := m.value(raw, PartyID)
	if !ok {
		return tx, &ParseError{Row: row, Field: PartyID, Err: errMissingValue}
	}
	tx.PartyID = strings.TrimSpace(fmt.Sprint(v))
	if tx.PartyID == "" {
		return tx, &ParseError{Row: row, Field: PartyID, Column: col, Value: v, Err: errMissingValue}
	}

	var err error
	if tx.Amount, err = m.decimalField(row, raw, Amount, true); err != nil {
		return tx, err
	}
	if tx.CreditDays, err = m.floatField(row, raw, CreditDays); err != nil {
		return tx, err
	}
	if tx.DaysInPayment, err = m.floatField(row, raw, DaysInPayment); err != nil {
		return tx, err
	}
	v, col, ok = m.value(raw, IsDelayed)
	if !ok {
		return tx, &ParseError{Row: row, Field: IsDelayed, Err: errMissingValue}
	}
	if tx.IsDelayed, err = parseBool(v); err != nil {
		return tx, &ParseError{Row: row, Field: IsDelayed, Column: col, Value: v, Err: err}
	}
	if tx.OutstandingAmount, err = m.decimalField(row, raw, OutstandingAmount, false); err != nil {
		return tx, err
	}

	if v, _, ok := m.value(raw, InvoiceNo); ok {
		tx.InvoiceNo = strings.TrimSpace(fmt.Sprint(v))
	}
	for _, name := range passthrough {
		if v, _, ok := m.value(raw, name); ok {
			if tx.Extra == nil {
				tx.Extra = make(map[string]any, len(passthrough))
			}
			tx.Extra[name] = v
		}
	}
	return tx, nil
}

func (m *Mapping) floatField(row int, raw model.RawTransaction, canonical string) (float64, error) {
	v, col, ok := m.value(raw, canonical)
	if !ok {
		return 0, &ParseError{Row: row, Field: canonical, Err: errMissingValue}
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, &ParseError{Row: row, Field: canonical, Column: col, Value: v, Err: err}
	}
	return f, nil
}
