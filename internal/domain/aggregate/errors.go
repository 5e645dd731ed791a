package aggregate

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrFeatureShape     = errors.New("feature shape mismatch")
)

// InsufficientDataError reports a party with no usable transactions.
type InsufficientDataError struct {
	PartyID  string
	Rejected int // rows of this party rejected before aggregation
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("party %q has no valid transactions (%d rejected rows)", e.PartyID, e.Rejected)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// FeatureShapeError reports a feature vector that does not match the shape a
// model expects.
type FeatureShapeError struct {
	ModelID  string
	Expected []string
	Got      []string
	Unknown  []string // expected names no party feature provides
}

func (e *FeatureShapeError) Error() string {
	msg := fmt.Sprintf("model %s expects features [%s], got [%s]",
		e.ModelID, strings.Join(e.Expected, ","), strings.Join(e.Got, ","))
	if len(e.Unknown) > 0 {
		msg += fmt.Sprintf(", unknown [%s]", strings.Join(e.Unknown, ","))
	}
	return msg
}

// Is reports whether target is ErrFeatureShape.
func (e *FeatureShapeError) Is(target error) bool { return target == ErrFeatureShape }
