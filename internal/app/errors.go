package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/columns"
	"github.com/okian/partyrisk/internal/domain/predict"
	"github.com/okian/partyrisk/internal/domain/scoring"
)

// Sentinel errors.
var (
	ErrNoResults       = errors.New("no party produced a result")
	ErrEmptyBatch      = errors.New("batch has no rows")
	ErrTooManyRows     = errors.New("batch exceeds row limit")
	ErrUnknownModelSet = errors.New("unknown model set")
	ErrDuplicate       = errors.New("duplicate invoice")
)

// UnknownModelSetError reports a model set id with no definition.
type UnknownModelSetError struct{ ID string }

func (e *UnknownModelSetError) Error() string {
	return fmt.Sprintf("unknown model set %q", e.ID)
}

// Is reports whether target is ErrUnknownModelSet.
func (e *UnknownModelSetError) Is(target error) bool { return target == ErrUnknownModelSet }

// Error kinds reported in skip entries, row issues and API errors.
const (
	KindSchema           = "schema"
	KindParse            = "parse"
	KindDuplicate        = "duplicate"
	KindInsufficientData = "insufficient_data"
	KindModelUnavailable = "model_unavailable"
	KindFeatureShape     = "feature_shape"
	KindInvalidOutput    = "invalid_output"
	KindNoPolicy         = "no_policy"
	KindNoResults        = "no_results"
	KindEmptyBatch       = "empty_batch"
	KindTooManyRows      = "too_many_rows"
	KindUnknownModelSet  = "unknown_model_set"
	KindTimeout          = "timeout"
	KindCanceled         = "canceled"
	KindInternal         = "internal"
)

// ErrorKind maps an error to its stable kind string.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, columns.ErrSchema):
		return KindSchema
	case errors.Is(err, columns.ErrParse):
		return KindParse
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, aggregate.ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, predict.ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, aggregate.ErrFeatureShape):
		return KindFeatureShape
	case errors.Is(err, predict.ErrInvalidOutput),
		errors.Is(err, scoring.ErrSignalKind),
		errors.Is(err, scoring.ErrInvalidSignal):
		return KindInvalidOutput
	case errors.Is(err, scoring.ErrNoPolicy):
		return KindNoPolicy
	case errors.Is(err, ErrNoResults):
		return KindNoResults
	case errors.Is(err, ErrEmptyBatch):
		return KindEmptyBatch
	case errors.Is(err, ErrTooManyRows):
		return KindTooManyRows
	case errors.Is(err, ErrUnknownModelSet):
		return KindUnknownModelSet
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindInternal
}
