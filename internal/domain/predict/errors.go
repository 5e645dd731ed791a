package predict

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInvalidOutput    = errors.New("invalid model output")
	ErrDuplicateModel   = errors.New("duplicate model id")
)

// ModelUnavailableError reports a model that is unknown or failed to load.
type ModelUnavailableError struct {
	ModelID string
	Err     error // load failure, nil when the id was never registered
}

func (e *ModelUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model %s is not registered", e.ModelID)
	}
	return fmt.Sprintf("model %s failed to load: %v", e.ModelID, e.Err)
}

// Is reports whether target is ErrModelUnavailable.
func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
