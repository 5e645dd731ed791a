package artifact

import "errors"

// Sentinel errors.
var (
	ErrArtifact    = errors.New("invalid model artifact")
	ErrNotFound    = errors.New("model artifact not found")
	ErrUnsupported = errors.New("unsupported model algorithm")
)
