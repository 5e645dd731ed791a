package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/okian/partyrisk/internal/domain/predict"
	"github.com/okian/partyrisk/pkg/logger"
	"github.com/okian/partyrisk/pkg/metrics"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader reads model artifacts from a directory.
type Loader struct {
	fsys   fs.FS
	dir    string
	logger logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithFS reads artifacts from fsys instead of the OS filesystem.
func WithFS(fsys fs.FS) Option {
	return func(ld *Loader) {
		if fsys != nil {
			ld.fsys = fsys
		}
	}
}

// NewLoader creates a loader for dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.fsys == nil {
		l.fsys = os.DirFS(dir)
	}
	return l
}

// Parse decodes and validates one artifact document.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Spec
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifact, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Adapt wraps a validated spec in the predict adapter for its kind.
func Adapt(s *Spec) (predict.Model, error) {
	p := &params{spec: *s}
	switch s.Kind {
	case KindClassifier:
		return predict.Classify(s.ID, classifier{p}), nil
	case KindRegressor:
		return predict.Regress(s.ID, regressor{p}), nil
	case KindAnomaly:
		return predict.Detect(s.ID, detector{p}), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrArtifact, s.Kind)
}

// LoadModel reads the artifact for id.
func (l *Loader) LoadModel(id string) (predict.Model, error) {
	for _, ext := range extensions {
		data, err := fs.ReadFile(l.fsys, id+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", id+ext, err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id+ext, err)
		}
		if s.ID != id {
			return nil, fmt.Errorf("%w: %s declares id %q", ErrArtifact, id+ext, s.ID)
		}
		return Adapt(s)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(l.dir, id+".yaml"))
}

// Load builds a registry holding every id. Artifacts that fail to load are
// registered as unavailable; the error only reports registry construction.
func (l *Loader) Load(ctx context.Context, ids []string) (*predict.Registry, error) {
	opts := make([]predict.RegistryOption, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, err := l.LoadModel(id)
		if err != nil {
			l.logger.Warn(ctx, "model unavailable", logger.String("model", id), logger.Error(err))
			opts = append(opts, predict.WithUnavailable(id, err))
			continue
		}
		l.logger.Info(ctx, "model loaded",
			logger.String("model", id),
			logger.String("kind", m.Kind().String()),
			logger.Int("features", len(m.Features())),
		)
		opts = append(opts, predict.WithModel(m))
	}

	reg, err := predict.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	metrics.UpdateModelsLoaded(reg.Counts())
	return reg, nil
}
