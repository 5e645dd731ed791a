package predict

import (
	"sort"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Registry holds the models loaded at startup. It is immutable once built
// and safe for concurrent reads.
type Registry struct {
	models      map[string]Model
	unavailable map[string]error
	err         error
}

// RegistryOption registers a model while building a Registry.
type RegistryOption func(*Registry)

// WithModel registers an available model.
func WithModel(m Model) RegistryOption {
	return func(r *Registry) {
		if _, dup := r.models[m.ID()]; dup {
			r.err = &ModelUnavailableError{ModelID: m.ID(), Err: ErrDuplicateModel}
			return
		}
		delete(r.unavailable, m.ID())
		r.models[m.ID()] = m
	}
}

// WithUnavailable records a model whose artifact failed to load.
func WithUnavailable(id string, err error) RegistryOption {
	return func(r *Registry) {
		if _, ok := r.models[id]; ok {
			return
		}
		r.unavailable[id] = err
	}
}

// NewRegistry builds a registry.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		models:      make(map[string]Model),
		unavailable: make(map[string]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

// Get returns the model with id, or a *ModelUnavailableError.
func (r *Registry) Get(id string) (Model, error) {
	if m, ok := r.models[id]; ok {
		return m, nil
	}
	return nil, &ModelUnavailableError{ModelID: id, Err: r.unavailable[id]}
}

// Available reports whether id can be invoked.
func (r *Registry) Available(id string) bool {
	_, ok := r.models[id]
	return ok
}

// ModelStatus describes one registered model.
type ModelStatus struct {
	ID        string           `json:"id"`
	Kind      model.OutputKind `json:"kind,omitempty"`
	Features  []string         `json:"features,omitempty"`
	Available bool             `json:"available"`
	Error     string           `json:"error,omitempty"`
}

// Status lists every known model sorted by id.
func (r *Registry) Status() []ModelStatus {
	out := make([]ModelStatus, 0, len(r.models)+len(r.unavailable))
	for id, m := range r.models {
		out = append(out, ModelStatus{ID: id, Kind: m.Kind(), Features: m.Features(), Available: true})
	}
	for id, err := range r.unavailable {
		st := ModelStatus{ID: id}
		if err != nil {
			st.Error = err.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns the number of available and unavailable models.
func (r *Registry) Counts() (available, unavailable int) {
	return len(r.models), len(r.unavailable)
}
