package picker

import "github.com/google/uuid"

// Registry is the process-wide mapping from identifier to opaque file
// handle. It carries no lifecycle policy: entries live until overwritten
// wholesale through SetRaw. All access happens on the UI thread.
type Registry struct {
	handles map[string]any
}

// NewRegistry returns an empty handle registry.
func NewRegistry() *Registry {
	return &Registry{handles: map[string]any{}}
}

// Register stores a handle under a fresh identifier and returns it.
func (r *Registry) Register(handle any) string {
	id := uuid.NewString()
	r.handles[id] = handle
	return id
}

// Get looks a handle up by identifier.
func (r *Registry) Get(id string) (any, bool) {
	handle, ok := r.handles[id]
	return handle, ok
}

// Raw exposes the underlying mapping.
func (r *Registry) Raw() map[string]any {
	return r.handles
}

// SetRaw replaces the underlying mapping. The value is not validated.
func (r *Registry) SetRaw(handles map[string]any) {
	r.handles = handles
}
