package graph

import "github.com/dd0wney/cluso-eyeball/pkg/records"

// Registry maps generated node ids back to the detail they were built from.
// Entries are write-once: a second Put for the same id is ignored.
type Registry struct {
	details map[string]records.Detail
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{details: make(map[string]records.Detail)}
}

// Put stores detail under id unless the id is already present. It reports
// whether the detail was stored.
func (r *Registry) Put(id string, detail records.Detail) bool {
	if detail == nil {
		return false
	}
	if _, exists := r.details[id]; exists {
		return false
	}
	r.details[id] = detail
	return true
}

// Get returns the detail stored for id.
func (r *Registry) Get(id string) (records.Detail, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.details[id]
	return d, ok
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.details)
}
