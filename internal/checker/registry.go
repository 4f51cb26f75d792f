package checker

import (
	"mlccheck/internal/annotation"
	"mlccheck/internal/logging"
)

// Registry maps struct names to their canonical declared-value lists.
// One Registry lives for a whole run so that a struct declared in one file
// can be initialized or deinitialized in another. Entries are write-once and
// there is no removal. A Registry is not safe for concurrent use.
type Registry struct {
	decls map[string][]annotation.Token
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decls: make(map[string][]annotation.Token)}
}

// Register stores list under name. It returns false, leaving the registry
// untouched, when name is already present.
func (r *Registry) Register(name string, list []annotation.Token) bool {
	if _, exists := r.decls[name]; exists {
		return false
	}
	r.decls[name] = append([]annotation.Token(nil), list...)
	r.order = append(r.order, name)
	logging.RegistryDebug("registered struct %q with values %v", name, annotation.Values(list))
	return true
}

// Lookup returns the declared list for name.
func (r *Registry) Lookup(name string) ([]annotation.Token, bool) {
	l, ok := r.decls[name]
	return l, ok
}

// Len is the number of registered structs.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names lists registered structs in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
