package pattern

import (
	"sort"

	"patcheck/internal/errors"
)

// Registry holds the loaded pattern templates. It is built once at process
// start and read-only afterwards; every component receives it explicitly.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds a template. Registration failures are configuration errors
// and fatal at startup.
func (r *Registry) Register(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := r.templates[t.Name]; exists {
		return errors.Newf(errors.DuplicatePattern, "pattern %q is already registered", t.Name)
	}
	r.templates[t.Name] = t
	return nil
}

// Get returns the template for a pattern name
func (r *Registry) Get(name string) (*Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, errors.Newf(errors.UnknownPattern, "pattern %q is not registered", name)
	}
	return t, nil
}

// Names returns all registered pattern names in lexical order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered templates
func (r *Registry) Len() int {
	return len(r.templates)
}
