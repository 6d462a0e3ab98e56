package factset

import (
	"patcheck/internal/errors"
)

// Validate checks the structural assumptions the verification core relies
// on. A violation is a fatal input error for this snippet only; callers
// running batches continue with their remaining snippets.
//
// Checked:
//   - every type entry carries a fact (no null entries)
//   - no cyclic supertype chain among declared types
//   - call edges reference declared caller and callee types
//   - call edge caller members exist on the caller type
//   - member arity is non-negative
func (fs *FactSet) Validate() error {
	for name, tf := range fs.Types {
		if tf == nil {
			return errors.Newf(errors.MalformedFactSet, "type %q is null", name)
		}
		if tf.Name != name {
			return errors.Newf(errors.MalformedFactSet,
				"type %q recorded under key %q", tf.Name, name)
		}
		for _, m := range tf.Members {
			if m.Arity < 0 {
				return errors.Newf(errors.MalformedFactSet,
					"member %s.%s has negative arity %d", name, m.Name, m.Arity)
			}
		}
	}

	if cycle := fs.findSupertypeCycle(); cycle != "" {
		return errors.Newf(errors.MalformedFactSet,
			"cyclic supertype chain through %q", cycle)
	}

	for _, e := range fs.Calls {
		caller, ok := fs.Types[e.CallerType]
		if !ok {
			return errors.Newf(errors.MalformedFactSet,
				"call edge from undeclared type %q", e.CallerType)
		}
		if _, ok := fs.Types[e.CalleeType]; !ok {
			return errors.Newf(errors.MalformedFactSet,
				"call edge to undeclared type %q", e.CalleeType)
		}
		if e.CallerMember != "" && !caller.HasMember(e.CallerMember) {
			return errors.Newf(errors.MalformedFactSet,
				"call edge from unknown member %s.%s", e.CallerType, e.CallerMember)
		}
	}

	return nil
}

// findSupertypeCycle returns the name of a type participating in a cyclic
// supertype chain, or "" when the hierarchy is acyclic. Supertypes naming
// undeclared types are opaque externals and cannot close a cycle.
func (fs *FactSet) findSupertypeCycle() string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(fs.Types))

	var visit func(name string) string
	visit = func(name string) string {
		tf, ok := fs.Types[name]
		if !ok {
			return ""
		}
		switch state[name] {
		case inStack:
			return name
		case done:
			return ""
		}
		state[name] = inStack
		for _, super := range tf.Supertypes {
			if hit := visit(super); hit != "" {
				return hit
			}
		}
		state[name] = done
		return ""
	}

	for _, name := range fs.TypeNames() {
		if hit := visit(name); hit != "" {
			return hit
		}
	}
	return ""
}

// RemoveType deletes a type and every call edge touching it. Used by
// tooling that probes how a verdict degrades as facts disappear.
func (fs *FactSet) RemoveType(name string) {
	delete(fs.Types, name)
	kept := fs.Calls[:0]
	for _, e := range fs.Calls {
		if e.CallerType != name && e.CalleeType != name {
			kept = append(kept, e)
		}
	}
	fs.Calls = kept
}
