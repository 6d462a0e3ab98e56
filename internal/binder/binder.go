// Package binder enumerates candidate role bindings for a (template,
// fact set) pair. Binding is pure matching over member shapes; cross-role
// relationships are the verifier's job. Enumeration is lazy, finite,
// re-enumerable, and deterministically ordered so verdicts reproduce
// across runs: roles advance in declaration order, candidate types in
// lexical order.
package binder

import (
	"sort"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
	"patcheck/internal/pattern"
)

// DefaultCandidateCap bounds how many types a multiplicity-many role may
// match before enumeration is refused.
const DefaultCandidateCap = 100

// DefaultPowerSetLimit bounds the subset expansion of multiplicity-many
// roles: at or below the limit all non-empty subsets are enumerated,
// above it only the full matching set.
const DefaultPowerSetLimit = 4

// Options configures candidate enumeration
type Options struct {
	CandidateCap  int
	PowerSetLimit int
}

func (o Options) withDefaults() Options {
	if o.CandidateCap <= 0 {
		o.CandidateCap = DefaultCandidateCap
	}
	if o.PowerSetLimit <= 0 {
		o.PowerSetLimit = DefaultPowerSetLimit
	}
	return o
}

// Binding maps role names to the concrete types bound to them. A role
// absent from the map is unbound (no candidate type matched it). Types
// for a role are in lexical order. A multiplicity-one role always holds
// exactly one type.
type Binding map[string][]string

// One returns the single type bound to a role
func (b Binding) One(role string) (string, bool) {
	types := b[role]
	if len(types) != 1 {
		return "", false
	}
	return types[0], true
}

// Bound reports whether the role has at least one bound type
func (b Binding) Bound(role string) bool {
	return len(b[role]) > 0
}

// alternative is one choice for a role; nil marks the role unbound
type alternative []string

// Enumeration is a restartable cursor over candidate bindings
type Enumeration struct {
	roles   []pattern.Role
	choices [][]alternative
	idx     []int
	done    bool
}

// Enumerate computes per-role candidates and returns a fresh cursor.
// An empty fact set yields an enumeration with no bindings, not an error.
// A multiplicity-many role matching more types than the candidate cap
// fails with CandidateExplosion.
func Enumerate(tpl *pattern.Template, fs *factset.FactSet, opts Options) (*Enumeration, error) {
	opts = opts.withDefaults()

	e := &Enumeration{
		roles: tpl.Roles,
		idx:   make([]int, len(tpl.Roles)),
	}

	if len(fs.Types) == 0 {
		e.done = true
		return e, nil
	}

	names := fs.TypeNames()
	for _, role := range tpl.Roles {
		var matching []string
		for _, name := range names {
			if role.Satisfied(fs.Types[name]) {
				matching = append(matching, name)
			}
		}

		var alts []alternative
		switch {
		case len(matching) == 0:
			alts = []alternative{nil}
		case role.Multiplicity == pattern.One:
			for _, name := range matching {
				alts = append(alts, alternative{name})
			}
		default: // pattern.Many
			if len(matching) > opts.CandidateCap {
				return nil, errors.Newf(errors.CandidateExplosion,
					"role %q matched %d candidate types (cap %d)",
					role.Name, len(matching), opts.CandidateCap).
					WithDetails(map[string]interface{}{
						"role":       role.Name,
						"candidates": len(matching),
						"cap":        opts.CandidateCap,
					})
			}
			if len(matching) <= opts.PowerSetLimit {
				for mask := 1; mask < 1<<len(matching); mask++ {
					var subset alternative
					for i, name := range matching {
						if mask&(1<<i) != 0 {
							subset = append(subset, name)
						}
					}
					alts = append(alts, subset)
				}
			} else {
				alts = []alternative{alternative(matching)}
			}
		}
		e.choices = append(e.choices, alts)
	}

	return e, nil
}

// Next returns the next candidate binding. A concrete type fills at most
// one role within a binding; combinations reusing a type are skipped.
func (e *Enumeration) Next() (Binding, bool) {
	for !e.done {
		b := e.current()
		e.advance()
		if b != nil {
			return b, true
		}
	}
	return nil, false
}

// Reset restarts the enumeration from the beginning
func (e *Enumeration) Reset() {
	for i := range e.idx {
		e.idx[i] = 0
	}
	e.done = len(e.choices) == 0
}

func (e *Enumeration) current() Binding {
	b := make(Binding, len(e.roles))
	used := make(map[string]bool)
	for i, role := range e.roles {
		alt := e.choices[i][e.idx[i]]
		if alt == nil {
			continue
		}
		for _, name := range alt {
			if used[name] {
				return nil
			}
			used[name] = true
		}
		types := make([]string, len(alt))
		copy(types, alt)
		sort.Strings(types)
		b[role.Name] = types
	}
	return b
}

// advance increments the mixed-radix counter; the first role varies
// slowest, so earlier-declared roles dominate the ordering.
func (e *Enumeration) advance() {
	for i := len(e.idx) - 1; i >= 0; i-- {
		e.idx[i]++
		if e.idx[i] < len(e.choices[i]) {
			return
		}
		e.idx[i] = 0
	}
	e.done = true
}
