// Package pattern defines the structural templates for the classic design
// patterns and the registry serving them. A template is a role graph plus
// required relationships; it is hand-authored, loaded once at startup, and
// never mutated afterwards.
package pattern

import (
	"patcheck/internal/errors"
	"patcheck/internal/factset"
)

// Category groups the classic patterns
type Category string

const (
	// Creational patterns concern object construction
	Creational Category = "creational"
	// Structural patterns concern type composition
	Structural Category = "structural"
	// Behavioral patterns concern object collaboration
	Behavioral Category = "behavioral"
)

// Multiplicity constrains how many concrete types a role binds
type Multiplicity string

const (
	// One binds exactly one type
	One Multiplicity = "one"
	// Many binds one or more types
	Many Multiplicity = "many"
)

// AnyArity matches members of any arity in a MethodShape
const AnyArity = -1

// MethodShape is a name-blind member requirement: the corpus renders the
// same role as operation(), Operation(), or doAlgorithm(), so capability
// predicates match arity and return category only.
type MethodShape struct {
	Arity   int                    // AnyArity for any
	Returns factset.ReturnCategory // "" for any
	Count   int                    // minimum matching public methods, >= 1
}

// Matches reports whether a member satisfies the shape
func (s MethodShape) Matches(m factset.Member) bool {
	if m.Kind != factset.KindMethod || !m.Public {
		return false
	}
	if s.Arity != AnyArity && m.Arity != s.Arity {
		return false
	}
	if s.Returns != "" && m.Returns != s.Returns {
		return false
	}
	return true
}

// Role is a named participant slot in a pattern's structure
type Role struct {
	Name         string
	Multiplicity Multiplicity
	Requires     []MethodShape
}

// Satisfied reports whether a type's members cover every required shape
func (r Role) Satisfied(tf *factset.TypeFact) bool {
	for _, shape := range r.Requires {
		matched := 0
		for _, m := range tf.Members {
			if shape.Matches(m) {
				matched++
			}
		}
		if matched < shape.Count {
			return false
		}
	}
	return true
}

// RuleKind enumerates the required structural edges between roles
type RuleKind string

const (
	// InheritsFrom requires a nominal supertype edge, direct or transitive
	InheritsFrom RuleKind = "inherits-from"
	// ImplementsCapabilityOf requires structural coverage of the target's
	// public methods, with or without a declared supertype edge
	ImplementsCapabilityOf RuleKind = "implements-capability-of"
	// HoldsReferenceTo requires a declared field or parameter of the target type
	HoldsReferenceTo RuleKind = "holds-reference-to"
	// DelegatesCallTo requires an observed call edge into the target type
	DelegatesCallTo RuleKind = "delegates-call-to"
	// Instantiates requires an observed construction of the target type
	Instantiates RuleKind = "instantiates"
)

// Order constrains the relative position of a delegate call within the
// caller member body.
type Order string

const (
	// OrderAny imposes no position requirement
	OrderAny Order = ""
	// OrderFirst requires the delegate call to be the first call in its member
	OrderFirst Order = "first"
	// OrderLast requires the delegate call to be the last call in its member
	OrderLast Order = "last"
)

// RelationshipRule is a required typed edge between two roles. From and To
// may name the same role (a chain handler holding its successor, a
// template method calling its own steps).
type RelationshipRule struct {
	Kind  RuleKind
	From  string
	To    string
	Order Order
}

// Template is the structural contract of one design pattern. Immutable
// once loaded.
type Template struct {
	Name     string
	Category Category
	Roles    []Role
	Rules    []RelationshipRule
}

// Role returns the role with the given name, if declared
func (t *Template) Role(name string) (Role, bool) {
	for _, r := range t.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// Validate checks template well-formedness at registration time
func (t *Template) Validate() error {
	if t.Name == "" {
		return errors.Newf(errors.ConfigInvalid, "template missing name")
	}
	switch t.Category {
	case Creational, Structural, Behavioral:
	default:
		return errors.Newf(errors.ConfigInvalid,
			"template %q has unknown category %q", t.Name, t.Category)
	}
	if len(t.Roles) == 0 {
		return errors.Newf(errors.ConfigInvalid, "template %q has no roles", t.Name)
	}

	seen := make(map[string]bool)
	for _, r := range t.Roles {
		if r.Name == "" {
			return errors.Newf(errors.ConfigInvalid, "template %q has an unnamed role", t.Name)
		}
		if seen[r.Name] {
			return errors.Newf(errors.ConfigInvalid,
				"template %q declares role %q twice", t.Name, r.Name)
		}
		seen[r.Name] = true
		switch r.Multiplicity {
		case One, Many:
		default:
			return errors.Newf(errors.ConfigInvalid,
				"template %q role %q has invalid multiplicity %q", t.Name, r.Name, r.Multiplicity)
		}
		for _, shape := range r.Requires {
			if shape.Count < 1 {
				return errors.Newf(errors.ConfigInvalid,
					"template %q role %q has a method shape with count %d", t.Name, r.Name, shape.Count)
			}
			if shape.Arity < AnyArity {
				return errors.Newf(errors.ConfigInvalid,
					"template %q role %q has a method shape with arity %d", t.Name, r.Name, shape.Arity)
			}
		}
	}

	for _, rule := range t.Rules {
		if !seen[rule.From] {
			return errors.Newf(errors.ConfigInvalid,
				"template %q rule references undeclared role %q", t.Name, rule.From)
		}
		if !seen[rule.To] {
			return errors.Newf(errors.ConfigInvalid,
				"template %q rule references undeclared role %q", t.Name, rule.To)
		}
		switch rule.Kind {
		case InheritsFrom, ImplementsCapabilityOf, HoldsReferenceTo, DelegatesCallTo, Instantiates:
		default:
			return errors.Newf(errors.ConfigInvalid,
				"template %q has rule of unknown kind %q", t.Name, rule.Kind)
		}
		if rule.Order != OrderAny && rule.Kind != DelegatesCallTo {
			return errors.Newf(errors.ConfigInvalid,
				"template %q applies an ordering constraint to a %s rule", t.Name, rule.Kind)
		}
		switch rule.Order {
		case OrderAny, OrderFirst, OrderLast:
		default:
			return errors.Newf(errors.ConfigInvalid,
				"template %q has invalid ordering %q", t.Name, rule.Order)
		}
	}

	return nil
}
