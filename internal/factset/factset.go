// Package factset defines the normalized structural facts extracted from
// one code sample: declared types, their member shapes, supertype and
// reference edges, and ordered call edges. The verification core consumes
// fact sets read-only; it never inspects source text.
package factset

import (
	"sort"
)

// ReturnCategory classifies what a member returns, ignoring the concrete
// type. Sample code names the same operation differently across languages
// and styles, so members are matched by shape (arity, return category),
// never by name.
type ReturnCategory string

const (
	// ReturnNone means the member returns nothing
	ReturnNone ReturnCategory = "none"
	// ReturnValue means the member returns a value
	ReturnValue ReturnCategory = "value"
)

// MemberKind distinguishes methods, fields, and constructors
type MemberKind string

const (
	// KindMethod is a callable member
	KindMethod MemberKind = "method"
	// KindField is a data member
	KindField MemberKind = "field"
	// KindConstructor is a construction member
	KindConstructor MemberKind = "constructor"
)

// Member is one declared member of a type
type Member struct {
	Name    string         `json:"name"`
	Kind    MemberKind     `json:"kind"`
	Arity   int            `json:"arity"`
	Returns ReturnCategory `json:"returns,omitempty"`
	Public  bool           `json:"public"`
}

// TypeFact holds the structural facts recorded for one declared type
type TypeFact struct {
	Name       string   `json:"name"`
	Abstract   bool     `json:"abstract,omitempty"` // interface, abstract class, protocol
	Supertypes []string `json:"supertypes,omitempty"`
	Members    []Member `json:"members,omitempty"`
	References []string `json:"references,omitempty"` // declared field/parameter types
}

// CallKind distinguishes plain invocations from object construction
type CallKind string

const (
	// CallInvoke is a method invocation
	CallInvoke CallKind = "invoke"
	// CallConstruct is an object construction
	CallConstruct CallKind = "construct"
)

// CallEdge records one observed call from a member body. Seq is the
// relative position of the call within the caller member's body; edges
// for one caller member are totally ordered by Seq.
type CallEdge struct {
	CallerType   string   `json:"callerType"`
	CallerMember string   `json:"callerMember"`
	CalleeType   string   `json:"calleeType"`
	CalleeMember string   `json:"calleeMember,omitempty"`
	Kind         CallKind `json:"kind"`
	Seq          int      `json:"seq"`
}

// FactSet is the normalized extraction of one source snippet
type FactSet struct {
	Source string               `json:"source,omitempty"`
	Types  map[string]*TypeFact `json:"types"`
	Calls  []CallEdge           `json:"calls,omitempty"`
}

// New creates an empty FactSet for the given source identifier
func New(source string) *FactSet {
	return &FactSet{
		Source: source,
		Types:  make(map[string]*TypeFact),
	}
}

// AddType records a type fact, replacing any previous fact for the name
func (fs *FactSet) AddType(tf *TypeFact) {
	fs.Types[tf.Name] = tf
}

// AddCall appends a call edge, assigning its sequence position within the
// caller member.
func (fs *FactSet) AddCall(callerType, callerMember, calleeType, calleeMember string, kind CallKind) {
	seq := 0
	for _, e := range fs.Calls {
		if e.CallerType == callerType && e.CallerMember == callerMember {
			seq++
		}
	}
	fs.Calls = append(fs.Calls, CallEdge{
		CallerType:   callerType,
		CallerMember: callerMember,
		CalleeType:   calleeType,
		CalleeMember: calleeMember,
		Kind:         kind,
		Seq:          seq,
	})
}

// TypeNames returns all declared type names in lexical order
func (fs *FactSet) TypeNames() []string {
	names := make([]string, 0, len(fs.Types))
	for name := range fs.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublicMethods returns the public callable members of a type
func (tf *TypeFact) PublicMethods() []Member {
	var out []Member
	for _, m := range tf.Members {
		if m.Kind == KindMethod && m.Public {
			out = append(out, m)
		}
	}
	return out
}

// HasMember reports whether the type declares a member with the given name
func (tf *TypeFact) HasMember(name string) bool {
	for _, m := range tf.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// HasReferenceTo reports whether some member of the type holds a declared
// field or parameter of the given type.
func (tf *TypeFact) HasReferenceTo(typeName string) bool {
	for _, r := range tf.References {
		if r == typeName {
			return true
		}
	}
	return false
}

// CallsFrom returns the call edges originating in the given caller member,
// ordered by sequence position.
func (fs *FactSet) CallsFrom(callerType, callerMember string) []CallEdge {
	var out []CallEdge
	for _, e := range fs.Calls {
		if e.CallerType == callerType && e.CallerMember == callerMember {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// CallsBetween returns the call edges of the given kind from any member of
// callerType to calleeType.
func (fs *FactSet) CallsBetween(callerType, calleeType string, kind CallKind) []CallEdge {
	var out []CallEdge
	for _, e := range fs.Calls {
		if e.CallerType == callerType && e.CalleeType == calleeType && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SupertypeClosure returns the transitive supertype closure of the named type,
// restricted to declared types. Validation rejects cyclic chains, but the
// walk still tracks visited names so a malformed set cannot loop.
func (fs *FactSet) SupertypeClosure(name string) map[string]bool {
	closure := make(map[string]bool)
	visited := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		tf, ok := fs.Types[n]
		if !ok {
			return
		}
		for _, super := range tf.Supertypes {
			closure[super] = true
			walk(super)
		}
	}
	walk(name)
	return closure
}
