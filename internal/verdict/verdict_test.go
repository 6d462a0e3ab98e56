package verdict

import (
	"bytes"
	"reflect"
	"testing"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
	"patcheck/internal/output"
	"patcheck/internal/pattern"
)

func builtin(t *testing.T) *pattern.Registry {
	t.Helper()
	reg, err := pattern.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	return reg
}

func TestCheck_AdapterPass(t *testing.T) {
	reg := builtin(t)
	fs := canonicalFacts()["adapter"]

	v, err := Check(reg, "adapter", fs, Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !v.Pass {
		t.Fatalf("Pass = false, violations: %+v", v.Violated)
	}
	want := map[string][]string{
		"Target":  {"Target"},
		"Adaptee": {"Adaptee"},
		"Adapter": {"Adapter"},
	}
	if !reflect.DeepEqual(v.Binding, want) {
		t.Errorf("Binding = %v, want %v", v.Binding, want)
	}
	if len(v.Satisfied) != 3 || len(v.Violated) != 0 {
		t.Errorf("satisfied %d violated %d, want 3 and 0", len(v.Satisfied), len(v.Violated))
	}
	if v.Pattern != "adapter" || v.Source != "adapter" {
		t.Errorf("Pattern = %q Source = %q", v.Pattern, v.Source)
	}
	if v.FactDigest == "" {
		t.Error("FactDigest is empty")
	}
	if v.BindingsTried < 1 {
		t.Errorf("BindingsTried = %d", v.BindingsTried)
	}
	if v.Truncated {
		t.Error("Truncated = true on a small search")
	}
}

func TestCheck_AdapterMissingDelegation(t *testing.T) {
	reg := builtin(t)

	fs := canonicalFacts()["adapter"]
	fs.Calls = nil

	v, err := Check(reg, "adapter", fs, Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if v.Pass {
		t.Fatal("Pass = true without the delegation edge")
	}
	// The best partial binding is still the intended one, with exactly
	// the delegation rule violated.
	want := map[string][]string{
		"Target":  {"Target"},
		"Adaptee": {"Adaptee"},
		"Adapter": {"Adapter"},
	}
	if !reflect.DeepEqual(v.Binding, want) {
		t.Errorf("Binding = %v, want %v", v.Binding, want)
	}
	if len(v.Violated) != 1 {
		t.Fatalf("Violated = %+v, want exactly one entry", v.Violated)
	}
	if got := v.Violated[0].Rule; got != "delegates-call-to(Adapter, Adaptee)" {
		t.Errorf("violated rule = %q", got)
	}
	if v.Violated[0].Reason == "" {
		t.Error("violated rule carries no reason")
	}
	if len(v.Satisfied) != 2 {
		t.Errorf("Satisfied = %+v, want two entries", v.Satisfied)
	}
}

func TestCheck_UnknownPattern(t *testing.T) {
	reg := builtin(t)
	_, err := Check(reg, "flyweight-singleton", factset.New("x"), Options{})
	if !errors.IsCode(err, errors.UnknownPattern) {
		t.Fatalf("err = %v, want UNKNOWN_PATTERN", err)
	}
}

func TestCheck_MalformedFacts(t *testing.T) {
	reg := builtin(t)
	fs := factset.New("bad")
	fs.AddType(&factset.TypeFact{Name: "A", Supertypes: []string{"A"}})
	_, err := Check(reg, "adapter", fs, Options{})
	if !errors.IsCode(err, errors.MalformedFactSet) {
		t.Fatalf("err = %v, want MALFORMED_FACTSET", err)
	}
}

func TestCheck_EmptyFactSet(t *testing.T) {
	reg := builtin(t)
	v, err := Check(reg, "adapter", factset.New("empty"), Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if v.Pass {
		t.Fatal("Pass = true on an empty fact set")
	}
	if v.BindingsTried != 0 {
		t.Errorf("BindingsTried = %d, want 0", v.BindingsTried)
	}
	if len(v.Violated) != 3 {
		t.Errorf("Violated = %+v, want all three rules", v.Violated)
	}
	if v.Binding != nil {
		t.Errorf("Binding = %v, want none", v.Binding)
	}
}

func TestCheck_CandidateExplosion(t *testing.T) {
	reg := builtin(t)
	fs := factset.New("huge")
	for i := 0; i < 150; i++ {
		fs.AddType(&factset.TypeFact{
			Name:    typeName(i),
			Members: []factset.Member{m("accept", 1, factset.ReturnNone)},
		})
	}

	// The candidate cap gates multiplicity-many roles: visitor's
	// ConcreteVisitor matches all 150 types.
	_, err := Check(reg, "visitor", fs, Options{})
	if !errors.IsCode(err, errors.CandidateExplosion) {
		t.Fatalf("err = %v, want CANDIDATE_EXPLOSION", err)
	}

	// One-multiplicity roles are never capped: the same crowd against
	// adapter is an ordinary fail verdict, truncated at the binding cap.
	v, err := Check(reg, "adapter", fs, Options{MaxBindings: 50})
	if err != nil {
		t.Fatalf("Check() on one-multiplicity roles error = %v", err)
	}
	if v.Pass {
		t.Error("Pass = true for unrelated types")
	}
	if !v.Truncated {
		t.Error("Truncated = false after hitting the binding cap")
	}
	if v.BindingsTried != 50 {
		t.Errorf("BindingsTried = %d, want 50", v.BindingsTried)
	}
}

func typeName(i int) string {
	name := "T"
	for _, d := range []int{100, 10, 1} {
		name += string(rune('A' + (i/d)%10))
	}
	return name
}

func TestCheck_Deterministic(t *testing.T) {
	reg := builtin(t)

	encode := func() []byte {
		fs := canonicalFacts()["decorator"]
		v, err := Check(reg, "decorator", fs, Options{})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		data, err := output.DeterministicEncode(v)
		if err != nil {
			t.Fatalf("DeterministicEncode() error = %v", err)
		}
		return data
	}

	first := encode()
	for i := 0; i < 3; i++ {
		if next := encode(); !bytes.Equal(first, next) {
			t.Fatalf("run %d produced different bytes:\n%s\nvs\n%s", i+2, first, next)
		}
	}
}

func TestCheck_RemovingUnreferencedTypeKeepsPass(t *testing.T) {
	reg := builtin(t)

	fs := canonicalFacts()["facade"]
	v, err := Check(reg, "facade", fs, Options{})
	if err != nil || !v.Pass {
		t.Fatalf("baseline facade: v = %+v, err = %v", v, err)
	}

	fs.RemoveType("BitrateReader")
	v, err = Check(reg, "facade", fs, Options{})
	if err != nil {
		t.Fatalf("Check() after removal error = %v", err)
	}
	if !v.Pass {
		t.Errorf("Pass = false after removing a type outside the winning binding: %+v", v.Violated)
	}
}
