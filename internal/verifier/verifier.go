// Package verifier checks one candidate binding against every
// relationship rule of its template. Rules are evaluated independently:
// an unbound role short-circuits only the rules that mention it, so a
// partial binding still yields informative diagnostics.
package verifier

import (
	"fmt"

	"patcheck/internal/binder"
	"patcheck/internal/factset"
	"patcheck/internal/pattern"
)

// RuleResult is the outcome of one relationship rule for one binding
type RuleResult struct {
	Rule      pattern.RelationshipRule
	Satisfied bool
	Reason    string // set when violated
}

// Evaluation is the verifier's output for one binding. Score counts
// satisfied rules; Complete means every rule held.
type Evaluation struct {
	Binding  binder.Binding
	Results  []RuleResult
	Score    int
	Complete bool
}

// Verify evaluates every rule of the template against the fact set for
// the given binding. Pure function over its inputs.
func Verify(fs *factset.FactSet, tpl *pattern.Template, b binder.Binding) Evaluation {
	eval := Evaluation{Binding: b}

	for _, rule := range tpl.Rules {
		result := checkRule(fs, rule, b)
		eval.Results = append(eval.Results, result)
		if result.Satisfied {
			eval.Score++
		}
	}
	eval.Complete = eval.Score == len(tpl.Rules)
	return eval
}

func checkRule(fs *factset.FactSet, rule pattern.RelationshipRule, b binder.Binding) RuleResult {
	result := RuleResult{Rule: rule}

	if !b.Bound(rule.From) {
		result.Reason = fmt.Sprintf("role %q is unbound", rule.From)
		return result
	}
	if !b.Bound(rule.To) {
		result.Reason = fmt.Sprintf("role %q is unbound", rule.To)
		return result
	}

	// A rule holds when every type bound to the From role has the
	// required edge to at least one type bound to the To role.
	for _, from := range b[rule.From] {
		if reason := checkEdge(fs, rule, from, b[rule.To]); reason != "" {
			result.Reason = reason
			return result
		}
	}

	result.Satisfied = true
	return result
}

func checkEdge(fs *factset.FactSet, rule pattern.RelationshipRule, from string, targets []string) string {
	switch rule.Kind {
	case pattern.InheritsFrom:
		closure := fs.SupertypeClosure(from)
		for _, to := range targets {
			if closure[to] {
				return ""
			}
		}
		return fmt.Sprintf("%s does not inherit from %s", from, nameList(targets))

	case pattern.ImplementsCapabilityOf:
		closure := fs.SupertypeClosure(from)
		for _, to := range targets {
			if closure[to] || coversMethods(fs, from, to) {
				return ""
			}
		}
		return fmt.Sprintf("%s does not implement the capability of %s", from, nameList(targets))

	case pattern.HoldsReferenceTo:
		tf := fs.Types[from]
		for _, to := range targets {
			if tf.HasReferenceTo(to) {
				return ""
			}
		}
		return fmt.Sprintf("%s holds no reference to %s", from, nameList(targets))

	case pattern.DelegatesCallTo:
		for _, to := range targets {
			for _, e := range fs.CallsBetween(from, to, factset.CallInvoke) {
				if inPosition(fs, e, rule.Order) {
					return ""
				}
			}
		}
		if rule.Order != pattern.OrderAny {
			return fmt.Sprintf("%s has no %s-position call into %s", from, rule.Order, nameList(targets))
		}
		return fmt.Sprintf("%s never calls into %s", from, nameList(targets))

	case pattern.Instantiates:
		for _, to := range targets {
			if len(fs.CallsBetween(from, to, factset.CallConstruct)) > 0 {
				return ""
			}
		}
		return fmt.Sprintf("%s never instantiates %s", from, nameList(targets))
	}

	return fmt.Sprintf("unknown rule kind %q", rule.Kind)
}

// coversMethods reports whether from structurally satisfies to: every
// public method of to has an arity/return-compatible public method on
// from. Name-blind, like role capability matching. Each method on from
// counts toward at most one requirement, so two same-shape requirements
// need two distinct counterparts.
func coversMethods(fs *factset.FactSet, from, to string) bool {
	fromTF, toTF := fs.Types[from], fs.Types[to]
	required := toTF.PublicMethods()
	if len(required) == 0 {
		return false
	}
	type shape struct {
		arity   int
		returns factset.ReturnCategory
	}
	have := make(map[shape]int)
	for _, m := range fromTF.PublicMethods() {
		have[shape{m.Arity, m.Returns}]++
	}
	for _, want := range required {
		k := shape{want.Arity, want.Returns}
		if have[k] == 0 {
			return false
		}
		have[k]--
	}
	return true
}

// inPosition checks an ordering constraint against the call sequence of
// the edge's caller member. Positions are relative: first or last among
// the member's recorded calls.
func inPosition(fs *factset.FactSet, e factset.CallEdge, order pattern.Order) bool {
	switch order {
	case pattern.OrderAny:
		return true
	case pattern.OrderFirst:
		return e.Seq == 0
	case pattern.OrderLast:
		calls := fs.CallsFrom(e.CallerType, e.CallerMember)
		return len(calls) > 0 && e.Seq == calls[len(calls)-1].Seq
	}
	return false
}

func nameList(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	out := "any of ["
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out + "]"
}
