// Package verdict turns a binding enumeration into one pass/fail verdict.
// Bindings are verified lazily in the binder's deterministic order: the
// first complete binding passes; otherwise the highest-scoring binding
// seen becomes the closest candidate and its violations become the
// diagnostics.
package verdict

import (
	"fmt"

	"patcheck/internal/binder"
	"patcheck/internal/factset"
	"patcheck/internal/pattern"
	"patcheck/internal/verifier"
)

// DefaultMaxBindings caps how many candidate bindings one check verifies
// before reporting a truncated result.
const DefaultMaxBindings = 10000

// Options configures one check
type Options struct {
	Binder      binder.Options
	MaxBindings int
}

func (o Options) withDefaults() Options {
	if o.MaxBindings <= 0 {
		o.MaxBindings = DefaultMaxBindings
	}
	return o
}

// RuleReport names one relationship rule and how it fared
type RuleReport struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
	Reason      string `json:"reason,omitempty"`
}

// Verdict is the result of checking one (pattern, fact set) pair.
// Immutable once returned; identical inputs produce byte-identical
// serializations.
type Verdict struct {
	Pattern       string              `json:"pattern"`
	Source        string              `json:"source,omitempty"`
	FactDigest    string              `json:"factDigest,omitempty"`
	Pass          bool                `json:"pass"`
	Binding       map[string][]string `json:"binding,omitempty"`
	Satisfied     []RuleReport        `json:"satisfied,omitempty"`
	Violated      []RuleReport        `json:"violated,omitempty"`
	BindingsTried int                 `json:"bindingsTried"`
	Truncated     bool                `json:"truncated,omitempty"`
}

// Check verifies one fact set against one registered pattern. Errors are
// scoped to this check: UnknownPattern for an unregistered name,
// MalformedFactSet for invalid facts, CandidateExplosion when a role
// exceeds the candidate cap.
func Check(reg *pattern.Registry, name string, fs *factset.FactSet, opts Options) (*Verdict, error) {
	opts = opts.withDefaults()

	tpl, err := reg.Get(name)
	if err != nil {
		return nil, err
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	enum, err := binder.Enumerate(tpl, fs, opts.Binder)
	if err != nil {
		return nil, err
	}

	var (
		best     *verifier.Evaluation
		tried    int
		truncate bool
	)
	for {
		if tried >= opts.MaxBindings {
			truncate = true
			break
		}
		b, ok := enum.Next()
		if !ok {
			break
		}
		tried++

		eval := verifier.Verify(fs, tpl, b)
		if eval.Complete {
			return buildVerdict(tpl, fs, &eval, tried, truncate), nil
		}
		if best == nil || eval.Score > best.Score {
			copied := eval
			best = &copied
		}
	}

	if best == nil {
		// Nothing bindable at all; report every rule against the empty
		// binding so diagnostics name the missing roles.
		empty := verifier.Verify(fs, tpl, binder.Binding{})
		best = &empty
	}
	return buildVerdict(tpl, fs, best, tried, truncate), nil
}

func buildVerdict(tpl *pattern.Template, fs *factset.FactSet, eval *verifier.Evaluation, tried int, truncated bool) *Verdict {
	v := &Verdict{
		Pattern:       tpl.Name,
		Source:        fs.Source,
		FactDigest:    fs.Digest(),
		Pass:          eval.Complete,
		BindingsTried: tried,
		Truncated:     truncated,
	}
	if len(eval.Binding) > 0 {
		v.Binding = eval.Binding
	}
	for _, res := range eval.Results {
		report := RuleReport{
			Rule:        ruleID(res.Rule),
			Description: describeRule(res.Rule),
			Reason:      res.Reason,
		}
		if res.Satisfied {
			v.Satisfied = append(v.Satisfied, report)
		} else {
			v.Violated = append(v.Violated, report)
		}
	}
	return v
}

func ruleID(rule pattern.RelationshipRule) string {
	return fmt.Sprintf("%s(%s, %s)", rule.Kind, rule.From, rule.To)
}

// describeRule renders the static human-readable phrasing for a rule.
// The table is configuration, not computed state: role names slot into a
// fixed sentence per rule kind.
func describeRule(rule pattern.RelationshipRule) string {
	var sentence string
	switch rule.Kind {
	case pattern.InheritsFrom:
		sentence = fmt.Sprintf("%s must inherit from %s", rule.From, rule.To)
	case pattern.ImplementsCapabilityOf:
		sentence = fmt.Sprintf("%s must implement the capability of %s", rule.From, rule.To)
	case pattern.HoldsReferenceTo:
		sentence = fmt.Sprintf("%s must hold a reference to %s", rule.From, rule.To)
	case pattern.DelegatesCallTo:
		sentence = fmt.Sprintf("%s must delegate a call to %s", rule.From, rule.To)
	case pattern.Instantiates:
		sentence = fmt.Sprintf("%s must instantiate %s", rule.From, rule.To)
	default:
		sentence = fmt.Sprintf("%s must relate to %s", rule.From, rule.To)
	}
	switch rule.Order {
	case pattern.OrderFirst:
		sentence += " as its first call"
	case pattern.OrderLast:
		sentence += " as its last call"
	}
	return sentence
}
