package main

import (
	"fmt"
	"sort"
	"strings"

	"patcheck/internal/output"
	"patcheck/internal/verdict"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatVerdict renders a verdict according to the specified format.
func FormatVerdict(v *verdict.Verdict, format OutputFormat, indent bool) (string, error) {
	switch format {
	case FormatJSON:
		return formatVerdictJSON(v, indent)
	case FormatHuman:
		return formatVerdictHuman(v), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatVerdictJSON(v *verdict.Verdict, indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = output.DeterministicEncodeIndented(v, "  ")
	} else {
		data, err = output.DeterministicEncode(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal verdict: %w", err)
	}
	return string(data), nil
}

func formatVerdictHuman(v *verdict.Verdict) string {
	var b strings.Builder

	status := "FAIL"
	if v.Pass {
		status = "PASS"
	}
	fmt.Fprintf(&b, "%s  %s", status, v.Pattern)
	if v.Source != "" {
		fmt.Fprintf(&b, "  (%s)", v.Source)
	}
	b.WriteString("\n")

	if len(v.Binding) > 0 {
		b.WriteString("\nBinding:\n")
		roles := make([]string, 0, len(v.Binding))
		for role := range v.Binding {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			fmt.Fprintf(&b, "  %-20s -> %s\n", role, strings.Join(v.Binding[role], ", "))
		}
	}

	if len(v.Satisfied) > 0 {
		b.WriteString("\nSatisfied:\n")
		for _, r := range v.Satisfied {
			fmt.Fprintf(&b, "  + %s\n", r.Description)
		}
	}
	if len(v.Violated) > 0 {
		b.WriteString("\nViolated:\n")
		for _, r := range v.Violated {
			fmt.Fprintf(&b, "  - %s\n", r.Description)
			if r.Reason != "" {
				fmt.Fprintf(&b, "    %s\n", r.Reason)
			}
		}
	}

	fmt.Fprintf(&b, "\nBindings tried: %d", v.BindingsTried)
	if v.Truncated {
		b.WriteString(" (truncated)")
	}
	b.WriteString("\n")
	return b.String()
}
