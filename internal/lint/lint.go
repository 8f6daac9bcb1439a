// Package lint statically scans a loaded configuration for constructs known
// to cause unbounded or unpredictable startup latency. Detection is pure
// pattern matching over the entry source text: nothing is ever executed.
package lint

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Kind classifies a diagnostic. The set is closed; the compiler's blocking
// policy depends only on Severity, never on Kind.
type Kind int

const (
	KindSubprocessSubstitution Kind = iota
	KindUnboundedLoop
	KindSlowFrameworkSource
	KindSyncStatusQuery
	KindUnquotedExpansion
	KindEvalUsage
)

func (k Kind) String() string {
	switch k {
	case KindSubprocessSubstitution:
		return "subprocess-substitution-at-startup"
	case KindUnboundedLoop:
		return "unbounded-loop-over-dynamic-list"
	case KindSlowFrameworkSource:
		return "known-slow-framework-source"
	case KindSyncStatusQuery:
		return "synchronous-blocking-status-query"
	case KindUnquotedExpansion:
		return "unquoted-expansion"
	case KindEvalUsage:
		return "eval-usage"
	default:
		return "unknown"
	}
}

// Severity determines whether a diagnostic blocks compilation.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic reports one offending construct. Fix, when non-empty, is a
// suggested replacement the user can apply.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     hcl.Range
	Message  string
	Fix      string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s:%d: %s (%s)",
		d.Severity, d.Span.Filename, d.Span.Start.Line, d.Message, d.Kind)
}

// HasErrors reports whether any diagnostic in the list is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Split partitions diagnostics into blocking errors and the rest.
func Split(diags []Diagnostic) (errors, rest []Diagnostic) {
	for _, d := range diags {
		if d.Severity == SeverityError {
			errors = append(errors, d)
		} else {
			rest = append(rest, d)
		}
	}
	return errors, rest
}
