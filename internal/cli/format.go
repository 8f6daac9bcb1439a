package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/vk/pzsh/internal/artifact"
	"github.com/vk/pzsh/internal/bench"
	"github.com/vk/pzsh/internal/lint"
)

// WriteDiagnostics prints lint findings one per line, with the suggested
// fix indented below when present.
func WriteDiagnostics(w io.Writer, diags []lint.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
		if d.Fix != "" {
			fmt.Fprintf(w, "    fix: %s\n", d.Fix)
		}
	}
}

// WriteVerdict prints a benchmark result annotated against its budget.
func WriteVerdict(w io.Writer, v bench.Verdict) {
	fmt.Fprintln(w, v.Result.String())
	state := "within"
	if !v.Within {
		state = "over"
	}
	fmt.Fprintf(w, "p95 %s is %s the %s budget\n", v.P95, state, v.Budget)
}

// WriteProfile prints a per-stage startup attribution.
func WriteProfile(w io.Writer, p bench.Profile) {
	fmt.Fprint(w, p.String())
}

// WriteStatus summarizes the most recent compiled artifact.
func WriteStatus(w io.Writer, a *artifact.Artifact, scriptPath string) {
	fmt.Fprintf(w, "fingerprint:   %s\n", a.Fingerprint)
	fmt.Fprintf(w, "compiled:      %s\n", a.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "aliases:       %d\n", len(a.Aliases))
	fmt.Fprintf(w, "env:           %d\n", len(a.Env))
	fmt.Fprintf(w, "features:      %d\n", len(a.Features))
	fmt.Fprintf(w, "budget:        %dms startup, %dms prompt\n", a.BudgetMS, a.PromptBudgetMS)
	fmt.Fprintf(w, "init script:   %s\n", scriptPath)
}
