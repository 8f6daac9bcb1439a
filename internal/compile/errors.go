package compile

import (
	"fmt"
	"strings"

	"github.com/vk/pzsh/internal/lint"
)

// LintError carries every diagnostic from a failed compile at once, so the
// user fixes the whole configuration in one pass instead of replaying the
// compiler finding-by-finding.
type LintError struct {
	Diagnostics []lint.Diagnostic
}

func (e *LintError) Error() string {
	errs, _ := lint.Split(e.Diagnostics)
	var b strings.Builder
	fmt.Fprintf(&b, "configuration has %d blocking problem(s):", len(errs))
	for _, d := range errs {
		b.WriteString("\n  " + d.String())
	}
	return b.String()
}
