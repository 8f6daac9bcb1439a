package lint

import (
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/pzsh/internal/config"
)

// Engine checks a RawConfig and reports diagnostics in source order. It
// never mutates the configuration and performs no I/O.
type Engine struct{}

// New creates a lint engine.
func New() *Engine {
	return &Engine{}
}

// Check scans every entry and the prompt format. A single line may yield
// several diagnostics when it trips several patterns.
func (e *Engine) Check(cfg *config.RawConfig) []Diagnostic {
	var diags []Diagnostic

	for _, entry := range cfg.Entries() {
		fragment := entry.Ref.Section == config.SectionRaw
		for i, line := range strings.Split(entry.Raw, "\n") {
			span := lineSpan(entry.Span, i)
			diags = append(diags, checkLine(line, span, fragment)...)
		}
	}

	diags = append(diags, checkPromptFormat(cfg.Prompt)...)
	return diags
}

// checkLine applies the pattern catalogue to one line of shell-ish text.
// Comment lines are skipped entirely.
func checkLine(line string, span hcl.Range, fragment bool) []Diagnostic {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return nil
	}

	var diags []Diagnostic
	add := func(kind Kind, sev Severity, msg, fix string) {
		diags = append(diags, Diagnostic{Kind: kind, Severity: sev, Span: span, Message: msg, Fix: fix})
	}

	if hasCommandSubstitution(line) {
		add(KindSubprocessSubstitution, SeverityError,
			"subprocess substitution $() is not allowed at startup",
			"run the command once and paste the resolved value")
	}
	if strings.Contains(line, "`") {
		add(KindSubprocessSubstitution, SeverityError,
			"backtick substitution is not allowed at startup",
			"run the command once and paste the resolved value")
	}
	if strings.Contains(line, "eval ") {
		add(KindEvalUsage, SeverityError,
			"eval is not allowed: it defeats static analysis and is a safety risk", "")
	}
	if strings.Contains(line, "brew --prefix") {
		add(KindSlowFrameworkSource, SeverityError,
			"brew --prefix spawns a subprocess and takes 50-100ms",
			"run `brew --prefix <formula>` once and hardcode the path")
	}
	if strings.Contains(line, "oh-my-zsh") {
		add(KindSlowFrameworkSource, SeverityError,
			"sourcing oh-my-zsh costs 500-2000ms at startup",
			"enable the equivalent pzsh feature bundle instead")
	}
	if strings.Contains(line, "nvm.sh") {
		add(KindSlowFrameworkSource, SeverityWarning,
			"sourcing nvm.sh adds 200-500ms to startup",
			"use fnm or volta, or lazy-load nvm")
	}
	if strings.Contains(line, "conda init") || strings.Contains(line, "conda.sh") {
		add(KindSlowFrameworkSource, SeverityWarning,
			"conda initialization adds 200-400ms to startup",
			"lazy-load conda")
	}
	if strings.Contains(line, "sdkman-init.sh") {
		add(KindSlowFrameworkSource, SeverityWarning,
			"sourcing sdkman adds 100-300ms to startup",
			"lazy-load sdkman")
	}
	if isUnboundedLoop(line) {
		add(KindUnboundedLoop, SeverityError,
			"loop over a dynamic or glob-produced list has unbounded startup cost",
			"enumerate the entries statically")
	}
	if fragment && hasUnquotedExpansion(line) {
		add(KindUnquotedExpansion, SeverityWarning,
			"unquoted variable expansion is subject to word splitting", "")
	}

	return diags
}

// checkPromptFormat flags inline status queries embedded in the prompt
// format string: those run synchronously on every prompt draw.
func checkPromptFormat(p config.Prompt) []Diagnostic {
	var diags []Diagnostic
	for _, marker := range []string{"$(git", "git status", "$(hg", "$(svn"} {
		if strings.Contains(p.Format, marker) {
			diags = append(diags, Diagnostic{
				Kind:     KindSyncStatusQuery,
				Severity: SeverityError,
				Span:     p.Span,
				Message:  "inline version-control status in the prompt format blocks every prompt draw",
				Fix:      "use the {git} segment, which is cached and refreshed asynchronously",
			})
		}
	}
	return diags
}

// hasCommandSubstitution detects $( while excluding $(( arithmetic, which is
// evaluated in-shell without spawning.
func hasCommandSubstitution(line string) bool {
	for i := 0; i+1 < len(line); i++ {
		if line[i] == '$' && line[i+1] == '(' {
			if i+2 < len(line) && line[i+2] == '(' {
				i += 2
				continue
			}
			return true
		}
	}
	return false
}

// isUnboundedLoop matches for/while loops whose iteration source is dynamic:
// a substitution, a glob, or a wildcard path.
func isUnboundedLoop(line string) bool {
	trimmed := strings.TrimSpace(line)
	isFor := strings.HasPrefix(trimmed, "for ") && strings.Contains(trimmed, " in ")
	isWhile := strings.HasPrefix(trimmed, "while ")
	if !isFor && !isWhile {
		return false
	}
	if isWhile {
		return strings.Contains(trimmed, "read ")
	}
	_, src, _ := strings.Cut(trimmed, " in ")
	return strings.Contains(src, "$(") || strings.Contains(src, "`") || strings.Contains(src, "*")
}

// hasUnquotedExpansion reports a $NAME expansion outside quotes. Only raw
// fragments are checked: key/value entries are quoted by the source format.
func hasUnquotedExpansion(line string) bool {
	inSingle, inDouble := false, false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '$' && !inSingle && !inDouble:
			if i+1 < len(line) && (isNameByte(line[i+1]) || line[i+1] == '{') {
				return true
			}
		}
	}
	return false
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lineSpan derives a per-line range inside a (possibly multi-line) entry.
func lineSpan(base hcl.Range, lineOffset int) hcl.Range {
	r := base
	r.Start.Line += lineOffset
	if lineOffset > 0 {
		r.Start.Column = 1
	}
	r.End = r.Start
	return r
}
