// Package zshgen emits the self-contained initialization script embedded in
// a compiled artifact. Everything in the script is a pre-resolved literal;
// output ordering is fully deterministic so identical inputs produce
// byte-identical scripts.
package zshgen

import (
	"sort"
	"strings"
)

// Input is the resolved material the script is generated from.
type Input struct {
	Fingerprint string
	Env         map[string]string
	Aliases     map[string]string
	Functions   map[string]string
	Features    []string
	LazyStubs   map[string]string
	Completions []Completion
	// Raw fragments pass through verbatim, in declaration order. They were
	// linted at compile time; generation does not inspect them.
	Raw         []string
	Autosuggest bool
}

// Completion describes one command's static subcommand completion.
type Completion struct {
	Command     string
	Subcommands []string
}

// Generate renders the init script.
func Generate(in Input) string {
	var b strings.Builder
	b.Grow(1024)

	b.WriteString("# Generated by pzsh. Do not edit: changes are overwritten on recompile.\n")
	b.WriteString("# fingerprint: " + in.Fingerprint + "\n")
	if len(in.Features) > 0 {
		b.WriteString("# features: " + strings.Join(in.Features, ", ") + "\n")
	}
	b.WriteString("\n")

	if len(in.Env) > 0 {
		b.WriteString("# environment\n")
		for _, key := range sortedKeys(in.Env) {
			b.WriteString("export " + key + "=" + quote(in.Env[key]) + "\n")
		}
		b.WriteString("\n")
	}

	if len(in.Aliases) > 0 {
		b.WriteString("# aliases\n")
		for _, name := range sortedKeys(in.Aliases) {
			b.WriteString("alias " + name + "=" + quote(in.Aliases[name]) + "\n")
		}
		b.WriteString("\n")
	}

	if len(in.Functions) > 0 {
		b.WriteString("# functions\n")
		for _, name := range sortedKeys(in.Functions) {
			b.WriteString(name + "() {\n")
			for _, line := range strings.Split(strings.TrimRight(in.Functions[name], "\n"), "\n") {
				b.WriteString("  " + line + "\n")
			}
			b.WriteString("}\n")
		}
		b.WriteString("\n")
	}

	if len(in.LazyStubs) > 0 {
		b.WriteString("# lazy-loaded features\n")
		for _, name := range sortedKeys(in.LazyStubs) {
			b.WriteString(in.LazyStubs[name] + "\n")
		}
		b.WriteString("\n")
	}

	for _, c := range in.Completions {
		writeCompletion(&b, c)
	}

	if len(in.Raw) > 0 {
		b.WriteString("# user fragments\n")
		for _, fragment := range in.Raw {
			b.WriteString(strings.TrimRight(fragment, "\n") + "\n")
		}
		b.WriteString("\n")
	}

	if in.Autosuggest {
		b.WriteString(autosuggestWidget)
	}

	return b.String()
}

// writeCompletion emits a compdef function completing a command's
// subcommands.
func writeCompletion(b *strings.Builder, c Completion) {
	b.WriteString("# completion: " + c.Command + "\n")
	b.WriteString("_pzsh_" + c.Command + "() {\n")
	b.WriteString("  local -a subcommands\n")
	b.WriteString("  subcommands=(" + strings.Join(c.Subcommands, " ") + ")\n")
	b.WriteString("  _describe 'command' subcommands\n")
	b.WriteString("}\n")
	b.WriteString("compdef _pzsh_" + c.Command + " " + c.Command + "\n\n")
}

// quote wraps a value in double quotes, escaping the characters zsh would
// otherwise interpret.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\', '$', '`':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// autosuggestWidget is the history-based suggestion widget. It runs per
// keystroke, after startup, so it is outside the startup budget.
const autosuggestWidget = `# autosuggestions
typeset -g PZSH_AUTOSUGGEST_HIGHLIGHT_STYLE='fg=8'

_pzsh_autosuggest() {
    local suggestion
    suggestion=$(fc -ln -1000 | grep -m1 "^${BUFFER}")

    if [[ -n "$suggestion" && "$suggestion" != "$BUFFER" ]]; then
        local postfix="${suggestion#$BUFFER}"
        POSTDISPLAY="$postfix"
        region_highlight=("${#BUFFER} $((${#BUFFER} + ${#postfix})) $PZSH_AUTOSUGGEST_HIGHLIGHT_STYLE")
    else
        POSTDISPLAY=""
        region_highlight=()
    fi
}

_pzsh_autosuggest_accept() {
    if [[ -n "$POSTDISPLAY" ]]; then
        BUFFER="$BUFFER$POSTDISPLAY"
        CURSOR=${#BUFFER}
        POSTDISPLAY=""
    fi
    zle redisplay
}

_pzsh_autosuggest_clear() {
    POSTDISPLAY=""
    region_highlight=()
    zle redisplay
}

zle -N _pzsh_autosuggest
zle -N _pzsh_autosuggest_accept
zle -N _pzsh_autosuggest_clear

autoload -Uz add-zle-hook-widget
add-zle-hook-widget line-pre-redraw _pzsh_autosuggest

bindkey '^[[C' _pzsh_autosuggest_accept
bindkey '^ ' _pzsh_autosuggest_accept
`

// FeatureCompletions returns the static completion tables for the features
// that ship one.
func FeatureCompletions(features []string) []Completion {
	var out []Completion
	for _, f := range features {
		switch f {
		case "git":
			out = append(out, Completion{Command: "git", Subcommands: []string{
				"add", "branch", "checkout", "clone", "commit", "diff", "fetch",
				"init", "log", "merge", "pull", "push", "rebase", "reset",
				"restore", "stash", "status", "switch", "tag",
			}})
		case "docker":
			out = append(out, Completion{Command: "docker", Subcommands: []string{
				"build", "compose", "exec", "images", "logs", "ps", "pull",
				"push", "rm", "rmi", "run", "start", "stop", "volume",
			}})
		}
	}
	return out
}
