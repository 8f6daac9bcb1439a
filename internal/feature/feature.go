// Package feature holds the built-in feature bundles: curated sets of
// aliases, environment variables, and shell functions that a configuration
// can enable by name. The set is closed and known at compile time, so the
// compiler can merge bundles without any dynamic discovery.
package feature

import "sort"

// Bundle is one enableable feature. Everything in it is a pre-resolved
// literal; bundles contribute no startup-time computation.
type Bundle struct {
	Name        string
	Description string
	Aliases     map[string]string
	Env         map[string]string
	// Functions maps a zsh function name to its body (without the
	// surrounding "name() { }" wrapper).
	Functions map[string]string
	// LazyStub, when the feature is listed lazy, replaces the full
	// definitions with a stub that loads them on first use.
	LazyStub string
}

var bundles = map[string]Bundle{
	"git": {
		Name:        "git",
		Description: "git aliases and helpers",
		Aliases: map[string]string{
			"g":    "git",
			"ga":   "git add",
			"gc":   "git commit -v",
			"gco":  "git checkout",
			"gd":   "git diff",
			"gl":   "git pull",
			"gp":   "git push",
			"gs":   "git status -sb",
			"glog": "git log --oneline --graph --decorate",
		},
		Functions: map[string]string{
			"gbda": `git branch --merged | command grep -vE '^(\*|\s*(main|master)\s*$)' | command xargs git branch -d 2>/dev/null`,
		},
	},
	"docker": {
		Name:        "docker",
		Description: "docker aliases",
		Aliases: map[string]string{
			"d":     "docker",
			"dps":   "docker ps",
			"dpa":   "docker ps -a",
			"di":    "docker images",
			"dlog":  "docker logs -f",
			"dstop": "docker stop",
			"dcu":   "docker compose up -d",
			"dcd":   "docker compose down",
		},
		Env: map[string]string{
			"DOCKER_BUILDKIT": "1",
		},
		LazyStub: `docker() { unfunction docker; command docker "$@" }`,
	},
}

// Lookup returns the bundle registered under name.
func Lookup(name string) (Bundle, bool) {
	b, ok := bundles[name]
	return b, ok
}

// Names lists all registered bundles in sorted order.
func Names() []string {
	out := make([]string, 0, len(bundles))
	for name := range bundles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
