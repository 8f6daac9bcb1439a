// Package resolve eagerly evaluates every configuration value that would
// otherwise require deferred computation, producing final literal strings at
// compile time. Variable references between entries (and to an allowlisted
// snapshot of the host environment) are expanded recursively with cycle
// detection; subprocess substitution is never evaluated.
package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/ctxlog"
)

// ResolvedValue is a final literal string plus the entry it came from. It
// never contains an unresolved reference or a substitution marker.
type ResolvedValue struct {
	Text   string
	Origin config.Ref
}

// CycleError reports a reference cycle, listing every participant in order
// with the first entry repeated at the end.
type CycleError struct {
	Path []config.Ref
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, r := range e.Path {
		parts[i] = r.String()
	}
	return "reference cycle: " + strings.Join(parts, " -> ")
}

// UnresolvedError reports a reference that cannot be determined without
// violating the no-dynamic-evaluation rule.
type UnresolvedError struct {
	Ref    config.Ref
	Target string
	Span   hcl.Range
	Reason string
}

func (e *UnresolvedError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: unresolved reference to %s: %s", e.Ref, e.Target, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Ref, e.Reason)
}

// hostAllowlist is the set of OS environment variables a configuration may
// reference via host.NAME. The values are snapshotted once, at resolver
// construction, so resolution stays reproducible within a compile.
var hostAllowlist = []string{
	"HOME", "USER", "LOGNAME", "SHELL", "PATH", "HOSTNAME", "TERM", "LANG",
	"TMPDIR", "XDG_CONFIG_HOME", "XDG_CACHE_HOME", "XDG_DATA_HOME",
}

// Resolver expands configuration entries to literals. It is not safe for
// concurrent use; the compiler runs it single-threaded.
type Resolver struct {
	host  map[string]cty.Value
	calls int
}

// New snapshots the allowlisted host environment and returns a resolver.
func New() *Resolver {
	host := make(map[string]string)
	for _, name := range hostAllowlist {
		if v, ok := os.LookupEnv(name); ok {
			host[name] = v
		}
	}
	return NewWithHost(host)
}

// NewWithHost builds a resolver over an explicit host snapshot. Tests use
// this to make resolution hermetic.
func NewWithHost(host map[string]string) *Resolver {
	vals := make(map[string]cty.Value, len(host))
	for k, v := range host {
		vals[k] = cty.StringVal(v)
	}
	return &Resolver{host: vals}
}

// Calls reports how many times ResolveAll has run. The compiler's
// idempotence tests observe this counter.
func (r *Resolver) Calls() int {
	return r.calls
}

// ResolveAll resolves every env and alias entry, in dependency order, and
// returns the complete literal mapping. Raw fragments are literal by
// construction and pass through untouched elsewhere.
func (r *Resolver) ResolveAll(ctx context.Context, cfg *config.RawConfig) (map[config.Ref]ResolvedValue, error) {
	r.calls++
	logger := ctxlog.FromContext(ctx)

	entries := make(map[string]config.Entry)
	graph := newRefGraph()
	ordered := append(append([]config.Entry{}, cfg.Env...), cfg.Aliases...)
	for _, e := range ordered {
		entries[e.Ref.String()] = e
		graph.addNode(e.Ref.String())
	}

	// Wire reference edges and reject anything outside the env/alias/host
	// namespaces before any evaluation happens.
	for _, e := range ordered {
		for _, trav := range e.Expr.Variables() {
			dep, err := r.classify(e, trav, entries)
			if err != nil {
				return nil, err
			}
			if dep != "" {
				graph.addDep(e.Ref.String(), dep)
			}
		}
	}

	order, cycle := graph.sortTopological()
	if cycle != nil {
		return nil, &CycleError{Path: refsOf(cycle, entries)}
	}

	resolved := make(map[config.Ref]ResolvedValue, len(ordered))
	envVals := make(map[string]cty.Value)
	aliasVals := make(map[string]cty.Value)

	for _, id := range order {
		e := entries[id]
		evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
			"env":   objectVal(envVals),
			"alias": objectVal(aliasVals),
			"host":  objectVal(r.host),
		}}

		val, diags := e.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, &UnresolvedError{Ref: e.Ref, Span: e.Span, Reason: diags.Error()}
		}
		text, err := stringify(val)
		if err != nil {
			return nil, &UnresolvedError{Ref: e.Ref, Span: e.Span, Reason: err.Error()}
		}
		// Lint rejects these upstream; the resolver still refuses rather
		// than letting a substitution marker survive into the artifact.
		if strings.Contains(text, "$(") || strings.Contains(text, "`") {
			return nil, &UnresolvedError{
				Ref: e.Ref, Span: e.Span,
				Reason: "subprocess substitution cannot be resolved at compile time",
			}
		}

		resolved[e.Ref] = ResolvedValue{Text: text, Origin: e.Ref}
		switch e.Ref.Section {
		case config.SectionEnv:
			envVals[e.Ref.Name] = cty.StringVal(text)
		case config.SectionAlias:
			aliasVals[e.Ref.Name] = cty.StringVal(text)
		}
	}

	logger.Debug("Resolution complete.", "entries", len(resolved))
	return resolved, nil
}

// classify maps one traversal to its dependency node id ("" for host
// references, which are not graph nodes) or fails it as unresolvable.
func (r *Resolver) classify(e config.Entry, trav hcl.Traversal, entries map[string]config.Entry) (string, error) {
	root := trav.RootName()
	name, ok := traversalAttr(trav)

	switch root {
	case "env", "alias":
		if !ok {
			return "", &UnresolvedError{
				Ref: e.Ref, Target: root, Span: e.Span,
				Reason: "reference must name an entry, e.g. env.NAME",
			}
		}
		dep := config.Ref{Section: config.Section(root), Name: name}
		if _, exists := entries[dep.String()]; !exists {
			return "", &UnresolvedError{
				Ref: e.Ref, Target: dep.String(), Span: e.Span,
				Reason: "no such entry",
			}
		}
		return dep.String(), nil
	case "host":
		if !ok {
			return "", &UnresolvedError{
				Ref: e.Ref, Target: root, Span: e.Span,
				Reason: "reference must name a variable, e.g. host.HOME",
			}
		}
		if _, exists := r.host[name]; !exists {
			return "", &UnresolvedError{
				Ref: e.Ref, Target: "host." + name, Span: e.Span,
				Reason: "not in the trusted host variable allowlist or unset",
			}
		}
		return "", nil
	default:
		return "", &UnresolvedError{
			Ref: e.Ref, Target: root, Span: e.Span,
			Reason: "unknown namespace; only env, alias, and host may be referenced",
		}
	}
}

func traversalAttr(trav hcl.Traversal) (string, bool) {
	if len(trav) < 2 {
		return "", false
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

func stringify(val cty.Value) (string, error) {
	conv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	if conv.IsNull() {
		return "", fmt.Errorf("value is null")
	}
	return conv.AsString(), nil
}

func objectVal(vals map[string]cty.Value) cty.Value {
	if len(vals) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vals)
}

func refsOf(ids []string, entries map[string]config.Entry) []config.Ref {
	refs := make([]config.Ref, len(ids))
	for i, id := range ids {
		refs[i] = entries[id].Ref
	}
	return refs
}
