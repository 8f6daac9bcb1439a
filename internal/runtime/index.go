// Package runtime provides the in-session lookup index built once from a
// compiled artifact. After Build returns, the index is read-only and safe
// for any number of concurrent readers; a configuration change requires a
// recompile, never a mutation.
package runtime

import (
	"github.com/vk/pzsh/internal/artifact"
)

// Index is the O(1) lookup structure over a compiled artifact. Lookups
// perform no I/O and allocate at most the returned value.
type Index struct {
	aliases   map[string]string
	env       map[string]string
	functions map[string]string
	features  map[string]struct{}

	fingerprint string
	budgetMS    uint32
}

// Build constructs the index. This is the only place the maps are written;
// cost is one pass over the artifact.
func Build(a *artifact.Artifact) *Index {
	idx := &Index{
		aliases:     make(map[string]string, len(a.Aliases)),
		env:         make(map[string]string, len(a.Env)),
		functions:   make(map[string]string, len(a.Functions)),
		features:    make(map[string]struct{}, len(a.Features)),
		fingerprint: a.Fingerprint,
		budgetMS:    a.BudgetMS,
	}
	for k, v := range a.Aliases {
		idx.aliases[k] = v
	}
	for k, v := range a.Env {
		idx.env[k] = v
	}
	for k, v := range a.Functions {
		idx.functions[k] = v
	}
	for _, f := range a.Features {
		idx.features[f] = struct{}{}
	}
	return idx
}

// LookupAlias returns the expansion for name. A missing alias is a normal
// state, not an error.
func (ix *Index) LookupAlias(name string) (string, bool) {
	v, ok := ix.aliases[name]
	return v, ok
}

// LookupEnv returns the value of the environment entry name.
func (ix *Index) LookupEnv(name string) (string, bool) {
	v, ok := ix.env[name]
	return v, ok
}

// LookupFunction returns the body of the shell function name.
func (ix *Index) LookupFunction(name string) (string, bool) {
	v, ok := ix.functions[name]
	return v, ok
}

// IsFeatureEnabled reports whether the feature id was enabled at compile
// time.
func (ix *Index) IsFeatureEnabled(id string) bool {
	_, ok := ix.features[id]
	return ok
}

// Fingerprint identifies the artifact this index was built from.
func (ix *Index) Fingerprint() string { return ix.fingerprint }

// BudgetMS is the declared startup ceiling recorded in the artifact.
func (ix *Index) BudgetMS() uint32 { return ix.budgetMS }

// Counts reports the number of aliases, environment entries, and features,
// for status output.
func (ix *Index) Counts() (aliases, env, features int) {
	return len(ix.aliases), len(ix.env), len(ix.features)
}
