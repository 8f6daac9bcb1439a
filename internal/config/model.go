package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Section identifies which part of the configuration an entry belongs to.
type Section string

const (
	SectionEnv   Section = "env"
	SectionAlias Section = "alias"
	SectionRaw   Section = "raw"
)

// Ref names a single configuration entry, e.g. env.EDITOR or alias.ll.
// Refs are the vocabulary of the resolver's reference graph and of
// diagnostic provenance.
type Ref struct {
	Section Section
	Name    string
}

func (r Ref) String() string {
	return string(r.Section) + "." + r.Name
}

// Entry is one key/value pair from the source document. Expr is the parsed
// value expression (evaluated only by the resolver); Raw is the verbatim
// source text of the value, which is what the lint engine scans. Span
// locates the entry for diagnostics.
type Entry struct {
	Ref  Ref
	Expr hcl.Expression
	Raw  string
	Span hcl.Range
}

// Performance holds the declared timing ceilings. The compiler records
// them in the artifact; it does not enforce them.
type Performance struct {
	StartupBudgetMS uint32
	PromptBudgetMS  uint32
}

// DefaultPerformance applies when the section is absent.
func DefaultPerformance() Performance {
	return Performance{StartupBudgetMS: 10, PromptBudgetMS: 2}
}

// Features lists the enabled and lazily loaded feature bundles, in
// declaration order.
type Features struct {
	Enabled []string
	Lazy    []string
}

// Prompt carries the prompt appearance settings. An empty Format defers to
// the theme's format string.
type Prompt struct {
	Format   string
	Theme    string
	GitTTLMS uint32
	Span     hcl.Range
}

// RawConfig is the deserialized source document. It is owned by a single
// compile invocation and never mutated after load.
type RawConfig struct {
	Path        string
	Env         []Entry
	Aliases     []Entry
	Raw         []Entry
	Performance Performance
	Features    Features
	Prompt      Prompt
}

// Entries returns every key/value entry in a stable order: environment,
// then aliases, then raw fragments, each in source order. Lint diagnostics
// follow this ordering.
func (c *RawConfig) Entries() []Entry {
	out := make([]Entry, 0, len(c.Env)+len(c.Aliases)+len(c.Raw))
	out = append(out, c.Env...)
	out = append(out, c.Aliases...)
	out = append(out, c.Raw...)
	return out
}
