// Package compile turns a loaded configuration into a fingerprinted,
// pre-resolved artifact: lint, resolve, merge feature bundles, generate the
// init script, persist. Compilation is deliberately allowed to be slow; it
// runs out-of-band so shell startup only ever loads the result.
package compile

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/pzsh/internal/artifact"
	"github.com/vk/pzsh/internal/clock"
	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/ctxlog"
	"github.com/vk/pzsh/internal/feature"
	"github.com/vk/pzsh/internal/lint"
	"github.com/vk/pzsh/internal/prompt"
	"github.com/vk/pzsh/internal/resolve"
	"github.com/vk/pzsh/internal/theme"
	"github.com/vk/pzsh/internal/zshgen"
)

// defaultGitTTLMS applies when prompt.git_ttl_ms is absent.
const defaultGitTTLMS = 1000

// Result is one compile outcome. Warnings are the non-blocking lint
// findings; Notes are compile-level advisories (unknown feature, theme
// fallback). A cached result skipped lint and resolution entirely.
type Result struct {
	Artifact *artifact.Artifact
	Warnings []lint.Diagnostic
	Notes    []string
	Cached   bool
}

// Compiler drives the full pipeline. Not safe for concurrent use.
type Compiler struct {
	store    *artifact.Store
	linter   *lint.Engine
	resolver *resolve.Resolver
	clk      clock.Clock
}

// New builds a compiler over the given store and resolver.
func New(store *artifact.Store, resolver *resolve.Resolver) *Compiler {
	return &Compiler{
		store:    store,
		linter:   lint.New(),
		resolver: resolver,
		clk:      clock.System(),
	}
}

// Resolver exposes the compiler's resolver, mainly so callers can observe
// its invocation counter.
func (c *Compiler) Resolver() *resolve.Resolver { return c.resolver }

// Compile runs the pipeline over cfg. An unchanged configuration returns
// the stored artifact without re-linting or re-resolving; a configuration
// with any error-severity lint finding returns *LintError and produces no
// artifact.
func (c *Compiler) Compile(ctx context.Context, cfg *config.RawConfig) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	canonical := canonicalize(cfg)
	sourceHash := artifact.HashBytes(canonical)

	if cached, ok, err := c.store.Load(sourceHash); err != nil {
		return nil, err
	} else if ok {
		logger.Debug("Source unchanged, reusing stored artifact.",
			"source_hash", sourceHash, "fingerprint", cached.Fingerprint)
		return &Result{Artifact: cached, Cached: true}, nil
	}

	diags := c.linter.Check(cfg)
	if lint.HasErrors(diags) {
		return nil, &LintError{Diagnostics: diags}
	}
	_, warnings := lint.Split(diags)

	resolved, err := c.resolver.ResolveAll(ctx, cfg)
	if err != nil {
		return nil, err
	}

	merged, notes := mergeFeatures(cfg, resolved)

	promptFormat, promptTheme, themeNote := choosePrompt(cfg)
	if themeNote != "" {
		notes = append(notes, themeNote)
	}
	gitTTL := cfg.Prompt.GitTTLMS
	if gitTTL == 0 {
		gitTTL = defaultGitTTLMS
	}

	a := &artifact.Artifact{
		SourceHash:     sourceHash,
		Aliases:        merged.aliases,
		Env:            merged.env,
		Features:       merged.features,
		Functions:      merged.functions,
		PromptSpec:     prompt.ParseFormat(promptFormat),
		PromptTheme:    promptTheme,
		GitTTLMS:       gitTTL,
		BudgetMS:       cfg.Performance.StartupBudgetMS,
		PromptBudgetMS: cfg.Performance.PromptBudgetMS,
		CreatedAt:      c.clk.Now().UTC().Truncate(time.Second),
	}
	a.Fingerprint = artifact.HashBytes(fingerprintInput(canonical, resolved))

	a.Script = zshgen.Generate(zshgen.Input{
		Fingerprint: a.Fingerprint,
		Env:         a.Env,
		Aliases:     a.Aliases,
		Functions:   a.Functions,
		Features:    a.Features,
		LazyStubs:   merged.lazyStubs,
		Completions: zshgen.FeatureCompletions(a.Features),
		Raw:         rawFragments(cfg),
		Autosuggest: true,
	})

	if err := c.store.Save(a); err != nil {
		return nil, err
	}
	logger.Info("Compiled configuration.",
		"fingerprint", a.Fingerprint,
		"aliases", len(a.Aliases), "env", len(a.Env), "features", len(a.Features))

	return &Result{Artifact: a, Warnings: warnings, Notes: notes}, nil
}

// merged is the combined definition set after feature bundles and the
// user's own entries are layered together.
type merged struct {
	aliases   map[string]string
	env       map[string]string
	functions map[string]string
	lazyStubs map[string]string
	features  []string
}

// mergeFeatures layers enabled bundles under the user's resolved entries;
// on a name collision the configuration wins. Lazily loaded bundles
// contribute only their stub. Unknown feature names are advisory: the name
// is still recorded as enabled so the runtime answers IsFeatureEnabled
// faithfully.
func mergeFeatures(cfg *config.RawConfig, resolved map[config.Ref]resolve.ResolvedValue) (merged, []string) {
	m := merged{
		aliases:   map[string]string{},
		env:       map[string]string{},
		functions: map[string]string{},
		lazyStubs: map[string]string{},
	}
	var notes []string

	for _, name := range cfg.Features.Enabled {
		b, ok := feature.Lookup(name)
		if !ok {
			notes = append(notes, fmt.Sprintf("unknown feature %q (no built-in bundle)", name))
			m.features = append(m.features, name)
			continue
		}
		for k, v := range b.Aliases {
			m.aliases[k] = v
		}
		for k, v := range b.Env {
			m.env[k] = v
		}
		for k, v := range b.Functions {
			m.functions[k] = v
		}
		m.features = append(m.features, name)
	}

	for _, name := range cfg.Features.Lazy {
		b, ok := feature.Lookup(name)
		if !ok {
			notes = append(notes, fmt.Sprintf("unknown lazy feature %q (no built-in bundle)", name))
			m.features = append(m.features, name)
			continue
		}
		if b.LazyStub == "" {
			// Nothing to defer; load it like an enabled bundle.
			for k, v := range b.Aliases {
				m.aliases[k] = v
			}
			for k, v := range b.Env {
				m.env[k] = v
			}
			for k, v := range b.Functions {
				m.functions[k] = v
			}
		} else {
			m.lazyStubs[name] = b.LazyStub
		}
		m.features = append(m.features, name)
	}

	for ref, val := range resolved {
		switch ref.Section {
		case config.SectionEnv:
			m.env[ref.Name] = val.Text
		case config.SectionAlias:
			m.aliases[ref.Name] = val.Text
		}
	}
	return m, notes
}

// choosePrompt picks the effective format and theme: an explicit format
// wins, otherwise the theme's; an unknown theme falls back to the default
// with a note rather than failing the compile.
func choosePrompt(cfg *config.RawConfig) (format, themeName, note string) {
	th := theme.Default()
	if cfg.Prompt.Theme != "" {
		if found, ok := theme.Lookup(cfg.Prompt.Theme); ok {
			th = found
		} else {
			note = fmt.Sprintf("unknown theme %q, using %q", cfg.Prompt.Theme, th.Name)
		}
	}

	format = cfg.Prompt.Format
	if format == "" {
		format = th.Format
	}
	return format, th.Name, note
}

func rawFragments(cfg *config.RawConfig) []string {
	if len(cfg.Raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(cfg.Raw))
	for _, e := range cfg.Raw {
		out = append(out, e.Raw)
	}
	return out
}
