package compile

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pzsh/internal/artifact"
	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/lint"
	"github.com/vk/pzsh/internal/resolve"
	"github.com/vk/pzsh/internal/runtime"
)

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

func entry(t *testing.T, section config.Section, name, src string) config.Entry {
	t.Helper()
	return config.Entry{
		Ref:  config.Ref{Section: section, Name: name},
		Expr: expr(t, src),
		Raw:  src,
	}
}

func testHost() map[string]string {
	return map[string]string{"HOME": "/home/tester", "USER": "tester"}
}

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	return New(store, resolve.NewWithHost(testHost()))
}

func baseConfig(t *testing.T) *config.RawConfig {
	t.Helper()
	return &config.RawConfig{
		Env: []config.Entry{
			entry(t, config.SectionEnv, "EDITOR", `"vim"`),
		},
		Aliases: []config.Entry{
			entry(t, config.SectionAlias, "ll", `"ls -la"`),
		},
		Features:    config.Features{Enabled: []string{"git"}},
		Performance: config.DefaultPerformance(),
	}
}

func TestCompileProducesLoadableArtifact(t *testing.T) {
	c := newCompiler(t)

	res, err := c.Compile(context.Background(), baseConfig(t))
	require.NoError(t, err)
	require.NotNil(t, res.Artifact)
	assert.False(t, res.Cached)
	assert.Empty(t, res.Warnings)

	idx := runtime.Build(res.Artifact)

	v, ok := idx.LookupAlias("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -la", v)

	// The git bundle's aliases are merged in.
	v, ok = idx.LookupAlias("gs")
	require.True(t, ok)
	assert.Equal(t, "git status -sb", v)

	assert.True(t, idx.IsFeatureEnabled("git"))
	assert.False(t, idx.IsFeatureEnabled("docker"))

	v, ok = idx.LookupEnv("EDITOR")
	require.True(t, ok)
	assert.Equal(t, "vim", v)
}

func TestCompileRejectsSubprocessSubstitution(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Aliases = append(cfg.Aliases,
		entry(t, config.SectionAlias, "gb", `"$(git branch --show-current)"`))

	res, err := c.Compile(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, res)

	var lintErr *LintError
	require.True(t, errors.As(err, &lintErr))
	require.NotEmpty(t, lintErr.Diagnostics)
	assert.Equal(t, lint.KindSubprocessSubstitution, lintErr.Diagnostics[0].Kind)

	// Nothing was persisted.
	_, ok, loadErr := c.store.Latest()
	require.NoError(t, loadErr)
	assert.False(t, ok)
}

func TestRecompileUnchangedIsCached(t *testing.T) {
	c := newCompiler(t)
	ctx := context.Background()

	first, err := c.Compile(ctx, baseConfig(t))
	require.NoError(t, err)
	require.Equal(t, 1, c.Resolver().Calls())

	second, err := c.Compile(ctx, baseConfig(t))
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Artifact.Fingerprint, second.Artifact.Fingerprint)
	assert.Equal(t, 1, c.Resolver().Calls(), "cached compile must not re-resolve")
}

func TestCompileDeterministicAcrossInstances(t *testing.T) {
	ctx := context.Background()

	a, err := newCompiler(t).Compile(ctx, baseConfig(t))
	require.NoError(t, err)
	b, err := newCompiler(t).Compile(ctx, baseConfig(t))
	require.NoError(t, err)

	assert.Equal(t, a.Artifact.Fingerprint, b.Artifact.Fingerprint)
	assert.Equal(t, a.Artifact.Script, b.Artifact.Script)
}

func TestFingerprintCoversResolvedValues(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RawConfig{
		Env: []config.Entry{
			entry(t, config.SectionEnv, "GOPATH", `"${host.HOME}/go"`),
		},
		Performance: config.DefaultPerformance(),
	}

	store1, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	res1, err := New(store1, resolve.NewWithHost(map[string]string{"HOME": "/home/a"})).Compile(ctx, cfg)
	require.NoError(t, err)

	store2, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	res2, err := New(store2, resolve.NewWithHost(map[string]string{"HOME": "/home/b"})).Compile(ctx, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, res1.Artifact.Fingerprint, res2.Artifact.Fingerprint)
}

func TestConfigWinsOverFeatureBundle(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Aliases = append(cfg.Aliases,
		entry(t, config.SectionAlias, "gs", `"git status --long"`))

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "git status --long", res.Artifact.Aliases["gs"])
}

func TestLazyFeatureEmitsStubOnly(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Features.Lazy = []string{"docker"}

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, res.Artifact.Script, "unfunction docker")
	_, ok := res.Artifact.Aliases["dps"]
	assert.False(t, ok, "lazy bundle aliases must not be eagerly defined")
	assert.Contains(t, res.Artifact.Features, "docker")
}

func TestUnknownFeatureIsAdvisory(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Features.Enabled = append(cfg.Features.Enabled, "mystery")

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)

	require.NotEmpty(t, res.Notes)
	assert.Contains(t, res.Notes[0], "mystery")
	assert.True(t, runtime.Build(res.Artifact).IsFeatureEnabled("mystery"))
}

func TestUnknownThemeFallsBack(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Prompt.Theme = "nope"

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "simple", res.Artifact.PromptTheme)
	require.NotEmpty(t, res.Notes)
	assert.Contains(t, res.Notes[0], `unknown theme "nope"`)
}

func TestExplicitPromptFormatWins(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Prompt = config.Prompt{Format: "{cwd} > ", Theme: "pure"}

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, res.Artifact.PromptSpec, 2)
	assert.Equal(t, "pure", res.Artifact.PromptTheme)
}

func TestWarningsDoNotBlockCompile(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Raw = []config.Entry{{
		Ref: config.Ref{Section: config.SectionRaw, Name: "zshrc"},
		Raw: "source ~/.nvm/nvm.sh\n",
	}}

	res, err := c.Compile(context.Background(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, lint.KindSlowFrameworkSource, res.Warnings[0].Kind)
	assert.Contains(t, res.Artifact.Script, "source ~/.nvm/nvm.sh")
}

func TestCompileAggregatesAllBlockingDiagnostics(t *testing.T) {
	c := newCompiler(t)
	cfg := baseConfig(t)
	cfg.Aliases = append(cfg.Aliases,
		entry(t, config.SectionAlias, "a1", `"$(cmd-one)"`),
		entry(t, config.SectionAlias, "a2", "\"`cmd-two`\""))

	_, err := c.Compile(context.Background(), cfg)
	var lintErr *LintError
	require.True(t, errors.As(err, &lintErr))

	errs, _ := lint.Split(lintErr.Diagnostics)
	assert.GreaterOrEqual(t, len(errs), 2)
}

func TestDefaultGitTTLApplied(t *testing.T) {
	c := newCompiler(t)

	res, err := c.Compile(context.Background(), baseConfig(t))
	require.NoError(t, err)
	assert.Equal(t, uint32(defaultGitTTLMS), res.Artifact.GitTTLMS)
}
