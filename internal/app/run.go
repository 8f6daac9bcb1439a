package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vk/pzsh/internal/artifact"
	"github.com/vk/pzsh/internal/bench"
	"github.com/vk/pzsh/internal/cli"
	"github.com/vk/pzsh/internal/clock"
	"github.com/vk/pzsh/internal/compile"
	"github.com/vk/pzsh/internal/ctxlog"
	"github.com/vk/pzsh/internal/lint"
	"github.com/vk/pzsh/internal/prompt"
	"github.com/vk/pzsh/internal/resolve"
	"github.com/vk/pzsh/internal/runtime"
	"github.com/vk/pzsh/internal/theme"
)

// Run dispatches the parsed command. Errors that should map to a specific
// exit code are returned as *cli.ExitError.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx = ctxlog.With(ctx, "command", a.opts.Command)

	switch a.opts.Command {
	case "compile":
		return a.runCompile(ctx)
	case "lint":
		return a.runLint(ctx)
	case "init":
		return a.runInit(ctx)
	case "bench":
		return a.runBench(ctx)
	case "profile":
		return a.runProfile(ctx)
	case "status":
		return a.runStatus(ctx)
	default:
		// The CLI validates the command before we get here.
		return &cli.ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", a.opts.Command)}
	}
}

func (a *App) runCompile(ctx context.Context) error {
	path, err := a.configPath()
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	cfg, err := a.loader.Load(ctx, path)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	compiler := compile.New(a.store, resolve.New())
	res, err := compiler.Compile(ctx, cfg)
	if err != nil {
		var lintErr *compile.LintError
		if errors.As(err, &lintErr) {
			cli.WriteDiagnostics(a.outW, lintErr.Diagnostics)
			errs, _ := lint.Split(lintErr.Diagnostics)
			return &cli.ExitError{
				Code:    1,
				Message: fmt.Sprintf("compile blocked by %d error(s)", len(errs)),
			}
		}
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	cli.WriteDiagnostics(a.outW, res.Warnings)
	for _, note := range res.Notes {
		fmt.Fprintf(a.outW, "note: %s\n", note)
	}
	if res.Cached {
		fmt.Fprintf(a.outW, "unchanged (fingerprint %s)\n", shortHash(res.Artifact.Fingerprint))
	} else {
		fmt.Fprintf(a.outW, "compiled %s (fingerprint %s)\n", path, shortHash(res.Artifact.Fingerprint))
	}
	fmt.Fprintf(a.outW, "init script: %s\n", a.store.ScriptPath())
	return nil
}

func (a *App) runLint(ctx context.Context) error {
	path, err := a.configPath()
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	cfg, err := a.loader.Load(ctx, path)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	diags := lint.New().Check(cfg)
	cli.WriteDiagnostics(a.outW, diags)
	if lint.HasErrors(diags) {
		errs, _ := lint.Split(diags)
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("%d error(s) found", len(errs))}
	}
	if len(diags) == 0 {
		fmt.Fprintln(a.outW, "no problems found")
	}
	return nil
}

func (a *App) runInit(ctx context.Context) error {
	path := a.opts.ConfigPath
	if path == "" {
		path = "pzsh.hcl"
	}
	if _, err := os.Stat(path); err == nil {
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("%s already exists, refusing to overwrite", path)}
	}

	if err := os.WriteFile(path, []byte(starterConfig(a.opts.Shell)), 0o644); err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	ctxlog.FromContext(ctx).Debug("Starter configuration written.", "path", path, "shell", a.opts.Shell)
	fmt.Fprintf(a.outW, "wrote %s; edit it and run `pzsh compile %s`\n", path, path)
	return nil
}

func (a *App) runBench(ctx context.Context) error {
	latest, err := a.requireArtifact()
	if err != nil {
		return err
	}

	startup := func() error {
		art, ok, err := a.store.Latest()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("artifact disappeared during benchmark")
		}
		runtime.Build(art)
		a.newRenderer(art).Render()
		return nil
	}

	result, err := bench.Run(bench.Options{
		Iterations: a.opts.Iterations,
		Warmup:     a.opts.Warmup,
	}, startup)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	budget := time.Duration(latest.BudgetMS) * time.Millisecond
	cli.WriteVerdict(a.outW, result.Against(budget))
	ctxlog.FromContext(ctx).Debug("Benchmark complete.", "p95", result.P95, "budget", budget)
	return nil
}

func (a *App) runProfile(ctx context.Context) error {
	if _, err := a.requireArtifact(); err != nil {
		return err
	}

	var art *artifact.Artifact
	var idx *runtime.Index
	profile, err := bench.ProfileRun(clock.System(), []bench.StageFunc{
		{Name: "load artifact", Run: func() error {
			loaded, ok, err := a.store.Latest()
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("artifact disappeared during profile")
			}
			art = loaded
			return nil
		}},
		{Name: "build index", Run: func() error {
			idx = runtime.Build(art)
			return nil
		}},
		{Name: "render prompt", Run: func() error {
			a.newRenderer(art).Render()
			return nil
		}},
	})
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	cli.WriteProfile(a.outW, profile)
	aliases, env, _ := idx.Counts()
	ctxlog.FromContext(ctx).Debug("Profile complete.",
		"total", profile.Total, "aliases", aliases, "env", env)
	return nil
}

func (a *App) runStatus(ctx context.Context) error {
	art, err := a.requireArtifact()
	if err != nil {
		return err
	}
	cli.WriteStatus(a.outW, art, a.store.ScriptPath())
	return nil
}

// requireArtifact loads the latest artifact or fails with guidance.
func (a *App) requireArtifact() (*artifact.Artifact, error) {
	art, ok, err := a.store.Latest()
	if err != nil {
		return nil, &cli.ExitError{Code: 1, Message: err.Error()}
	}
	if !ok {
		return nil, &cli.ExitError{Code: 1, Message: "no compiled artifact; run `pzsh compile` first"}
	}
	return art, nil
}

// newRenderer assembles the prompt renderer the way shell startup would:
// theme styles precomputed, git segment cached and refreshed off the render
// path.
func (a *App) newRenderer(art *artifact.Artifact) *prompt.Renderer {
	th, ok := theme.Lookup(art.PromptTheme)
	if !ok {
		th = theme.Default()
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cache := prompt.NewCache()
	ttl := time.Duration(art.GitTTLMS) * time.Millisecond
	cache.Add("git", prompt.NewGitSegment(clock.System(), cwd, ttl, a.logger))

	return prompt.NewRenderer(art.PromptSpec, th, cache)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
