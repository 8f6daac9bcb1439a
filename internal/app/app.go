// Package app wires the loader, compiler, store, and renderer into the
// commands the CLI exposes. Each App instance carries its own isolated
// logger; nothing here touches the global slog default.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/pzsh/internal/artifact"
	"github.com/vk/pzsh/internal/cli"
	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/hclcfg"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	opts   *cli.Options
	loader config.Loader
	store  *artifact.Store
}

// NewApp constructs a fully initialized App instance, including its own
// logger and artifact store.
func NewApp(outW io.Writer, opts *cli.Options) (*App, error) {
	logger := newLogger(opts.LogLevel, opts.LogFormat, os.Stderr)

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}
	store, err := artifact.NewStore(cacheDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Artifact store opened.", "dir", cacheDir)

	return &App{
		outW:   outW,
		logger: logger,
		opts:   opts,
		loader: hclcfg.NewLoader(),
		store:  store,
	}, nil
}

// Store returns the application's artifact store. This is primarily for
// testing.
func (a *App) Store() *artifact.Store {
	return a.store
}

// configPath is the effective configuration location for commands that read
// one.
func (a *App) configPath() (string, error) {
	if a.opts.ConfigPath != "" {
		return a.opts.ConfigPath, nil
	}
	path := hclcfg.DefaultPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no configuration found at %s (run `pzsh init` to create one)", path)
	}
	return path, nil
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "pzsh")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "pzsh")
	}
	return filepath.Join(os.TempDir(), "pzsh-cache")
}
