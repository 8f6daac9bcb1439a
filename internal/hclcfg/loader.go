// Package hclcfg loads pzsh source configuration written in HCL and
// translates it into the format-agnostic config model. It is the only
// package that knows the on-disk syntax; everything downstream consumes
// config.RawConfig.
package hclcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/ctxlog"
	"github.com/vk/pzsh/internal/fsutil"
)

// rootSchema describes the top-level blocks a pzsh configuration may contain.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "performance"},
		{Type: "env"},
		{Type: "aliases"},
		{Type: "features"},
		{Type: "prompt"},
		{Type: "raw"},
	},
}

// Loader implements config.Loader for HCL sources.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// DefaultPath locates the configuration file when the user did not name one:
// ./pzsh.hcl, then $XDG_CONFIG_HOME/pzsh/pzsh.hcl, then ~/.config/pzsh/pzsh.hcl.
func DefaultPath() string {
	var xdg, home string
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		xdg = filepath.Join(v, "pzsh", "pzsh.hcl")
	}
	if h, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(h, ".config", "pzsh", "pzsh.hcl")
	}
	return fsutil.FirstExisting("pzsh.hcl", xdg, home)
}

// Load parses the file (or every .hcl file under a directory) at path and
// returns the populated model. Syntax errors, unknown blocks, and duplicate
// keys are all load errors; the returned diagnostics carry source positions.
func (l *Loader) Load(ctx context.Context, path string) (*config.RawConfig, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.sourceFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl configuration found at %s", path)
	}
	logger.Debug("Loading configuration.", "path", path, "files", len(files))

	cfg := &config.RawConfig{
		Path:        path,
		Performance: config.DefaultPerformance(),
		Prompt:      config.Prompt{GitTTLMS: 1000},
	}
	seen := map[config.Ref]bool{}

	var diags hcl.Diagnostics
	for _, filename := range files {
		src, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		fileDiags := l.loadFile(cfg, seen, filename, src)
		diags = append(diags, fileDiags...)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("load %s: %w", path, diags)
	}

	logger.Debug("Configuration loaded.",
		"env", len(cfg.Env), "aliases", len(cfg.Aliases), "raw", len(cfg.Raw))
	return cfg, nil
}

func (l *Loader) sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fsutil.FindFilesByExtension(path, ".hcl")
	}
	return []string{path}, nil
}

func (l *Loader) loadFile(cfg *config.RawConfig, seen map[config.Ref]bool, filename string, src []byte) hcl.Diagnostics {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return diags
	}

	content, contentDiags := file.Body.Content(rootSchema)
	diags = append(diags, contentDiags...)

	for _, block := range content.Blocks {
		switch block.Type {
		case "env":
			entries, d := l.entries(block, src, config.SectionEnv, seen, false)
			diags = append(diags, d...)
			cfg.Env = append(cfg.Env, entries...)
		case "aliases":
			entries, d := l.entries(block, src, config.SectionAlias, seen, false)
			diags = append(diags, d...)
			cfg.Aliases = append(cfg.Aliases, entries...)
		case "raw":
			entries, d := l.entries(block, src, config.SectionRaw, seen, true)
			diags = append(diags, d...)
			cfg.Raw = append(cfg.Raw, entries...)
		case "performance":
			diags = append(diags, l.decodePerformance(block, cfg)...)
		case "features":
			diags = append(diags, l.decodeFeatures(block, cfg)...)
		case "prompt":
			diags = append(diags, l.decodePrompt(block, cfg)...)
		}
	}

	return diags
}

// entries extracts the attributes of a key/value block in source order.
// For literal-only sections (raw fragments) the entry text is the evaluated
// string; otherwise it is the verbatim source slice of the value expression,
// which is what the lint engine scans.
func (l *Loader) entries(block *hcl.Block, src []byte, section config.Section, seen map[config.Ref]bool, literalOnly bool) ([]config.Entry, hcl.Diagnostics) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	var entries []config.Entry
	for _, attr := range ordered {
		ref := config.Ref{Section: section, Name: attr.Name}
		if seen[ref] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s entry", section),
				Detail:   fmt.Sprintf("The key %q was already defined.", attr.Name),
				Subject:  attr.Range.Ptr(),
			})
			continue
		}
		seen[ref] = true

		raw := sliceRange(src, attr.Expr.Range())
		if literalOnly {
			text, d := literalString(attr.Expr)
			if d != nil {
				diags = append(diags, d)
				continue
			}
			raw = text
		}

		entries = append(entries, config.Entry{
			Ref:  ref,
			Expr: attr.Expr,
			Raw:  raw,
			Span: attr.Range,
		})
	}
	return entries, diags
}

// sliceRange returns the verbatim source text covered by the range.
func sliceRange(src []byte, rng hcl.Range) string {
	start, end := rng.Start.Byte, rng.End.Byte
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}
