package compile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/pzsh/internal/config"
	"github.com/vk/pzsh/internal/resolve"
)

// canonicalize renders a configuration to a stable byte form independent of
// file layout: the same declarations produce the same bytes whether they
// came from one file, a split directory, or a test fixture. The source hash
// (the store key) is computed over this form, so reordering files or
// touching comments does not invalidate the cache.
func canonicalize(cfg *config.RawConfig) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "performance startup=%d prompt=%d\n",
		cfg.Performance.StartupBudgetMS, cfg.Performance.PromptBudgetMS)

	writeEntries(&b, cfg.Env)
	writeEntries(&b, cfg.Aliases)
	writeEntries(&b, cfg.Raw)

	fmt.Fprintf(&b, "features enabled=%s lazy=%s\n",
		strings.Join(cfg.Features.Enabled, ","), strings.Join(cfg.Features.Lazy, ","))
	fmt.Fprintf(&b, "prompt format=%q theme=%q git_ttl_ms=%d\n",
		cfg.Prompt.Format, cfg.Prompt.Theme, cfg.Prompt.GitTTLMS)

	return []byte(b.String())
}

func writeEntries(b *strings.Builder, entries []config.Entry) {
	sorted := make([]config.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ref.Name < sorted[j].Ref.Name
	})
	for _, e := range sorted {
		fmt.Fprintf(b, "%s=%q\n", e.Ref, e.Raw)
	}
}

// fingerprintInput appends the sorted resolved pairs to the canonical
// source, so the fingerprint also covers what the references resolved to.
// Two configs with identical text but a different host snapshot fingerprint
// differently.
func fingerprintInput(canonical []byte, resolved map[config.Ref]resolve.ResolvedValue) []byte {
	pairs := make([]string, 0, len(resolved))
	for ref, val := range resolved {
		pairs = append(pairs, ref.String()+"="+val.Text)
	}
	sort.Strings(pairs)

	out := make([]byte, 0, len(canonical)+len(pairs)*16)
	out = append(out, canonical...)
	for _, p := range pairs {
		out = append(out, p...)
		out = append(out, '\n')
	}
	return out
}
