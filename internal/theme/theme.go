// Package theme provides the built-in prompt themes. A theme is a prompt
// format string plus a palette of lipgloss colors for each segment role;
// everything is static data, chosen at compile time.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme describes one prompt appearance.
type Theme struct {
	Name   string
	Format string

	UserColor lipgloss.Color
	HostColor lipgloss.Color
	CwdColor  lipgloss.Color
	GitColor  lipgloss.Color
	CharColor lipgloss.Color
}

var themes = map[string]Theme{
	"robbyrussell": {
		Name:      "robbyrussell",
		Format:    "{cwd} {git} {char} ",
		CwdColor:  lipgloss.Color("6"),
		GitColor:  lipgloss.Color("1"),
		CharColor: lipgloss.Color("2"),
	},
	"pure": {
		Name:      "pure",
		Format:    "{cwd} {git}\n{char} ",
		CwdColor:  lipgloss.Color("4"),
		GitColor:  lipgloss.Color("8"),
		CharColor: lipgloss.Color("5"),
	},
	"agnoster": {
		Name:      "agnoster",
		Format:    "{user}@{host} {cwd} {git} {char} ",
		UserColor: lipgloss.Color("3"),
		HostColor: lipgloss.Color("3"),
		CwdColor:  lipgloss.Color("4"),
		GitColor:  lipgloss.Color("2"),
		CharColor: lipgloss.Color("7"),
	},
	"simple": {
		Name:      "simple",
		Format:    "{user}@{host} {cwd} {git} {char} ",
		CharColor: lipgloss.Color("2"),
	},
}

// Lookup returns the named theme.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// Default is the fallback theme when none (or an unknown one) is configured.
func Default() Theme {
	return themes["simple"]
}

// Names lists all built-in themes in sorted order.
func Names() []string {
	out := make([]string, 0, len(themes))
	for name := range themes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
