package prompt

import (
	"log/slog"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/pzsh/internal/clock"
	"github.com/vk/pzsh/internal/theme"
)

// gitSegmentKey identifies the git segment in the cache. Changing the
// segment configuration changes the key, which implicitly discards any
// refresh still in flight for the old configuration.
const gitSegmentKey = "git"

// Renderer assembles the prompt string from compiled segments. User and
// host are resolved once at construction; only the current directory and
// the cached git value vary between renders.
type Renderer struct {
	specs []SegmentSpec
	cache *Cache

	username string
	hostname string
	isRoot   bool

	userStyle lipgloss.Style
	hostStyle lipgloss.Style
	cwdStyle  lipgloss.Style
	gitStyle  lipgloss.Style
	charStyle lipgloss.Style
}

// NewRenderer builds a renderer over the given segments, theme, and segment
// cache. All style objects are precomputed here so Render allocates only the
// output string.
func NewRenderer(specs []SegmentSpec, th theme.Theme, cache *Cache) *Renderer {
	r := &Renderer{
		specs:     specs,
		cache:     cache,
		username:  currentUser(),
		hostname:  currentHost(),
		userStyle: styleFor(th.UserColor),
		hostStyle: styleFor(th.HostColor),
		cwdStyle:  styleFor(th.CwdColor),
		gitStyle:  styleFor(th.GitColor),
		charStyle: styleFor(th.CharColor),
	}
	r.isRoot = r.username == "root" || os.Geteuid() == 0
	return r
}

// NewGitSegment wires the git branch reader as a cached segment for the
// repository enclosing dir.
func NewGitSegment(clk clock.Clock, dir string, ttl time.Duration, logger *slog.Logger) *Segment {
	return NewSegment(clk, ttl, func() (string, error) {
		return GitBranch(dir)
	}, logger)
}

// Render produces the prompt string. It performs no I/O beyond two cheap,
// bounded OS queries (cwd) and never waits on the git refresh.
func (r *Renderer) Render() string {
	var out strings.Builder
	out.Grow(128)

	for _, spec := range r.specs {
		switch spec.Kind {
		case KindLiteral:
			out.WriteString(spec.Literal)
		case KindUser:
			out.WriteString(r.userStyle.Render(r.username))
		case KindHost:
			out.WriteString(r.hostStyle.Render(r.hostname))
		case KindCwd:
			out.WriteString(r.cwdStyle.Render(currentDir()))
		case KindGit:
			if branch := r.cache.Read(gitSegmentKey); branch != "" {
				out.WriteString(r.gitStyle.Render("(" + branch + ")"))
			}
		case KindPromptChar:
			if r.isRoot {
				out.WriteString(r.charStyle.Render("#"))
			} else {
				out.WriteString(r.charStyle.Render("$"))
			}
		}
	}
	return out.String()
}

func styleFor(color lipgloss.Color) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(color)
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "user"
}

func currentHost() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "localhost"
}

// currentDir prefers $PWD (the shell's logical path, already resolved) and
// abbreviates the home directory to ~.
func currentDir() string {
	cwd := os.Getenv("PWD")
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		} else {
			return "~"
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if cwd == home {
			return "~"
		}
		if rest, ok := strings.CutPrefix(cwd, home+"/"); ok {
			return "~/" + rest
		}
	}
	return cwd
}
