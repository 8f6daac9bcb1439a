// Package prompt assembles the shell prompt from compiled segment
// descriptors in bounded time. Cheap segments (user, host, directory) are
// computed synchronously; expensive ones (version-control status) only ever
// read an asynchronously refreshed cache and never block on the underlying
// computation.
package prompt

import "strings"

// SegmentKind is the closed set of renderable segment kinds.
type SegmentKind uint8

const (
	KindLiteral SegmentKind = iota
	KindUser
	KindHost
	KindCwd
	KindGit
	KindPromptChar
)

// SegmentSpec is one compiled prompt segment. Literal is only set for
// KindLiteral. The struct is persisted inside the artifact.
type SegmentSpec struct {
	Kind    SegmentKind `cbor:"kind"`
	Literal string      `cbor:"literal,omitempty"`
}

// ParseFormat compiles a format string like "{user}@{host} {cwd} {git} {char} "
// into segment descriptors. Unknown placeholders are kept verbatim as
// literals so a typo degrades visibly instead of silently vanishing.
func ParseFormat(format string) []SegmentSpec {
	var specs []SegmentSpec
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			specs = append(specs, SegmentSpec{Kind: KindLiteral, Literal: literal.String()})
			literal.Reset()
		}
	}

	rest := format
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			literal.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			literal.WriteString(rest)
			break
		}

		literal.WriteString(rest[:open])
		name := rest[open+1 : open+closing]
		rest = rest[open+closing+1:]

		kind, known := segmentKind(name)
		if !known {
			literal.WriteString("{" + name + "}")
			continue
		}
		flush()
		specs = append(specs, SegmentSpec{Kind: kind})
	}
	flush()
	return specs
}

func segmentKind(name string) (SegmentKind, bool) {
	switch name {
	case "user":
		return KindUser, true
	case "host":
		return KindHost, true
	case "cwd":
		return KindCwd, true
	case "git":
		return KindGit, true
	case "char":
		return KindPromptChar, true
	default:
		return KindLiteral, false
	}
}
