// Package artifact defines the compiled, fingerprinted output of the
// compiler and its content-addressed on-disk store. An artifact is immutable
// once produced; the shell sources its embedded script at startup and the
// runtime index is built from its maps.
package artifact

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"github.com/vk/pzsh/internal/prompt"
)

// Artifact is the pre-resolved result of one compilation. SourceHash
// identifies the canonical input (the store key); Fingerprint additionally
// covers the resolution results.
type Artifact struct {
	Fingerprint string `cbor:"fingerprint"`
	SourceHash  string `cbor:"source_hash"`

	Aliases  map[string]string `cbor:"aliases"`
	Env      map[string]string `cbor:"env"`
	Features []string          `cbor:"features"`
	// Functions are shell functions contributed by feature bundles, keyed
	// by function name.
	Functions map[string]string `cbor:"functions,omitempty"`

	PromptSpec  []prompt.SegmentSpec `cbor:"prompt_spec"`
	PromptTheme string               `cbor:"prompt_theme"`
	GitTTLMS    uint32               `cbor:"git_ttl_ms"`

	// Script is the generated zsh initialization text the shell sources.
	Script string `cbor:"script"`

	BudgetMS       uint32    `cbor:"budget_ms"`
	PromptBudgetMS uint32    `cbor:"prompt_budget_ms"`
	CreatedAt      time.Time `cbor:"created_at"`
}

// HashBytes returns the lowercase hex blake3 hash of data. Both the source
// hash and the fingerprint use it.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
