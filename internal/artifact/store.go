package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// encMode is a canonical CBOR encoder so identical artifacts serialize to
// identical bytes.
var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: cbor encoder init: %v", err))
	}
}

// Store persists artifacts keyed by source hash, plus the init script and a
// pointer to the most recent compile, under a single cache directory:
//
//	<dir>/<sourcehash>.pzc   CBOR-encoded artifact
//	<dir>/init.zsh           script of the most recent compile
//	<dir>/latest             source hash of the most recent compile
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the store at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// ScriptPath is where the shell finds the init script to source.
func (s *Store) ScriptPath() string { return filepath.Join(s.dir, "init.zsh") }

// Load returns the artifact compiled from the source identified by hash.
// A missing artifact is a normal state, reported via the bool.
func (s *Store) Load(sourceHash string) (*Artifact, bool, error) {
	data, err := os.ReadFile(s.artifactPath(sourceHash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load artifact: %w", err)
	}

	var a Artifact
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, false, fmt.Errorf("decode artifact %s: %w", sourceHash, err)
	}
	return &a, true, nil
}

// Save persists the artifact, refreshes the init script, and marks it as
// the latest compile. Writes go through a temp file plus rename so a
// concurrently starting shell never sources a half-written script.
func (s *Store) Save(a *Artifact) error {
	data, err := encMode.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := s.writeAtomic(s.artifactPath(a.SourceHash), data); err != nil {
		return err
	}
	if err := s.writeAtomic(s.ScriptPath(), []byte(a.Script)); err != nil {
		return err
	}
	return s.writeAtomic(filepath.Join(s.dir, "latest"), []byte(a.SourceHash+"\n"))
}

// Latest returns the most recently saved artifact, if any.
func (s *Store) Latest() (*Artifact, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "latest"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read latest pointer: %w", err)
	}
	return s.Load(strings.TrimSpace(string(data)))
}

func (s *Store) artifactPath(sourceHash string) string {
	return filepath.Join(s.dir, sourceHash+".pzc")
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
