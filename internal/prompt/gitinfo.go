package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// errNoRepository means no enclosing git repository was found. The segment
// renders empty in that case.
var errNoRepository = errors.New("no git repository")

// GitBranch reports the branch checked out in the repository enclosing dir,
// or a short detached-HEAD form like ":a1b2c3d". It reads .git/HEAD directly
// (following worktree gitdir indirection) and never spawns a process, so its
// cost is a handful of small file reads even in huge repositories.
func GitBranch(dir string) (string, error) {
	gitDir, err := findGitDir(dir)
	if err != nil {
		return "", err
	}

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", err
	}

	line := strings.TrimSpace(string(head))
	if ref, ok := strings.CutPrefix(line, "ref: "); ok {
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}
	if len(line) >= 7 {
		return ":" + line[:7], nil
	}
	return "", errNoRepository
}

// findGitDir walks up from dir looking for .git. A .git file (worktree or
// submodule) points at the real directory via a "gitdir:" line.
func findGitDir(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ".git")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return candidate, nil
			}
			return readGitDirPointer(candidate, dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errNoRepository
		}
		dir = parent
	}
}

func readGitDirPointer(path, base string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(content))
	target, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return "", errNoRepository
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	return target, nil
}
