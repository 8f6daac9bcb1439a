package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnown(t *testing.T) {
	git, ok := Lookup("git")
	require.True(t, ok)
	assert.Equal(t, "git status -sb", git.Aliases["gs"])
	assert.NotEmpty(t, git.Functions)

	docker, ok := Lookup("docker")
	require.True(t, ok)
	assert.Equal(t, "1", docker.Env["DOCKER_BUILDKIT"])
	assert.NotEmpty(t, docker.LazyStub)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("kubernetes")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"docker", "git"}, names)
}
