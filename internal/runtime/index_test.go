package runtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pzsh/internal/artifact"
)

func sampleArtifact() *artifact.Artifact {
	return &artifact.Artifact{
		Fingerprint: "fp-1",
		Aliases:     map[string]string{"ll": "ls -la", "gs": "git status -sb"},
		Env:         map[string]string{"EDITOR": "vim"},
		Features:    []string{"git"},
		Functions:   map[string]string{"gbda": "git branch --merged"},
		BudgetMS:    10,
	}
}

func TestLookupsReturnCompiledValues(t *testing.T) {
	idx := Build(sampleArtifact())

	v, ok := idx.LookupAlias("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -la", v)

	v, ok = idx.LookupEnv("EDITOR")
	require.True(t, ok)
	assert.Equal(t, "vim", v)

	v, ok = idx.LookupFunction("gbda")
	require.True(t, ok)
	assert.Equal(t, "git branch --merged", v)

	assert.True(t, idx.IsFeatureEnabled("git"))
	assert.Equal(t, "fp-1", idx.Fingerprint())
	assert.Equal(t, uint32(10), idx.BudgetMS())
}

func TestMissingKeysAreAbsenceNotErrors(t *testing.T) {
	idx := Build(sampleArtifact())

	v, ok := idx.LookupAlias("nope")
	assert.False(t, ok)
	assert.Empty(t, v)

	v, ok = idx.LookupEnv("NOPE")
	assert.False(t, ok)
	assert.Empty(t, v)

	_, ok = idx.LookupFunction("nope")
	assert.False(t, ok)
	assert.False(t, idx.IsFeatureEnabled("docker"))
}

func TestCounts(t *testing.T) {
	aliases, env, features := Build(sampleArtifact()).Counts()
	assert.Equal(t, 2, aliases)
	assert.Equal(t, 1, env)
	assert.Equal(t, 1, features)
}

func TestConcurrentReaders(t *testing.T) {
	idx := Build(sampleArtifact())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if v, ok := idx.LookupAlias("ll"); !ok || v != "ls -la" {
					t.Error("concurrent lookup returned wrong value")
					return
				}
				idx.IsFeatureEnabled("git")
			}
		}()
	}
	wg.Wait()
}

func syntheticIndex(entries int) *Index {
	a := &artifact.Artifact{
		Aliases: make(map[string]string, entries),
		Env:     make(map[string]string, entries),
	}
	for i := 0; i < entries; i++ {
		a.Aliases[fmt.Sprintf("alias%04d", i)] = "expansion"
		a.Env[fmt.Sprintf("VAR%04d", i)] = "value"
	}
	return Build(a)
}

// Lookup cost must not scale with the number of configured entries. The
// bound is generous to tolerate scheduler noise; a linear scan would blow
// past it by orders of magnitude.
func TestLookupCostIndependentOfConfigSize(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	small := syntheticIndex(10)
	large := syntheticIndex(1000)

	const iterations = 200_000
	measure := func(idx *Index, key string) time.Duration {
		// Warm caches before timing.
		for i := 0; i < 1000; i++ {
			idx.LookupAlias(key)
		}
		start := time.Now()
		for i := 0; i < iterations; i++ {
			idx.LookupAlias(key)
		}
		return time.Since(start)
	}

	smallCost := measure(small, "alias0005")
	largeCost := measure(large, "alias0999")

	assert.Less(t, largeCost, smallCost*25,
		"lookup on 1000 entries took %v vs %v on 10", largeCost, smallCost)
}
