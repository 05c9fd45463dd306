package benchmark

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyGen_Monotonic(t *testing.T) {
	fixed := time.Unix(0, 1000)
	g := NewKeyGen(func() time.Time { return fixed })

	assert.Equal(t, int64(1000), g.Next())
	assert.Equal(t, int64(1001), g.Next())
	assert.Equal(t, int64(1002), g.Next())
}

func TestKeyGen_ConcurrentUnique(t *testing.T) {
	g := NewKeyGen(nil)
	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n := g.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestFormatKey_SortsChronologically(t *testing.T) {
	keys := []string{
		FormatKey("run", 1_700_000_000_000_000_000),
		FormatKey("run", 999),
		FormatKey("run", 1_000_000),
	}
	assert.Equal(t, "run-00000000000000000999.json", keys[1])

	sort.Strings(keys)
	assert.Equal(t, []string{
		"run-00000000000000000999.json",
		"run-00000000000001000000.json",
		"run-01700000000000000000.json",
	}, keys)
}

func TestMatchPrefix(t *testing.T) {
	m := MatchPrefix("serbench-run")
	assert.True(t, m("serbench-run-00000000000000000001.json"))
	assert.False(t, m("serbench-run-00000000000000000001.txt"))
	assert.False(t, m("other-00000000000000000001.json"))
	assert.False(t, m("serbench-runner-1.json"))
	assert.True(t, MatchAll("anything"))
}
