package benchmark

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// KeyExt is the suffix of every record key.
const KeyExt = ".json"

// KeyGen issues strictly increasing nanosecond stamps, so two records saved
// within one clock tick still get distinct keys.
type KeyGen struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewKeyGen returns a generator reading now, or the wall clock when nil.
func NewKeyGen(now func() time.Time) *KeyGen {
	if now == nil {
		now = time.Now
	}
	return &KeyGen{now: now}
}

// Next returns the next stamp.
func (g *KeyGen) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return n
}

// FormatKey builds "<prefix>-<zero padded stamp>.json". The padding keeps
// lexicographic order chronological.
func FormatKey(prefix string, stamp int64) string {
	return fmt.Sprintf("%s-%020d%s", prefix, stamp, KeyExt)
}

// Match selects record keys.
type Match func(key string) bool

// MatchAll accepts every key.
func MatchAll(string) bool { return true }

// MatchPrefix accepts keys written with prefix.
func MatchPrefix(prefix string) Match {
	return func(key string) bool {
		return strings.HasPrefix(key, prefix+"-") && strings.HasSuffix(key, KeyExt)
	}
}
