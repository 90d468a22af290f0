package defn

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/deft-ml/deft/backend"
)

// artifactCache holds compiled artifacts keyed by (definition, compiler,
// canonical options, graph fingerprint). Lookups take the read lock; at
// most one compilation runs per key via singleflight, so concurrent first
// calls wait for the winner instead of recompiling.
type artifactCache struct {
	mu    sync.RWMutex
	arts  map[string]backend.Artifact
	group singleflight.Group

	compiles atomic.Int64
}

func newArtifactCache() *artifactCache {
	return &artifactCache{arts: map[string]backend.Artifact{}}
}

func (c *artifactCache) compileCount() int64 {
	return c.compiles.Load()
}

func (c *artifactCache) lookup(key string) (backend.Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.arts[key]
	return a, ok
}

// getOrCompile returns the cached artifact for key, compiling it at most
// once. Failures are returned to every waiter and not cached; nothing
// retries automatically.
func (c *artifactCache) getOrCompile(key string, compile func() (backend.Artifact, error)) (backend.Artifact, error) {
	if a, ok := c.lookup(key); ok {
		return a, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if a, ok := c.lookup(key); ok {
			return a, nil
		}
		a, err := compile()
		if err != nil {
			return nil, err
		}
		c.compiles.Add(1)
		c.mu.Lock()
		c.arts[key] = a
		c.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(backend.Artifact), nil
}

// canonicalOptions renders an options map as a stable "k=v,k=v" string so
// equal maps always key identically.
func canonicalOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(opts[k])
	}
	return b.String()
}
