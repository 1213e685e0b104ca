package tagscope

import (
	"context"
	"sort"
	"sync"

	"github.com/claytercek/purge/pkg/purge"
)

type collectorKey struct{}

// collector is the per-scope tag set. It is bound into the context for the
// dynamic extent of one Run call and is safe for concurrent registration
// from goroutines sharing that context.
type collector struct {
	mu   sync.Mutex
	tags map[string]struct{}
	done bool
}

func newCollector() *collector {
	return &collector{tags: make(map[string]struct{})}
}

func (c *collector) add(tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		c.tags[tag] = struct{}{}
	}
}

func (c *collector) snapshot() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return nil, false
	}
	return c.sortedLocked(), true
}

// finalize releases the collector and returns the accumulated set.
// Registrations and reads through a retained context fail afterwards.
func (c *collector) finalize() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	return c.sortedLocked()
}

func (c *collector) sortedLocked() []string {
	out := make([]string, 0, len(c.tags))
	for tag := range c.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Run establishes a tag-collection scope around fn. A fresh empty tag set is
// bound into the context passed to fn, and every Add made with that context
// (or a context derived from it) during fn's extent lands in that set —
// including from goroutines fn spawns, provided they finish before fn
// returns. The collected tags are returned alongside fn's error; on failure
// the partial set is still returned so the caller can decide to discard it.
//
// The scope always finalizes when fn returns, whether it failed or even
// panicked. Contexts retained past that point are inert: Add becomes a
// no-op and Tags reports no active scope.
//
// Nesting Run creates an independent inner scope; registrations during the
// inner extent target the inner set only and never propagate outward.
func Run(ctx context.Context, fn func(context.Context) error) (tags []string, err error) {
	c := newCollector()
	// Release the binding even when fn panics, so a context retained
	// across a recovery cannot reach the set afterwards.
	defer func() {
		tags = c.finalize()
	}()
	err = fn(context.WithValue(ctx, collectorKey{}, c))
	return tags, err
}

// Add registers tags with the scope bound to ctx. Tag collection is
// best-effort instrumentation: outside an active scope (or after the scope
// finalized) Add is a silent no-op so rendering code never breaks just
// because it ran without a request scope. Empty strings are ignored and
// duplicates collapse.
func Add(ctx context.Context, tags ...string) {
	c, ok := ctx.Value(collectorKey{}).(*collector)
	if !ok {
		return
	}
	c.add(tags)
}

// Tags returns the tags accumulated so far in the scope bound to ctx,
// sorted. Unlike Add, reading implies the caller expects a scope to exist,
// so outside an active scope Tags fails with an argument-kind error.
func Tags(ctx context.Context) ([]string, error) {
	c, ok := ctx.Value(collectorKey{}).(*collector)
	if !ok {
		return nil, purge.NewArgumentError("no active tag scope", nil)
	}
	tags, active := c.snapshot()
	if !active {
		return nil, purge.NewArgumentError("tag scope already finalized", nil)
	}
	return tags, nil
}

// Active reports whether ctx carries a live tag-collection scope.
func Active(ctx context.Context) bool {
	c, ok := ctx.Value(collectorKey{}).(*collector)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.done
}
