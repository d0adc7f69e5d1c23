package chart

import (
	"slices"
	"sync"
)

// memo caches query results per key. Concurrent first access may compute
// a value twice; both computations agree since the chart is frozen.
type memo[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func (m *memo[K, V]) get(key K, compute func() V) V {
	m.mu.RLock()
	v, ok := m.m[key]
	m.mu.RUnlock()
	if ok {
		return v
	}

	v = compute()
	m.mu.Lock()
	if m.m == nil {
		m.m = make(map[K]V)
	}
	m.m[key] = v
	m.mu.Unlock()
	return v
}

type lcaResult struct {
	name string
	ok   bool
}

// AncestorsFor returns the ancestors of name, nearest first and root last.
// The root and unknown names have no ancestors.
func (c *Chart) AncestorsFor(name string) []string {
	return slices.Clone(c.ancestorsOf(name))
}

func (c *Chart) ancestorsOf(name string) []string {
	return c.ancestors.get(name, func() []string {
		var out []string
		for p, ok := c.ParentFor(name); ok; p, ok = c.ParentFor(p) {
			out = append(out, p)
		}
		return out
	})
}

// DescendantsFor returns every state below name, breadth first with
// siblings in registration order.
func (c *Chart) DescendantsFor(name string) []string {
	return slices.Clone(c.descendants.get(name, func() []string {
		var out []string
		queue := c.ChildrenFor(name)
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			out = append(out, next)
			queue = append(queue, c.ChildrenFor(next)...)
		}
		return out
	}))
}

// DepthFor returns 1 for the root and parent depth plus one below it.
// Unknown names report 1.
func (c *Chart) DepthFor(name string) int {
	return c.depth.get(name, func() int {
		return len(c.ancestorsOf(name)) + 1
	})
}

// LeastCommonAncestor returns the deepest state that is a strict ancestor
// of both a and b. It reports false when either name is the root or is
// unknown, since the root has no strict ancestor.
//
// When a is an ancestor of b, the result is a's parent.
func (c *Chart) LeastCommonAncestor(a, b string) (string, bool) {
	key := [2]string{a, b}
	if b < a {
		key = [2]string{b, a}
	}
	r := c.lca.get(key, func() lcaResult {
		left := c.ancestorsOf(a)
		right := c.ancestorsOf(b)
		for _, candidate := range left {
			if slices.Contains(right, candidate) {
				return lcaResult{name: candidate, ok: true}
			}
		}
		return lcaResult{}
	})
	return r.name, r.ok
}

// LeafFor keeps the states of names that have no descendant in names.
// Input order is preserved.
func (c *Chart) LeafFor(names []string) []string {
	var out []string
	for _, name := range names {
		leaf := true
		for _, other := range names {
			if other != name && slices.Contains(c.ancestorsOf(other), name) {
				leaf = false
				break
			}
		}
		if leaf {
			out = append(out, name)
		}
	}
	return out
}
