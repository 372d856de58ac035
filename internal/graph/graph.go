// Package graph answers read-only questions about commit history: parent
// walks, ancestor closures and merge bases.
package graph

import (
	"fmt"

	"gitlet/internal/object"
)

// Source loads commits by digest. The object store satisfies it.
type Source interface {
	GetCommit(d object.Digest) (*object.Commit, error)
}

type Graph struct {
	source Source
}

func New(source Source) *Graph {
	return &Graph{source: source}
}

// ParentOf returns the first parent of c, or nil for the initial commit.
func (g *Graph) ParentOf(c *object.Commit) (*object.Commit, error) {
	p := c.Parent()
	if p == "" {
		return nil, nil
	}
	parent, err := g.source.GetCommit(p)
	if err != nil {
		return nil, fmt.Errorf("loading parent of %s: %w", c.ID().Short(), err)
	}
	return parent, nil
}

// Ancestors returns every commit reachable from d over all parent edges,
// d included.
func (g *Graph) Ancestors(d object.Digest) (map[object.Digest]struct{}, error) {
	seen := make(map[object.Digest]struct{})
	stack := []object.Digest{d}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}

		c, err := g.source.GetCommit(cur)
		if err != nil {
			return nil, fmt.Errorf("walking ancestors of %s: %w", d.Short(), err)
		}
		seen[cur] = struct{}{}

		for _, p := range c.Parents() {
			if _, ok := seen[p]; !ok {
				stack = append(stack, p)
			}
		}
	}
	return seen, nil
}

// IsAncestor reports whether anc is reachable from d (or equal to it).
func (g *Graph) IsAncestor(anc, d object.Digest) (bool, error) {
	ancestors, err := g.Ancestors(d)
	if err != nil {
		return false, err
	}
	_, ok := ancestors[anc]
	return ok, nil
}

// SplitPoint finds the merge base of a and b: the commit closest to b, by
// parent-edge distance, that is also an ancestor of a. The search is not
// symmetric in its arguments. ok is false when the histories are disjoint.
func (g *Graph) SplitPoint(a, b object.Digest) (split object.Digest, ok bool, err error) {
	ofA, err := g.Ancestors(a)
	if err != nil {
		return "", false, err
	}

	visited := map[object.Digest]bool{b: true}
	queue := []object.Digest{b}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, common := ofA[cur]; common {
			return cur, true, nil
		}

		c, err := g.source.GetCommit(cur)
		if err != nil {
			return "", false, fmt.Errorf("searching split point from %s: %w", b.Short(), err)
		}
		for _, p := range c.Parents() {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return "", false, nil
}

// Log follows first parents from d back to the initial commit and returns
// the commits newest first.
func (g *Graph) Log(d object.Digest) ([]*object.Commit, error) {
	c, err := g.source.GetCommit(d)
	if err != nil {
		return nil, err
	}

	var out []*object.Commit
	for c != nil {
		out = append(out, c)
		if c, err = g.ParentOf(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
