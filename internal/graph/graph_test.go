package graph

import (
	"fmt"
	"testing"
	"time"

	"gitlet/internal/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource map[object.Digest]*object.Commit

func (m memSource) GetCommit(d object.Digest) (*object.Commit, error) {
	if c, ok := m[d]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("commit not found: %s", d)
}

// history builds named commits; each entry lists its parents by name.
type history struct {
	t      *testing.T
	src    memSource
	byName map[string]object.Digest
	clock  time.Time
}

func newHistory(t *testing.T) *history {
	initial := object.InitialCommit()
	return &history{
		t:      t,
		src:    memSource{initial.ID(): initial},
		byName: map[string]object.Digest{"I": initial.ID()},
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (h *history) add(name string, parents ...string) object.Digest {
	h.clock = h.clock.Add(time.Minute)
	ps := make([]object.Digest, len(parents))
	for i, p := range parents {
		ps[i] = h.byName[p]
	}
	c, err := object.NewCommit(name, h.clock, ps, nil)
	require.NoError(h.t, err)
	h.src[c.ID()] = c
	h.byName[name] = c.ID()
	return c.ID()
}

func (h *history) id(name string) object.Digest { return h.byName[name] }

func crissCross(t *testing.T) *history {
	// I - A - B ----- M
	//      \         /
	//       C ---- D - E
	h := newHistory(t)
	h.add("A", "I")
	h.add("B", "A")
	h.add("C", "A")
	h.add("D", "C")
	h.add("M", "B", "D")
	h.add("E", "D")
	return h
}

func TestAncestors(t *testing.T) {
	h := crissCross(t)
	g := New(h.src)

	anc, err := g.Ancestors(h.id("M"))
	require.NoError(t, err)

	for _, name := range []string{"M", "B", "D", "C", "A", "I"} {
		assert.Contains(t, anc, h.id(name), name)
	}
	assert.NotContains(t, anc, h.id("E"))
	assert.Len(t, anc, 6)

	ok, err := g.IsAncestor(h.id("C"), h.id("M"))
	require.NoError(t, err)
	assert.True(t, ok, "second-parent history counts")

	ok, err = g.IsAncestor(h.id("E"), h.id("M"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSplitPoint(t *testing.T) {
	h := crissCross(t)
	g := New(h.src)

	tests := []struct {
		name string
		a, b string
		want string
	}{
		{name: "self", a: "M", b: "M", want: "M"},
		{name: "nearest through merge parent", a: "M", b: "E", want: "D"},
		{name: "reverse order", a: "E", b: "M", want: "D"},
		{name: "simple fork", a: "B", b: "C", want: "A"},
		{name: "ancestor", a: "B", b: "A", want: "A"},
		{name: "descendant", a: "A", b: "B", want: "A"},
		{name: "root", a: "I", b: "E", want: "I"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := g.SplitPoint(h.id(tt.a), h.id(tt.b))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, h.id(tt.want), got, "want %s", tt.want)
		})
	}

	t.Run("disjoint", func(t *testing.T) {
		c, err := object.NewCommit("orphan", time.Now(), nil, map[string]object.Digest{"x": "y"})
		require.NoError(t, err)
		h.src[c.ID()] = c

		_, ok, err := g.SplitPoint(h.id("E"), c.ID())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing commit", func(t *testing.T) {
		_, _, err := g.SplitPoint(h.id("E"), object.NewBlob("x", nil).ID())
		assert.Error(t, err)
	})
}

func TestLog(t *testing.T) {
	h := crissCross(t)
	g := New(h.src)

	log, err := g.Log(h.id("M"))
	require.NoError(t, err)

	var names []string
	for _, c := range log {
		names = append(names, c.Message())
	}
	assert.Equal(t, []string{"M", "B", "A", object.InitialMessage}, names)

	parent, err := g.ParentOf(h.src[h.id("I")])
	require.NoError(t, err)
	assert.Nil(t, parent)
}
