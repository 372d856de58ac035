package merge

import (
	"testing"
	"time"

	"gitlet/internal/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	const (
		x = object.Digest("x")
		y = object.Digest("y")
		z = object.Digest("z")
		m = object.Digest("")
	)

	tests := []struct {
		name                  string
		split, current, given object.Digest
		want                  ActionType
	}{
		{"unchanged on both sides", x, x, x, Keep},
		{"changed only in given", x, x, y, TakeGiven},
		{"changed only in current", x, y, x, Keep},
		{"changed the same way", x, y, y, Keep},
		{"changed differently", x, y, z, Conflict},
		{"removed in given, untouched in current", x, x, m, Remove},
		{"removed in given, changed in current", x, y, m, Conflict},
		{"removed in current, untouched in given", x, m, x, Keep},
		{"removed in current, changed in given", x, m, y, Conflict},
		{"removed on both sides", x, m, m, Keep},
		{"new only in given", m, m, y, TakeGiven},
		{"new only in current", m, y, m, Keep},
		{"new on both sides, equal", m, y, y, Keep},
		{"new on both sides, different", m, y, z, Conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.split, tt.current, tt.given))
		})
	}
}

func commitWith(t *testing.T, files map[string]object.Digest) *object.Commit {
	c, err := object.NewCommit("c", time.Now(), nil, files)
	require.NoError(t, err)
	return c
}

func TestPlan(t *testing.T) {
	split := commitWith(t, map[string]object.Digest{"a": "1", "b": "1", "c": "1"})
	current := commitWith(t, map[string]object.Digest{"a": "1", "b": "2", "c": "1", "d": "1"})
	given := commitWith(t, map[string]object.Digest{"a": "2", "b": "3", "e": "1"})

	plan := Plan(split, current, given)

	var names []string
	types := map[string]ActionType{}
	for _, a := range plan {
		names = append(names, a.Filename)
		types[a.Filename] = a.Type
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names)
	assert.Equal(t, map[string]ActionType{
		"a": TakeGiven,
		"b": Conflict,
		"c": Remove,
		"d": Keep,
		"e": TakeGiven,
	}, types)

	assert.Equal(t, []string{"b"}, Conflicts(plan))
	assert.Equal(t, object.Digest("2"), plan[1].Current)
	assert.Equal(t, object.Digest("3"), plan[1].Given)
	assert.True(t, plan[0].Writes())
	assert.False(t, plan[2].Writes())
}

func TestConflictContent(t *testing.T) {
	assert.Equal(t, "<<<<<<< HEAD\nm=======\nt>>>>>>>\n",
		string(ConflictContent([]byte("m"), []byte("t"))))

	assert.Equal(t, "<<<<<<< HEAD\nkept\n=======\n>>>>>>>\n",
		string(ConflictContent([]byte("kept\n"), nil)))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Merged topic into master.", Message("topic", "master"))
}
