package staging

import (
	"testing"
	"time"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func headWith(t *testing.T, blobs ...*object.Blob) *object.Commit {
	files := make(map[string]object.Digest, len(blobs))
	for _, b := range blobs {
		files[b.Filename()] = b.ID()
	}
	c, err := object.NewCommit("head", time.Now(), []object.Digest{object.InitialCommit().ID()}, files)
	require.NoError(t, err)
	return c
}

func TestStageAdd(t *testing.T) {
	tracked := object.NewBlob("a.txt", []byte("one"))
	head := headWith(t, tracked)

	t.Run("new file is staged with its payload", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		blob := object.NewBlob("b.txt", []byte("new"))
		require.NoError(t, area.StageAdd(blob, head))

		adds, err := area.Additions()
		require.NoError(t, err)
		assert.Equal(t, map[string]object.Digest{"b.txt": blob.ID()}, adds)

		blobs, err := area.Blobs()
		require.NoError(t, err)
		require.Len(t, blobs, 1)
		assert.Equal(t, []byte("new"), blobs[0].Content())
	})

	t.Run("restaging replaces the previous version", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		require.NoError(t, area.StageAdd(object.NewBlob("a.txt", []byte("two")), head))
		require.NoError(t, area.StageAdd(object.NewBlob("a.txt", []byte("three")), head))

		adds, err := area.Additions()
		require.NoError(t, err)
		assert.Equal(t, object.NewBlob("a.txt", []byte("three")).ID(), adds["a.txt"])
	})

	t.Run("content matching head unstages", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		require.NoError(t, area.StageAdd(object.NewBlob("a.txt", []byte("two")), head))
		require.NoError(t, area.StageAdd(object.NewBlob("a.txt", []byte("one")), head))

		empty, err := area.IsEmpty()
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("re-adding cancels a pending removal", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		res, err := area.StageRemove("a.txt", head)
		require.NoError(t, err)
		assert.Equal(t, MarkedForRemoval, res)

		require.NoError(t, area.StageAdd(tracked, head))

		removed, err := area.IsRemoved("a.txt")
		require.NoError(t, err)
		assert.False(t, removed)

		empty, err := area.IsEmpty()
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("re-adding changed content after rm stages the new version", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		_, err := area.StageRemove("a.txt", head)
		require.NoError(t, err)

		changed := object.NewBlob("a.txt", []byte("changed"))
		require.NoError(t, area.StageAdd(changed, head))

		removals, err := area.Removals()
		require.NoError(t, err)
		assert.Empty(t, removals)

		staged, err := area.IsStaged("a.txt")
		require.NoError(t, err)
		assert.True(t, staged)
	})
}

func TestStageRemove(t *testing.T) {
	tracked := object.NewBlob("a.txt", []byte("one"))
	head := headWith(t, tracked)

	t.Run("staged only file is unstaged", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)
		require.NoError(t, area.StageAdd(object.NewBlob("b.txt", []byte("x")), head))

		res, err := area.StageRemove("b.txt", head)
		require.NoError(t, err)
		assert.Equal(t, Unstaged, res)

		empty, err := area.IsEmpty()
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("staged and tracked file is only unstaged", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)
		require.NoError(t, area.StageAdd(object.NewBlob("a.txt", []byte("two")), head))

		res, err := area.StageRemove("a.txt", head)
		require.NoError(t, err)
		assert.Equal(t, Unstaged, res)

		removed, err := area.IsRemoved("a.txt")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("tracked file is marked", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		res, err := area.StageRemove("a.txt", head)
		require.NoError(t, err)
		assert.Equal(t, MarkedForRemoval, res)

		removals, err := area.Removals()
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, removals)
	})

	t.Run("unknown file", func(t *testing.T) {
		area := NewArea(setupTestDB(t), nil)

		_, err := area.StageRemove("ghost.txt", head)
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeNothingToRemove))
	})
}

func TestApplyAndClear(t *testing.T) {
	a := object.NewBlob("a.txt", []byte("a"))
	b := object.NewBlob("b.txt", []byte("b"))
	head := headWith(t, a, b)

	area := NewArea(setupTestDB(t), nil)
	c := object.NewBlob("c.txt", []byte("c"))
	a2 := object.NewBlob("a.txt", []byte("a2"))
	require.NoError(t, area.StageAdd(c, head))
	require.NoError(t, area.StageAdd(a2, head))
	_, err := area.StageRemove("b.txt", head)
	require.NoError(t, err)

	base := head.Files()
	next, err := area.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, map[string]object.Digest{"a.txt": a2.ID(), "c.txt": c.ID()}, next)
	assert.Equal(t, head.Files(), base, "base is left alone")

	staged, err := area.Staged()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, staged)

	require.NoError(t, area.Clear())
	empty, err := area.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	next, err = area.Apply(nil)
	require.NoError(t, err)
	assert.Empty(t, next)
}
