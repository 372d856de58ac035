// internal/refs/storage/badger_test.go
package storage

import (
	"testing"

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

func digest(s string) object.Digest {
	return object.NewBlob(s, nil).ID()
}

func TestRefStore(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	c0, c1, c2 := digest("c0"), digest("c1"), digest("c2")

	require.NoError(t, store.Init("master", c0))

	t.Run("Init", func(t *testing.T) {
		current, err := store.Current()
		require.NoError(t, err)
		assert.Equal(t, "master", current)

		head, err := store.Head()
		require.NoError(t, err)
		assert.Equal(t, c0, head)
	})

	t.Run("CreateBranch", func(t *testing.T) {
		require.NoError(t, store.CreateBranch("dev", c0))

		err := store.CreateBranch("dev", c1)
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeBranchExists))
		assert.Equal(t, "A branch with that name already exists.", err.Error())

		b, err := store.Branch("dev")
		require.NoError(t, err)
		assert.Equal(t, c0, b.Head)

		current, err := store.Current()
		require.NoError(t, err)
		assert.Equal(t, "master", current, "creating a branch does not switch to it")
	})

	t.Run("AdvanceCurrent moves only the current branch", func(t *testing.T) {
		require.NoError(t, store.AdvanceCurrent(c1))

		head, err := store.Head()
		require.NoError(t, err)
		assert.Equal(t, c1, head)

		master, err := store.Branch("master")
		require.NoError(t, err)
		assert.Equal(t, c1, master.Head)

		dev, err := store.Branch("dev")
		require.NoError(t, err)
		assert.Equal(t, c0, dev.Head)
	})

	t.Run("Switch", func(t *testing.T) {
		require.NoError(t, store.Switch("dev"))

		head, err := store.Head()
		require.NoError(t, err)
		assert.Equal(t, c0, head)

		err = store.Switch("dev")
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeAlreadyOnBranch))

		err = store.Switch("nope")
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeBranchNotFound))
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, store.Reset(c2))

		dev, err := store.Branch("dev")
		require.NoError(t, err)
		assert.Equal(t, c2, dev.Head)

		head, err := store.Head()
		require.NoError(t, err)
		assert.Equal(t, c2, head)
	})

	t.Run("Branches are sorted", func(t *testing.T) {
		require.NoError(t, store.CreateBranch("alpha", c0))

		branches, err := store.Branches()
		require.NoError(t, err)

		var names []string
		for _, b := range branches {
			names = append(names, b.Name)
		}
		assert.Equal(t, []string{"alpha", "dev", "master"}, names)
	})

	t.Run("DeleteBranch", func(t *testing.T) {
		err := store.DeleteBranch("dev")
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeDeleteCurrentBranch))

		err = store.DeleteBranch("ghost")
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeBranchNotFound))

		require.NoError(t, store.DeleteBranch("alpha"))
		_, err = store.Branch("alpha")
		assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeBranchNotFound))
	})
}

func TestHeadBeforeInit(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)

	_, err := store.Head()
	assert.Error(t, err)
}
