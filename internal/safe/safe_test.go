package safe

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSafe(t *testing.T) *Safe {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, Options{
		Root:        t.TempDir(),
		CacheSize:   16,
		Compression: CompressionOptions{MinSize: 64, Level: 2},
	})
	require.NoError(t, err)
	return s
}

func key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestSafePutGet(t *testing.T) {
	s := setupTestSafe(t)

	small := []byte("small payload")
	large := bytes.Repeat([]byte("compress me please "), 100)

	for name, payload := range map[string][]byte{"small": small, "large": large, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			h := key(payload)

			written, err := s.Put(h, "blob", payload)
			require.NoError(t, err)
			assert.True(t, written)

			written, err = s.Put(h, "blob", payload)
			require.NoError(t, err)
			assert.False(t, written, "second put is a no-op")

			got, err := s.Get(h)
			require.NoError(t, err)
			assert.Equal(t, len(payload), len(got))
			assert.True(t, bytes.Equal(payload, got))
		})
	}

	t.Run("large is compressed", func(t *testing.T) {
		meta, err := s.Meta(key(large))
		require.NoError(t, err)
		assert.True(t, meta.Compressed)
		assert.Less(t, meta.StoredSize, meta.Size)

		meta, err = s.Meta(key(small))
		require.NoError(t, err)
		assert.False(t, meta.Compressed)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(key([]byte("never stored")))
		assert.True(t, errors.Is(err, ErrContentNotFound))

		ok, err := s.Has(key([]byte("never stored")))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid hash", func(t *testing.T) {
		_, err := s.Put("abc", "blob", nil)
		assert.ErrorIs(t, err, ErrInvalidHash)
		_, err = s.Get("zz")
		assert.ErrorIs(t, err, ErrInvalidHash)
	})
}

func TestSafeList(t *testing.T) {
	s := setupTestSafe(t)

	a, b, c := []byte("a"), []byte("b"), []byte("c")
	for _, p := range [][]byte{a, b} {
		_, err := s.Put(key(p), "blob", p)
		require.NoError(t, err)
	}
	_, err := s.Put(key(c), "commit", c)
	require.NoError(t, err)

	commits, err := s.List("commit")
	require.NoError(t, err)
	assert.Equal(t, []string{key(c)}, commits)

	all, err := s.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSafeVerify(t *testing.T) {
	s := setupTestSafe(t)

	good := []byte("good")
	bad := []byte("bad")
	for _, p := range [][]byte{good, bad} {
		_, err := s.Put(key(p), "blob", p)
		require.NoError(t, err)
	}

	require.NoError(t, s.Verify(key(good)))

	// Flip the bytes on disk behind the safe's back
	require.NoError(t, os.WriteFile(s.contentPath(key(bad)), []byte("BAD"), 0644))

	err := s.Verify(key(bad))
	assert.ErrorIs(t, err, ErrCorrupt)

	failed, err := s.VerifyAll()
	require.NoError(t, err)
	assert.Equal(t, []string{key(bad)}, failed)
}

func TestSafeCompressionDefaults(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	t.Run("min size kept when level is unset", func(t *testing.T) {
		s, err := New(db, Options{Root: t.TempDir(), Compression: CompressionOptions{MinSize: 1 << 20}})
		require.NoError(t, err)
		assert.Equal(t, 1<<20, s.codec.opts.MinSize)
		assert.Equal(t, DefaultCompressionOptions().Level, s.codec.opts.Level)

		payload := bytes.Repeat([]byte("x"), 4096)
		_, err = s.Put(key(payload), "blob", payload)
		require.NoError(t, err)
		meta, err := s.Meta(key(payload))
		require.NoError(t, err)
		assert.False(t, meta.Compressed, "payload is below the configured minimum")
	})

	t.Run("zero options use defaults", func(t *testing.T) {
		s, err := New(db, Options{Root: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, DefaultCompressionOptions(), s.codec.opts)
	})
}
