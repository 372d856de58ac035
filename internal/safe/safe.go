// internal/safe/safe.go
package safe

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidHash     = errors.New("invalid content hash")
	ErrCorrupt         = errors.New("content corrupt")
)

const metaPrefix = "object:"

// ContentMeta is the badger record kept for every payload file.
type ContentMeta struct {
	Hash       string    `json:"hash"`
	Kind       string    `json:"kind"`
	Size       int64     `json:"size"`
	StoredSize int64     `json:"stored_size"`
	Compressed bool      `json:"compressed"`
	Checksum   uint64    `json:"checksum"` // xxh3 of the bytes on disk
	CreatedAt  time.Time `json:"created_at"`
}

// Safe is an append-only payload vault. Callers choose the key; the safe
// only guarantees that what comes out is what went in.
type Safe struct {
	root   string                     // Root directory for content files
	db     *badger.DB                 // Metadata database
	cache  *lru.Cache[string, []byte] // Decompressed payload cache
	codec  *frameCodec
	mu     sync.Mutex
	logger *zap.Logger
}

// Options configures a Safe. Zero values fall back to defaults.
type Options struct {
	Root        string // Root directory path
	CacheSize   int    // Number of items to cache
	Compression CompressionOptions
	Logger      *zap.Logger
}

// New opens a safe rooted at opts.Root, creating the directory if needed.
func New(db *badger.DB, opts Options) (*Safe, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}

	if err := os.MkdirAll(opts.Root, 0755); err != nil {
		return nil, fmt.Errorf("creating root directory: %w", err)
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}
	switch {
	case opts.Compression == (CompressionOptions{}):
		opts.Compression = DefaultCompressionOptions()
	case opts.Compression.Level == 0:
		opts.Compression.Level = DefaultCompressionOptions().Level
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	codec, err := newFrameCodec(opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("creating frame codec: %w", err)
	}

	return &Safe{
		root:   opts.Root,
		db:     db,
		cache:  cache,
		codec:  codec,
		logger: opts.Logger,
	}, nil
}

// Put stores payload under hash. Storing an existing hash is a no-op and
// reports false.
func (s *Safe) Put(hash, kind string, payload []byte) (bool, error) {
	if !s.isValidHash(hash) {
		return false, ErrInvalidHash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.Has(hash)
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	if exists {
		return false, nil
	}

	stored, compressed := s.codec.compress(payload)

	contentPath := s.contentPath(hash)
	if err := os.MkdirAll(filepath.Dir(contentPath), 0755); err != nil {
		return false, fmt.Errorf("creating content directory: %w", err)
	}

	if err := SafeWrite(contentPath, stored, 0644); err != nil {
		return false, fmt.Errorf("writing content file: %w", err)
	}

	meta := ContentMeta{
		Hash:       hash,
		Kind:       kind,
		Size:       int64(len(payload)),
		StoredSize: int64(len(stored)),
		Compressed: compressed,
		Checksum:   xxh3.Hash(stored),
		CreatedAt:  time.Now(),
	}

	if err := s.storeMeta(meta); err != nil {
		// no metadata, so the file is unreachable
		os.Remove(contentPath)
		return false, fmt.Errorf("storing metadata: %w", err)
	}

	s.cache.Add(hash, append([]byte(nil), payload...))
	s.logger.Debug("stored payload",
		zap.String("hash", hash),
		zap.String("kind", kind),
		zap.Int64("size", meta.Size),
		zap.Bool("compressed", compressed))

	return true, nil
}

// Get returns the payload stored under hash, verified against its checksum.
func (s *Safe) Get(hash string) ([]byte, error) {
	if !s.isValidHash(hash) {
		return nil, ErrInvalidHash
	}

	// Check cache first
	if content, ok := s.cache.Get(hash); ok {
		return append([]byte(nil), content...), nil
	}

	meta, err := s.Meta(hash)
	if err != nil {
		return nil, err
	}

	content, err := s.readPayload(meta)
	if err != nil {
		return nil, err
	}

	s.cache.Add(hash, content)
	return append([]byte(nil), content...), nil
}

// Meta returns the stored metadata for hash.
func (s *Safe) Meta(hash string) (ContentMeta, error) {
	if !s.isValidHash(hash) {
		return ContentMeta{}, ErrInvalidHash
	}
	return s.getMeta(hash)
}

// Has reports whether hash has been stored.
func (s *Safe) Has(hash string) (bool, error) {
	if !s.isValidHash(hash) {
		return false, ErrInvalidHash
	}

	// Check cache first
	if s.cache.Contains(hash) {
		return true, nil
	}

	_, err := s.getMeta(hash)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// List returns the hashes of every payload of the given kind, sorted.
// An empty kind lists everything.
func (s *Safe) List(kind string) ([]string, error) {
	var hashes []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var meta ContentMeta
				if err := json.Unmarshal(val, &meta); err != nil {
					return err
				}
				if kind == "" || meta.Kind == kind {
					hashes = append(hashes, meta.Hash)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	sort.Strings(hashes)
	return hashes, nil
}

// Verify checks on-disk integrity of a single payload, bypassing the cache.
func (s *Safe) Verify(hash string) error {
	meta, err := s.Meta(hash)
	if err != nil {
		return err
	}
	_, err = s.readPayload(meta)
	return err
}

// VerifyAll checks every payload and returns the hashes that failed.
func (s *Safe) VerifyAll() ([]string, error) {
	hashes, err := s.List("")
	if err != nil {
		return nil, err
	}

	var bad []string
	for _, hash := range hashes {
		if err := s.Verify(hash); err != nil {
			s.logger.Warn("payload failed verification", zap.String("hash", hash), zap.Error(err))
			bad = append(bad, hash)
		}
	}
	return bad, nil
}

func (s *Safe) readPayload(meta ContentMeta) ([]byte, error) {
	stored, err := os.ReadFile(s.contentPath(meta.Hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: payload file missing for %s", ErrCorrupt, meta.Hash)
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}

	if xxh3.Hash(stored) != meta.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch for %s", ErrCorrupt, meta.Hash)
	}

	content := stored
	if meta.Compressed {
		content, err = s.codec.decompress(stored)
		if err != nil {
			return nil, fmt.Errorf("%w: decompressing %s: %v", ErrCorrupt, meta.Hash, err)
		}
	}

	if int64(len(content)) != meta.Size {
		return nil, fmt.Errorf("%w: size mismatch for %s", ErrCorrupt, meta.Hash)
	}
	return content, nil
}

func (s *Safe) contentPath(hash string) string {
	return filepath.Join(s.root, hash[:2], hash[2:])
}

func (s *Safe) isValidHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func (s *Safe) storeMeta(meta ContentMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(metaPrefix + meta.Hash)
		return txn.Set(key, data)
	})
}

func (s *Safe) getMeta(hash string) (ContentMeta, error) {
	var meta ContentMeta

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(metaPrefix + hash)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrContentNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})

	return meta, err
}
