// internal/object/storage/store.go
package storage

import (
	"errors"
	"fmt"
	"strings"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/safe"

	"go.uber.org/zap"
)

// Store is the content-addressed object store. Objects are written once and
// never updated or deleted.
type Store struct {
	safe   *safe.Safe
	logger *zap.Logger
}

func NewStore(s *safe.Safe, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{safe: s, logger: logger}
}

// Put stores obj under its digest. Putting the same object twice is a no-op.
func (s *Store) Put(obj object.Object) (object.Digest, error) {
	data, err := object.Encode(obj)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", obj.Kind(), err)
	}

	written, err := s.safe.Put(string(obj.ID()), string(obj.Kind()), data)
	if err != nil {
		return "", fmt.Errorf("storing %s %s: %w", obj.Kind(), obj.ID(), err)
	}
	if written {
		s.logger.Debug("object stored",
			zap.String("kind", string(obj.Kind())),
			zap.String("digest", obj.ID().String()))
	}
	return obj.ID(), nil
}

func (s *Store) Get(d object.Digest) (object.Object, error) {
	if !d.Valid() {
		return nil, gerrors.ObjectNotFound(string(d))
	}

	data, err := s.safe.Get(string(d))
	if err != nil {
		if errors.Is(err, safe.ErrContentNotFound) {
			return nil, gerrors.ObjectNotFound(string(d))
		}
		if errors.Is(err, safe.ErrCorrupt) {
			return nil, gerrors.CorruptObject(string(d), err.Error())
		}
		return nil, fmt.Errorf("reading object %s: %w", d, err)
	}

	obj, err := object.Decode(data)
	if err != nil {
		return nil, gerrors.CorruptObject(string(d), err.Error())
	}
	if obj.ID() != d {
		return nil, gerrors.CorruptObject(string(d), fmt.Sprintf("content hashes to %s", obj.ID()))
	}
	return obj, nil
}

func (s *Store) GetBlob(d object.Digest) (*object.Blob, error) {
	obj, err := s.Get(d)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*object.Blob)
	if !ok {
		return nil, fmt.Errorf("object %s is a %s, not a blob", d, obj.Kind())
	}
	return b, nil
}

func (s *Store) GetCommit(d object.Digest) (*object.Commit, error) {
	obj, err := s.Get(d)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*object.Commit)
	if !ok {
		return nil, fmt.Errorf("object %s is a %s, not a commit", d, obj.Kind())
	}
	return c, nil
}

func (s *Store) Has(d object.Digest) (bool, error) {
	if !d.Valid() {
		return false, nil
	}
	return s.safe.Has(string(d))
}

// Commits lists the digest of every stored commit in digest order.
func (s *Store) Commits() ([]object.Digest, error) {
	hashes, err := s.safe.List(string(object.KindCommit))
	if err != nil {
		return nil, err
	}
	out := make([]object.Digest, len(hashes))
	for i, h := range hashes {
		out[i] = object.Digest(h)
	}
	return out, nil
}

// ResolveCommit expands an abbreviated commit id. A prefix that matches no
// commit, or more than one, is reported as not found.
func (s *Store) ResolveCommit(prefix string) (object.Digest, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", gerrors.ObjectNotFound(prefix)
	}
	if d := object.Digest(prefix); d.Valid() {
		meta, err := s.safe.Meta(prefix)
		if errors.Is(err, safe.ErrContentNotFound) {
			return "", gerrors.ObjectNotFound(prefix)
		}
		if err != nil {
			return "", err
		}
		if meta.Kind != string(object.KindCommit) {
			return "", gerrors.ObjectNotFound(prefix)
		}
		return d, nil
	}

	commits, err := s.Commits()
	if err != nil {
		return "", err
	}
	var match object.Digest
	for _, c := range commits {
		if strings.HasPrefix(string(c), prefix) {
			if match != "" {
				return "", gerrors.ObjectNotFound(prefix)
			}
			match = c
		}
	}
	if match == "" {
		return "", gerrors.ObjectNotFound(prefix)
	}
	return match, nil
}

// Verify re-reads every object from disk and checks that it still hashes
// to its key. It returns the digests that failed.
func (s *Store) Verify() ([]object.Digest, error) {
	bad, err := s.safe.VerifyAll()
	if err != nil {
		return nil, err
	}

	failed := make(map[string]bool, len(bad))
	for _, h := range bad {
		failed[h] = true
	}

	all, err := s.safe.List("")
	if err != nil {
		return nil, err
	}
	var out []object.Digest
	for _, h := range all {
		if failed[h] {
			out = append(out, object.Digest(h))
			continue
		}
		if _, err := s.Get(object.Digest(h)); err != nil {
			s.logger.Warn("object failed verification", zap.String("digest", h), zap.Error(err))
			out = append(out, object.Digest(h))
		}
	}
	return out, nil
}
