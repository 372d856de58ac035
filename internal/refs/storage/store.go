// internal/refs/storage/store.go
package storage

import (
	"errors"
	"fmt"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/refs"
	"gitlet/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const headID = "HEAD"

// Store handles branch and HEAD persistence
type Store struct {
	branches *storage.BadgerStore
	refs     *storage.BadgerStore
	logger   *zap.Logger
}

var _ refs.Box = (*Store)(nil)

// NewStore creates a new reference store
func NewStore(db *badger.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		branches: storage.NewBadgerStore(db, "branch"),
		refs:     storage.NewBadgerStore(db, "ref"),
		logger:   logger,
	}
}

// branchEntity wraps refs.Branch to implement storage.Entity
type branchEntity struct {
	*refs.Branch
}

func (b *branchEntity) GetID() string { return b.Name }

type headEntity struct {
	*refs.Head
}

func (h *headEntity) GetID() string { return headID }

// Init creates the first branch at commit and makes it current.
func (s *Store) Init(branch string, commit object.Digest) error {
	b := &refs.Branch{Name: branch, Head: commit}
	h := &refs.Head{Branch: branch, Commit: commit}

	err := s.branches.DB().Update(func(txn *badger.Txn) error {
		if err := s.branches.PutTxn(txn, &branchEntity{Branch: b}); err != nil {
			return err
		}
		return s.refs.PutTxn(txn, &headEntity{Head: h})
	})
	if err != nil {
		return fmt.Errorf("initializing refs: %w", err)
	}
	s.logger.Info("refs initialized", zap.String("branch", branch), zap.String("commit", commit.String()))
	return nil
}

// CreateBranch adds a branch pointing at at. HEAD is not touched.
func (s *Store) CreateBranch(name string, at object.Digest) error {
	err := s.branches.Create(&branchEntity{Branch: &refs.Branch{Name: name, Head: at}})
	if errors.Is(err, storage.ErrExists) {
		return gerrors.BranchExists(name)
	}
	if err != nil {
		return fmt.Errorf("creating branch %s: %w", name, err)
	}
	s.logger.Debug("branch created", zap.String("branch", name), zap.String("at", at.String()))
	return nil
}

// DeleteBranch removes the pointer only. Commits stay in the object store.
func (s *Store) DeleteBranch(name string) error {
	if _, err := s.Branch(name); err != nil {
		return err
	}
	current, err := s.Current()
	if err != nil {
		return err
	}
	if current == name {
		return gerrors.CannotDeleteCurrentBranch(name)
	}

	if err := s.branches.Delete(name); err != nil {
		return fmt.Errorf("deleting branch %s: %w", name, err)
	}
	s.logger.Debug("branch deleted", zap.String("branch", name))
	return nil
}

// Branch retrieves a branch by name
func (s *Store) Branch(name string) (*refs.Branch, error) {
	entity := branchEntity{Branch: &refs.Branch{}}
	err := s.branches.Get(name, &entity)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, gerrors.BranchNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting branch: %w", err)
	}
	return entity.Branch, nil
}

// Branches returns all branches sorted by name
func (s *Store) Branches() ([]*refs.Branch, error) {
	var entities []branchEntity
	if err := s.branches.List(&entities); err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}

	out := make([]*refs.Branch, len(entities))
	for i, e := range entities {
		out[i] = e.Branch
	}
	return out, nil
}

func (s *Store) head() (*refs.Head, error) {
	entity := headEntity{Head: &refs.Head{}}
	if err := s.refs.Get(headID, &entity); err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	return entity.Head, nil
}

// Current returns the name of the current branch.
func (s *Store) Current() (string, error) {
	h, err := s.head()
	if err != nil {
		return "", err
	}
	return h.Branch, nil
}

// Head returns the commit the current branch points at.
func (s *Store) Head() (object.Digest, error) {
	h, err := s.head()
	if err != nil {
		return "", err
	}
	return h.Commit, nil
}

// Switch makes name the current branch. The caller rewrites the working
// area before calling it.
func (s *Store) Switch(name string) error {
	b, err := s.Branch(name)
	if err != nil {
		return err
	}
	current, err := s.Current()
	if err != nil {
		return err
	}
	if current == name {
		return gerrors.AlreadyOnBranch(name)
	}

	if err := s.refs.Put(&headEntity{Head: &refs.Head{Branch: name, Commit: b.Head}}); err != nil {
		return fmt.Errorf("switching to %s: %w", name, err)
	}
	s.logger.Debug("switched branch", zap.String("from", current), zap.String("to", name))
	return nil
}

// AdvanceCurrent moves the current branch, and HEAD with it, to d.
func (s *Store) AdvanceCurrent(d object.Digest) error {
	branch, err := s.moveCurrent(d)
	if err != nil {
		return err
	}
	s.logger.Debug("branch advanced", zap.String("branch", branch), zap.String("head", d.Short()))
	return nil
}

// Reset is AdvanceCurrent without the forward-only expectation: d may be
// any commit, including one on another branch.
func (s *Store) Reset(d object.Digest) error {
	branch, err := s.moveCurrent(d)
	if err != nil {
		return err
	}
	s.logger.Info("branch reset", zap.String("branch", branch), zap.String("head", d.Short()))
	return nil
}

func (s *Store) moveCurrent(d object.Digest) (string, error) {
	h, err := s.head()
	if err != nil {
		return "", err
	}

	err = s.branches.DB().Update(func(txn *badger.Txn) error {
		b := &refs.Branch{Name: h.Branch, Head: d}
		if err := s.branches.PutTxn(txn, &branchEntity{Branch: b}); err != nil {
			return err
		}
		return s.refs.PutTxn(txn, &headEntity{Head: &refs.Head{Branch: h.Branch, Commit: d}})
	})
	if err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", h.Branch, d.Short(), err)
	}
	return h.Branch, nil
}
