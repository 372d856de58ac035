// internal/staging/area.go
package staging

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	additionPrefix = "stage.add"
	removalPrefix  = "stage.rm"
)

// addition is a pending blob: digest plus the payload that has not been
// written to the object store yet.
type addition struct {
	Filename string        `json:"filename"`
	Digest   object.Digest `json:"digest"`
	Content  []byte        `json:"content"`
}

func (a *addition) GetID() string { return a.Filename }

type removal struct {
	Filename string `json:"filename"`
}

func (r *removal) GetID() string { return r.Filename }

// RemoveResult says what StageRemove did.
type RemoveResult int

const (
	// Unstaged: the file was pending addition and is now simply forgotten.
	Unstaged RemoveResult = iota + 1
	// MarkedForRemoval: the file is tracked and will be dropped by the next
	// commit. The caller deletes the working copy.
	MarkedForRemoval
)

// Area is the staging area for the next commit.
type Area struct {
	additions *storage.BadgerStore
	removals  *storage.BadgerStore
	logger    *zap.Logger
}

func NewArea(db *badger.DB, logger *zap.Logger) *Area {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Area{
		additions: storage.NewBadgerStore(db, additionPrefix),
		removals:  storage.NewBadgerStore(db, removalPrefix),
		logger:    logger,
	}
}

// StageAdd stages blob against the head commit. Staging a file that matches
// what head already tracks cancels any pending change to it instead.
func (a *Area) StageAdd(blob *object.Blob, head *object.Commit) error {
	name := blob.Filename()

	if err := a.unmarkRemoved(name); err != nil {
		return err
	}

	if head.Tracks(name) && head.File(name) == blob.ID() {
		if err := a.unstage(name); err != nil {
			return err
		}
		a.logger.Debug("file matches head, nothing staged", zap.String("file", name))
		return nil
	}

	entry := &addition{Filename: name, Digest: blob.ID(), Content: blob.Content()}
	if err := a.additions.Put(entry); err != nil {
		return fmt.Errorf("staging %s: %w", name, err)
	}
	a.logger.Debug("file staged for addition", zap.String("file", name), zap.String("digest", blob.ID().Short()))
	return nil
}

// StageRemove stages the removal of filename. A file only pending addition
// is just unstaged. Removing a file head does not track is an error.
func (a *Area) StageRemove(filename string, head *object.Commit) (RemoveResult, error) {
	staged, err := a.IsStaged(filename)
	if err != nil {
		return 0, err
	}
	if staged {
		if err := a.unstage(filename); err != nil {
			return 0, err
		}
		return Unstaged, nil
	}

	if !head.Tracks(filename) {
		return 0, gerrors.NothingToRemove(filename)
	}

	if err := a.removals.Put(&removal{Filename: filename}); err != nil {
		return 0, fmt.Errorf("staging removal of %s: %w", filename, err)
	}
	a.logger.Debug("file staged for removal", zap.String("file", filename))
	return MarkedForRemoval, nil
}

func (a *Area) IsStaged(filename string) (bool, error) {
	return a.additions.Has(filename)
}

func (a *Area) IsRemoved(filename string) (bool, error) {
	return a.removals.Has(filename)
}

// Additions maps each staged filename to its pending blob digest.
func (a *Area) Additions() (map[string]object.Digest, error) {
	var entries []addition
	if err := a.additions.List(&entries); err != nil {
		return nil, err
	}
	out := make(map[string]object.Digest, len(entries))
	for _, e := range entries {
		out[e.Filename] = e.Digest
	}
	return out, nil
}

// Removals returns the filenames staged for removal, sorted.
func (a *Area) Removals() ([]string, error) {
	return a.removals.IDs()
}

// Blobs returns the pending payloads, sorted by filename.
func (a *Area) Blobs() ([]*object.Blob, error) {
	var entries []addition
	if err := a.additions.List(&entries); err != nil {
		return nil, err
	}
	blobs := make([]*object.Blob, 0, len(entries))
	for _, e := range entries {
		b := object.NewBlob(e.Filename, e.Content)
		if b.ID() != e.Digest {
			return nil, gerrors.CorruptObject(string(e.Digest), "staged payload does not match its digest")
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

func (a *Area) IsEmpty() (bool, error) {
	adds, err := a.additions.IDs()
	if err != nil {
		return false, err
	}
	rms, err := a.removals.IDs()
	if err != nil {
		return false, err
	}
	return len(adds) == 0 && len(rms) == 0, nil
}

// Clear drops every pending addition, payload and removal.
func (a *Area) Clear() error {
	if err := a.additions.Clear(); err != nil {
		return fmt.Errorf("clearing additions: %w", err)
	}
	if err := a.removals.Clear(); err != nil {
		return fmt.Errorf("clearing removals: %w", err)
	}
	return nil
}

// Apply builds the next snapshot: base, then staged additions, then staged
// removals. base is not modified.
func (a *Area) Apply(base map[string]object.Digest) (map[string]object.Digest, error) {
	adds, err := a.Additions()
	if err != nil {
		return nil, err
	}
	rms, err := a.Removals()
	if err != nil {
		return nil, err
	}

	files := maps.Clone(base)
	if files == nil {
		files = map[string]object.Digest{}
	}
	maps.Copy(files, adds)
	for _, name := range rms {
		delete(files, name)
	}
	return files, nil
}

// Staged returns the sorted names pending addition.
func (a *Area) Staged() ([]string, error) {
	adds, err := a.Additions()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(adds)), nil
}

func (a *Area) unstage(filename string) error {
	err := a.additions.Delete(filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("unstaging %s: %w", filename, err)
	}
	return nil
}

func (a *Area) unmarkRemoved(filename string) error {
	err := a.removals.Delete(filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clearing removal of %s: %w", filename, err)
	}
	return nil
}
