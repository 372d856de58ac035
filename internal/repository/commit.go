package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/staging"
	"gitlet/internal/validation"

	"go.uber.org/zap"
)

// Add stages the working copy of name.
func (r *Repository) Add(name string) error {
	if err := validation.Check(validation.File(name)); err != nil {
		return err
	}

	data, err := r.area.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return gerrors.FileNotFound(name)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	head, err := r.Head()
	if err != nil {
		return err
	}
	return r.staging.StageAdd(object.NewBlob(name, data), head)
}

// Remove unstages name, or stages its removal and deletes the working copy
// when head tracks it.
func (r *Repository) Remove(name string) (staging.RemoveResult, error) {
	head, err := r.Head()
	if err != nil {
		return 0, err
	}

	res, err := r.staging.StageRemove(name, head)
	if err != nil {
		return 0, err
	}
	if res == staging.MarkedForRemoval {
		if err := r.area.DeleteFile(name); err != nil {
			return 0, err
		}
	}
	return res, nil
}

// Commit snapshots head's files plus the staged changes.
func (r *Repository) Commit(message string) (*object.Commit, error) {
	empty, err := r.staging.IsEmpty()
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, gerrors.EmptyCommit()
	}
	if err := validation.Check(validation.CommitMessage(message)); err != nil {
		return nil, err
	}

	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	return r.commit(message, head, nil)
}

// commit writes the staged blobs and then the commit object, and only then
// clears staging and moves the branch. A crash in between leaves at worst an
// unreferenced object.
func (r *Repository) commit(message string, head *object.Commit, second *object.Commit) (*object.Commit, error) {
	files, err := r.staging.Apply(head.Files())
	if err != nil {
		return nil, err
	}

	blobs, err := r.staging.Blobs()
	if err != nil {
		return nil, err
	}
	for _, b := range blobs {
		if _, err := r.objects.Put(b); err != nil {
			return nil, err
		}
	}

	parents := []object.Digest{head.ID()}
	if second != nil {
		parents = append(parents, second.ID())
	}
	c, err := object.NewCommit(message, r.now(), parents, files)
	if err != nil {
		return nil, err
	}
	if _, err := r.objects.Put(c); err != nil {
		return nil, err
	}

	if err := r.staging.Clear(); err != nil {
		return nil, err
	}
	if err := r.refs.AdvanceCurrent(c.ID()); err != nil {
		return nil, err
	}

	r.logger.Info("commit created",
		zap.String("commit", c.ID().Short()),
		zap.Int("files", len(files)),
		zap.Bool("merge", c.IsMerge()))
	return c, nil
}

// Log is the first-parent history of head, newest first.
func (r *Repository) Log() ([]*object.Commit, error) {
	head, err := r.refs.Head()
	if err != nil {
		return nil, err
	}
	return r.graph.Log(head)
}

// GlobalLog returns every commit ever made, newest first. Ties on the
// timestamp are broken by digest.
func (r *Repository) GlobalLog() ([]*object.Commit, error) {
	ids, err := r.objects.Commits()
	if err != nil {
		return nil, err
	}

	commits := make([]*object.Commit, 0, len(ids))
	for _, d := range ids {
		c, err := r.objects.GetCommit(d)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}

	slices.SortFunc(commits, func(a, b *object.Commit) int {
		if c := b.Timestamp().Compare(a.Timestamp()); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID()), string(b.ID()))
	})
	return commits, nil
}

// Find returns the ids of every commit whose message is exactly message.
func (r *Repository) Find(message string) ([]object.Digest, error) {
	commits, err := r.GlobalLog()
	if err != nil {
		return nil, err
	}

	var out []object.Digest
	for _, c := range commits {
		if c.Message() == message {
			out = append(out, c.ID())
		}
	}
	if len(out) == 0 {
		return nil, gerrors.NoMatchingCommit(message)
	}
	return out, nil
}
