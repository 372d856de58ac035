package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/validation"

	"go.uber.org/zap"
)

// Branch creates name at head without switching to it.
func (r *Repository) Branch(name string) error {
	if err := validation.Check(validation.Branch(name)); err != nil {
		return err
	}
	head, err := r.refs.Head()
	if err != nil {
		return err
	}
	return r.refs.CreateBranch(name, head)
}

// RemoveBranch deletes the pointer only.
func (r *Repository) RemoveBranch(name string) error {
	return r.refs.DeleteBranch(name)
}

// CheckoutBranch replaces the working files with the tip of name and makes
// it the current branch.
func (r *Repository) CheckoutBranch(name string) error {
	b, err := r.refs.Branch(name)
	if err != nil {
		return err
	}
	current, err := r.refs.Current()
	if err != nil {
		return err
	}
	if current == name {
		return gerrors.AlreadyOnBranch(name)
	}

	target, err := r.objects.GetCommit(b.Head)
	if err != nil {
		return err
	}
	if err := r.restore(target); err != nil {
		return err
	}
	return r.refs.Switch(name)
}

// CheckoutFile restores name from the commit identified by commitPrefix, or
// from head when commitPrefix is empty. Staging is left alone.
func (r *Repository) CheckoutFile(commitPrefix, name string) error {
	var (
		c   *object.Commit
		err error
	)
	if commitPrefix == "" {
		c, err = r.Head()
	} else {
		c, err = r.ResolveCommit(commitPrefix)
	}
	if err != nil {
		return err
	}

	if !c.Tracks(name) {
		return gerrors.FileNotInCommit(name)
	}
	blob, err := r.objects.GetBlob(c.File(name))
	if err != nil {
		return err
	}
	if err := r.area.WriteFile(name, blob.Content()); err != nil {
		return err
	}

	r.logger.Debug("file checked out",
		zap.String("file", name),
		zap.String("commit", c.ID().Short()))
	return nil
}

// Reset checks out the commit identified by commitPrefix and moves the
// current branch to it.
func (r *Repository) Reset(commitPrefix string) error {
	target, err := r.ResolveCommit(commitPrefix)
	if err != nil {
		return err
	}
	if err := r.restore(target); err != nil {
		return err
	}
	return r.refs.Reset(target.ID())
}

// restore makes the working area match target: every file target tracks is
// written, every file head tracks but target does not is deleted, and
// staging is cleared. Nothing is touched if an untracked file is in the way.
func (r *Repository) restore(target *object.Commit) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head, target.Files()); err != nil {
		return err
	}

	contents := make(map[string][]byte, len(target.Files()))
	for name, d := range target.Files() {
		blob, err := r.objects.GetBlob(d)
		if err != nil {
			return err
		}
		contents[name] = blob.Content()
	}

	for name, data := range contents {
		if err := r.area.WriteFile(name, data); err != nil {
			return err
		}
	}
	for _, name := range head.Filenames() {
		if !target.Tracks(name) {
			if err := r.area.DeleteFile(name); err != nil {
				return err
			}
		}
	}
	if err := r.staging.Clear(); err != nil {
		return err
	}

	r.logger.Debug("working area restored",
		zap.String("from", head.ID().Short()),
		zap.String("to", target.ID().Short()))
	return nil
}

// checkUntracked fails when a file about to be written exists in the
// working area, is neither tracked by head nor staged, and holds content
// other than what would be written. writes maps each filename to the blob
// digest it would receive.
func (r *Repository) checkUntracked(head *object.Commit, writes map[string]object.Digest) error {
	var blocked []string
	for _, name := range slices.Sorted(maps.Keys(writes)) {
		if head.Tracks(name) {
			continue
		}
		staged, err := r.staging.IsStaged(name)
		if err != nil {
			return err
		}
		if staged {
			continue
		}

		data, err := r.area.ReadFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if object.NewBlob(name, data).ID() == writes[name] {
			continue
		}
		blocked = append(blocked, name)
	}

	if len(blocked) > 0 {
		r.logger.Debug("untracked files in the way", zap.Strings("files", blocked))
		return gerrors.UntrackedFileConflict(blocked)
	}
	return nil
}
