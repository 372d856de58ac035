package repository

import (
	"fmt"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/merge"
	"gitlet/internal/object"

	"go.uber.org/zap"
)

// Outcome says how a merge was resolved.
type Outcome int

const (
	// Merged: a two-parent merge commit was created.
	Merged Outcome = iota + 1
	// FastForward: the current branch was moved to the given tip.
	FastForward
	// NothingToMerge: the histories diverged but every file already matched,
	// so no commit was needed.
	NothingToMerge
)

func (o Outcome) String() string {
	switch o {
	case Merged:
		return "merged"
	case FastForward:
		return "fast-forward"
	case NothingToMerge:
		return "nothing-to-merge"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MergeResult reports a completed merge. Conflicts lists files that were
// left with conflict markers; the merge still committed them.
type MergeResult struct {
	Outcome   Outcome
	Commit    *object.Commit
	Conflicts []string
}

// Conflict returns a MergeConflict error when any file conflicted.
func (m *MergeResult) Conflict() error {
	if m == nil || len(m.Conflicts) == 0 {
		return nil
	}
	return gerrors.MergeConflict(m.Conflicts)
}

// Merge merges branch into the current branch.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	empty, err := r.staging.IsEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, gerrors.UncommittedChanges()
	}
	b, err := r.refs.Branch(branch)
	if err != nil {
		return nil, err
	}
	current, err := r.refs.Current()
	if err != nil {
		return nil, err
	}
	if current == branch {
		return nil, gerrors.SelfMerge()
	}

	cur, err := r.Head()
	if err != nil {
		return nil, err
	}
	given, err := r.objects.GetCommit(b.Head)
	if err != nil {
		return nil, err
	}

	splitID, ok, err := r.graph.SplitPoint(cur.ID(), given.ID())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("branches %s and %s share no history", current, branch)
	}

	log := r.logger.With(
		zap.String("current", current),
		zap.String("given", branch),
		zap.String("split", splitID.Short()))

	if splitID == given.ID() {
		return nil, gerrors.AncestorMerge(branch)
	}
	if splitID == cur.ID() {
		if err := r.restore(given); err != nil {
			return nil, err
		}
		if err := r.refs.AdvanceCurrent(given.ID()); err != nil {
			return nil, err
		}
		log.Info("fast-forwarded")
		return &MergeResult{Outcome: FastForward, Commit: given}, nil
	}

	split, err := r.objects.GetCommit(splitID)
	if err != nil {
		return nil, err
	}
	plan := merge.Plan(split, cur, given)

	writes, err := r.resolvePlan(plan)
	if err != nil {
		return nil, err
	}
	digests := make(map[string]object.Digest, len(writes))
	for name, blob := range writes {
		digests[name] = blob.ID()
	}
	if err := r.checkUntracked(cur, digests); err != nil {
		return nil, err
	}

	if err := r.applyPlan(plan, writes, cur); err != nil {
		return nil, err
	}

	conflicts := merge.Conflicts(plan)
	result := &MergeResult{Outcome: Merged, Conflicts: conflicts}

	empty, err = r.staging.IsEmpty()
	if err != nil {
		return nil, err
	}
	if empty && len(conflicts) == 0 {
		log.Info("nothing to merge")
		result.Outcome = NothingToMerge
		result.Commit = cur
		return result, nil
	}

	c, err := r.commit(merge.Message(branch, current), cur, given)
	if err != nil {
		return nil, err
	}
	result.Commit = c

	log.Info("merged",
		zap.String("commit", c.ID().Short()),
		zap.Strings("conflicts", conflicts))
	return result, nil
}

// resolvePlan loads or builds the blob every writing action will put in the
// working area. Nothing is mutated, so a missing object fails the merge
// before any file changes.
func (r *Repository) resolvePlan(plan []merge.Action) (map[string]*object.Blob, error) {
	writes := make(map[string]*object.Blob)
	for _, a := range plan {
		switch a.Type {
		case merge.TakeGiven:
			blob, err := r.objects.GetBlob(a.Given)
			if err != nil {
				return nil, err
			}
			writes[a.Filename] = blob

		case merge.Conflict:
			current, err := r.contentOf(a.Current)
			if err != nil {
				return nil, err
			}
			given, err := r.contentOf(a.Given)
			if err != nil {
				return nil, err
			}
			writes[a.Filename] = object.NewBlob(a.Filename, merge.ConflictContent(current, given))
		}
	}
	return writes, nil
}

func (r *Repository) contentOf(d object.Digest) ([]byte, error) {
	if d == "" {
		return nil, nil
	}
	blob, err := r.objects.GetBlob(d)
	if err != nil {
		return nil, err
	}
	return blob.Content(), nil
}

func (r *Repository) applyPlan(plan []merge.Action, writes map[string]*object.Blob, cur *object.Commit) error {
	for _, a := range plan {
		switch a.Type {
		case merge.TakeGiven, merge.Conflict:
			blob := writes[a.Filename]
			if err := r.area.WriteFile(a.Filename, blob.Content()); err != nil {
				return err
			}
			if err := r.staging.StageAdd(blob, cur); err != nil {
				return err
			}

		case merge.Remove:
			if _, err := r.staging.StageRemove(a.Filename, cur); err != nil {
				return err
			}
			if err := r.area.DeleteFile(a.Filename); err != nil {
				return err
			}
		}
	}
	return nil
}
