package repository

import (
	"maps"
	"slices"

	"gitlet/internal/object"
	"gitlet/internal/workspace"

	"go.uber.org/zap"
)

// Modification is a working file whose state differs from what the next
// commit would record.
type Modification struct {
	Name    string
	Deleted bool
}

// Status is a snapshot of the repository state. Rendering is up to the
// caller.
type Status struct {
	Current   string
	Branches  []string
	Staged    []string
	Removed   []string
	Modified  []Modification
	Untracked []string
}

func (r *Repository) Status() (*Status, error) {
	current, err := r.refs.Current()
	if err != nil {
		return nil, err
	}
	branches, err := r.refs.Branches()
	if err != nil {
		return nil, err
	}
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	additions, err := r.staging.Additions()
	if err != nil {
		return nil, err
	}
	removals, err := r.staging.Removals()
	if err != nil {
		return nil, err
	}
	files, err := r.area.ListFiles()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Current: current,
		Staged:  slices.Sorted(maps.Keys(additions)),
		Removed: removals,
	}
	for _, b := range branches {
		st.Branches = append(st.Branches, b.Name)
	}

	working := make(map[string]object.Digest, len(files))
	for _, name := range files {
		data, err := r.area.ReadFile(name)
		if err != nil {
			return nil, err
		}
		working[name] = object.NewBlob(name, data).ID()
	}
	removed := make(map[string]bool, len(removals))
	for _, name := range removals {
		removed[name] = true
	}

	names := make(map[string]struct{})
	for _, m := range []map[string]object.Digest{head.Files(), additions, working} {
		for name := range m {
			names[name] = struct{}{}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(names)) {
		wd, present := working[name]
		staged, isStaged := additions[name]

		switch {
		case isStaged && !present:
			st.Modified = append(st.Modified, Modification{Name: name, Deleted: true})
		case isStaged && wd != staged:
			st.Modified = append(st.Modified, Modification{Name: name})
		case isStaged:
		case removed[name]:
			if present {
				st.Untracked = append(st.Untracked, name)
			}
		case head.Tracks(name) && !present:
			st.Modified = append(st.Modified, Modification{Name: name, Deleted: true})
		case head.Tracks(name) && wd != head.File(name):
			st.Modified = append(st.Modified, Modification{Name: name})
		case !head.Tracks(name) && present:
			st.Untracked = append(st.Untracked, name)
		}
	}
	return st, nil
}

// AutoStage reacts to a watched change: a tracked file whose content moved
// away from head is staged again. It reports whether anything was staged.
func (r *Repository) AutoStage(change workspace.Change) (bool, error) {
	if change.Op != workspace.Modified {
		return false, nil
	}

	head, err := r.Head()
	if err != nil {
		return false, err
	}
	staged, err := r.staging.IsStaged(change.Name)
	if err != nil {
		return false, err
	}
	if !head.Tracks(change.Name) && !staged {
		return false, nil
	}

	if err := r.Add(change.Name); err != nil {
		return false, err
	}
	r.logger.Debug("change auto-staged", zap.String("file", change.Name))
	return true, nil
}
