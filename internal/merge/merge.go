// internal/merge/merge.go
package merge

import (
	"fmt"
	"maps"
	"slices"

	"gitlet/internal/object"
)

// ActionType is the outcome chosen for one file of a three-way merge.
type ActionType int

const (
	// Keep leaves the current version (or its absence) alone.
	Keep ActionType = iota
	// TakeGiven checks out the given branch's version and stages it.
	TakeGiven
	// Remove stages a removal of a file deleted only on the given side.
	Remove
	// Conflict writes both versions between markers and stages the result.
	Conflict
)

func (t ActionType) String() string {
	switch t {
	case Keep:
		return "keep"
	case TakeGiven:
		return "take-given"
	case Remove:
		return "remove"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is the plan entry for one filename. Digests are "" where the file
// is missing from that commit.
type Action struct {
	Type     ActionType
	Filename string
	Split    object.Digest
	Current  object.Digest
	Given    object.Digest
}

// Writes reports whether applying the action overwrites the working file.
func (a Action) Writes() bool {
	return a.Type == TakeGiven || a.Type == Conflict
}

// Classify resolves one file from its digests in split, current and given.
func Classify(split, current, given object.Digest) ActionType {
	switch {
	case current == given:
		// unchanged everywhere, changed identically, or gone on both sides
		return Keep
	case current == split:
		if given == "" {
			return Remove
		}
		return TakeGiven
	case given == split:
		return Keep
	default:
		return Conflict
	}
}

// Plan classifies every filename in the union of the three file tables.
// Actions come back sorted by filename.
func Plan(split, current, given *object.Commit) []Action {
	s, c, g := split.Files(), current.Files(), given.Files()

	names := make(map[string]struct{}, len(s)+len(c)+len(g))
	for _, table := range []map[string]object.Digest{s, c, g} {
		for name := range table {
			names[name] = struct{}{}
		}
	}

	plan := make([]Action, 0, len(names))
	for _, name := range slices.Sorted(maps.Keys(names)) {
		plan = append(plan, Action{
			Type:     Classify(s[name], c[name], g[name]),
			Filename: name,
			Split:    s[name],
			Current:  c[name],
			Given:    g[name],
		})
	}
	return plan
}

// Conflicts returns the names of the conflicting files in plan order.
func Conflicts(plan []Action) []string {
	var out []string
	for _, a := range plan {
		if a.Type == Conflict {
			out = append(out, a.Filename)
		}
	}
	return out
}

// ConflictContent renders the marker file for a conflict. A side missing
// from its commit contributes nothing between its markers.
func ConflictContent(current, given []byte) []byte {
	out := make([]byte, 0, len(current)+len(given)+32)
	out = append(out, "<<<<<<< HEAD\n"...)
	out = append(out, current...)
	out = append(out, "=======\n"...)
	out = append(out, given...)
	return append(out, ">>>>>>>\n"...)
}

// Message is the log message of a merge commit.
func Message(given, current string) string {
	return fmt.Sprintf("Merged %s into %s.", given, current)
}
