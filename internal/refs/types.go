package refs

import (
	"gitlet/internal/object"
)

// Branch is a named mutable pointer to a commit.
type Branch struct {
	Name string        `json:"name"`
	Head object.Digest `json:"head"`
}

// Head records the current branch. Commit mirrors that branch's head.
type Head struct {
	Branch string        `json:"branch"`
	Commit object.Digest `json:"commit"`
}

// Box defines the interface for reference storage operations
type Box interface {
	Init(branch string, commit object.Digest) error

	CreateBranch(name string, at object.Digest) error
	DeleteBranch(name string) error
	Branch(name string) (*Branch, error)
	Branches() ([]*Branch, error)

	// Current-branch operations
	Current() (string, error)
	Head() (object.Digest, error)
	Switch(name string) error
	AdvanceCurrent(d object.Digest) error
	Reset(d object.Digest) error
}
