// internal/object/types.go
package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Digest is the hex sha256 of an object's canonical serialization.
type Digest string

func (d Digest) String() string { return string(d) }

// Short is the abbreviated form used in merge log lines.
func (d Digest) Short() string {
	if len(d) < 7 {
		return string(d)
	}
	return string(d[:7])
}

// Valid reports whether d looks like a full digest.
func (d Digest) Valid() bool {
	if len(d) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(string(d))
	return err == nil
}

type Kind string

const (
	KindBlob   Kind = "blob"
	KindCommit Kind = "commit"
)

// Object is anything the object store can hold.
type Object interface {
	ID() Digest
	Kind() Kind
	Canonical() []byte
}

const InitialMessage = "initial commit"

func hashOf(canonical []byte) Digest {
	sum := sha256.Sum256(canonical)
	return Digest(hex.EncodeToString(sum[:]))
}

// Blob is an immutable file snapshot. Identity covers filename and content.
type Blob struct {
	filename string
	content  []byte
	id       Digest
}

func NewBlob(filename string, content []byte) *Blob {
	b := &Blob{
		filename: filename,
		content:  append([]byte{}, content...),
	}
	b.id = hashOf(b.Canonical())
	return b
}

func (b *Blob) ID() Digest       { return b.id }
func (b *Blob) Kind() Kind       { return KindBlob }
func (b *Blob) Filename() string { return b.filename }

// Content returns a copy of the file bytes.
func (b *Blob) Content() []byte { return append([]byte{}, b.content...) }

func (b *Blob) Canonical() []byte {
	out := make([]byte, 0, len(b.filename)+2+len(b.content))
	out = append(out, b.filename...)
	out = append(out, ":\n"...)
	return append(out, b.content...)
}

// Commit is an immutable snapshot of the tracked file table.
// Parents holds zero (initial), one (normal) or two (merge) digests.
type Commit struct {
	message   string
	timestamp time.Time
	parents   []Digest
	files     map[string]Digest
	id        Digest
}

func NewCommit(message string, timestamp time.Time, parents []Digest, files map[string]Digest) (*Commit, error) {
	if len(parents) > 2 {
		return nil, fmt.Errorf("commit can have at most 2 parents, got %d", len(parents))
	}
	c := &Commit{
		message:   message,
		timestamp: timestamp.UTC(),
		parents:   slices.Clone(parents),
		files:     maps.Clone(files),
	}
	if c.files == nil {
		c.files = map[string]Digest{}
	}
	c.id = hashOf(c.Canonical())
	return c, nil
}

// InitialCommit is identical in every repository: fixed message, epoch
// timestamp, no parents and no files.
func InitialCommit() *Commit {
	c, _ := NewCommit(InitialMessage, time.Unix(0, 0), nil, nil)
	return c
}

func (c *Commit) ID() Digest           { return c.id }
func (c *Commit) Kind() Kind           { return KindCommit }
func (c *Commit) Message() string      { return c.message }
func (c *Commit) Timestamp() time.Time { return c.timestamp }
func (c *Commit) Parents() []Digest    { return slices.Clone(c.parents) }
func (c *Commit) IsMerge() bool        { return len(c.parents) == 2 }

// Parent returns the first parent, or "" for the initial commit.
func (c *Commit) Parent() Digest {
	if len(c.parents) == 0 {
		return ""
	}
	return c.parents[0]
}

// Files returns a copy of the filename -> blob digest table.
func (c *Commit) Files() map[string]Digest { return maps.Clone(c.files) }

func (c *Commit) Tracks(filename string) bool {
	_, ok := c.files[filename]
	return ok
}

// File returns the blob digest for filename, or "" when untracked.
func (c *Commit) File(filename string) Digest { return c.files[filename] }

// Filenames returns the tracked names in sorted order.
func (c *Commit) Filenames() []string {
	return slices.Sorted(maps.Keys(c.files))
}

func (c *Commit) Canonical() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "message: %q\n", c.message)
	fmt.Fprintf(&sb, "timestamp: %s\n", c.timestamp.Format(time.RFC3339Nano))
	parents := make([]string, len(c.parents))
	for i, p := range c.parents {
		parents[i] = string(p)
	}
	fmt.Fprintf(&sb, "parents: %s\n", strings.Join(parents, " "))
	sb.WriteString("files:\n")
	for _, name := range c.Filenames() {
		fmt.Fprintf(&sb, "|--%s -> %s\n", name, c.files[name])
	}
	return []byte(sb.String())
}
