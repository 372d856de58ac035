// Package workspace is the working area: the plain files a repository's
// commits are materialized into.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// MetaDir is the repository metadata directory inside the working area.
const MetaDir = ".gitlet"

// ErrInvalidName is returned for names that are not plain top-level files.
var ErrInvalidName = errors.New("invalid working file name")

// Area is the working directory as seen by the repository. Names are flat:
// no directories, no separators.
type Area interface {
	// ReadFile returns the file content, or an error matching fs.ErrNotExist.
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	// DeleteFile removes the file. Deleting a missing file is not an error.
	DeleteFile(name string) error
	// ListFiles returns every plain, non-hidden file in sorted order.
	ListFiles() ([]string, error)
	Exists(name string) (bool, error)
}

// ShouldIgnore reports whether name is outside what a repository tracks:
// hidden files (the metadata directory among them) and anything nested.
func ShouldIgnore(name string) bool {
	if name == "" || name == "." || name == ".." {
		return true
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return true
	}
	return strings.HasPrefix(name, ".")
}

func checkName(name string) error {
	if ShouldIgnore(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func notExist(name string) error {
	return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
