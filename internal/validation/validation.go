package validation

import (
	"strings"
	"unicode"

	"gitlet/internal/errors"
	"gitlet/internal/workspace"
)

type Validator interface {
	Validate() error
}

// Check runs each validator in order and returns the first failure.
func Check(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Branch, CommitMessage and File are the Validator forms of the checks
// below, for use with Check.
type (
	Branch        string
	CommitMessage string
	File          string
)

func (b Branch) Validate() error        { return BranchName(string(b)) }
func (m CommitMessage) Validate() error { return Message(string(m)) }
func (f File) Validate() error          { return Filename(string(f)) }

// BranchName rejects names that cannot be stored or typed back safely.
func BranchName(name string) error {
	if name == "" {
		return errors.ValidationError("branch name is required", nil)
	}
	if name == "HEAD" {
		return errors.ValidationError("HEAD is not a valid branch name", name)
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return errors.ValidationError("branch name cannot start with '-' or '.'", name)
	}
	if strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return errors.ValidationError("branch name cannot contain whitespace", name)
	}
	if strings.ContainsAny(name, ":~^?*[\\") {
		return errors.ValidationError("branch name contains an invalid character", name)
	}
	return nil
}

// Message enforces a non-blank commit message.
func Message(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return errors.EmptyMessage()
	}
	return nil
}

// Filename accepts only plain top-level working files.
func Filename(name string) error {
	if name == "" {
		return errors.ValidationError("file name is required", nil)
	}
	if workspace.ShouldIgnore(name) {
		return errors.ValidationError("only plain, non-hidden files in the repository root can be tracked", name)
	}
	return nil
}
