package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeRepositoryExists    ErrorType = "REPOSITORY_EXISTS"
	ErrorTypeRepositoryNotFound  ErrorType = "REPOSITORY_NOT_FOUND"
	ErrorTypeObjectNotFound      ErrorType = "OBJECT_NOT_FOUND"
	ErrorTypeCorruptObject       ErrorType = "CORRUPT_OBJECT"
	ErrorTypeFileNotFound        ErrorType = "FILE_NOT_FOUND"
	ErrorTypeFileNotInCommit     ErrorType = "FILE_NOT_IN_COMMIT"
	ErrorTypeNothingToRemove     ErrorType = "NOTHING_TO_REMOVE"
	ErrorTypeEmptyCommit         ErrorType = "EMPTY_COMMIT"
	ErrorTypeEmptyMessage        ErrorType = "EMPTY_MESSAGE"
	ErrorTypeNoMatchingCommit    ErrorType = "NO_MATCHING_COMMIT"
	ErrorTypeBranchExists        ErrorType = "BRANCH_EXISTS"
	ErrorTypeBranchNotFound      ErrorType = "BRANCH_NOT_FOUND"
	ErrorTypeAlreadyOnBranch     ErrorType = "ALREADY_ON_BRANCH"
	ErrorTypeDeleteCurrentBranch ErrorType = "CANNOT_DELETE_CURRENT_BRANCH"
	ErrorTypeUntrackedConflict   ErrorType = "UNTRACKED_FILE_CONFLICT"
	ErrorTypeUncommittedChanges  ErrorType = "UNCOMMITTED_CHANGES"
	ErrorTypeSelfMerge           ErrorType = "SELF_MERGE"
	ErrorTypeAncestorMerge       ErrorType = "ANCESTOR_MERGE"
	ErrorTypeMergeConflict       ErrorType = "MERGE_CONFLICT"
	ErrorTypeValidation          ErrorType = "VALIDATION"
)

// Error is a user-facing failure. Message is what the CLI prints.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same type, so errors.Is(err, &Error{Type: t}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// TypeOf returns the type of the first *Error in err's chain, or "".
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

func newError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

func RepositoryExists() *Error {
	return newError(ErrorTypeRepositoryExists,
		"A Gitlet version-control system already exists in the current directory.")
}

func RepositoryNotFound() *Error {
	return newError(ErrorTypeRepositoryNotFound, "Not in an initialized Gitlet directory.")
}

func ObjectNotFound(digest string) *Error {
	e := newError(ErrorTypeObjectNotFound, "No commit with that id exists.")
	e.Details = digest
	return e
}

func CorruptObject(digest string, reason string) *Error {
	e := newError(ErrorTypeCorruptObject, fmt.Sprintf("object %s is corrupt: %s", digest, reason))
	e.Details = digest
	return e
}

func FileNotFound(name string) *Error {
	e := newError(ErrorTypeFileNotFound, "File does not exist.")
	e.Details = name
	return e
}

func FileNotInCommit(name string) *Error {
	e := newError(ErrorTypeFileNotInCommit, "File does not exist in that commit.")
	e.Details = name
	return e
}

func NothingToRemove(name string) *Error {
	e := newError(ErrorTypeNothingToRemove, "No reason to remove the file.")
	e.Details = name
	return e
}

func EmptyCommit() *Error {
	return newError(ErrorTypeEmptyCommit, "No changes added to the commit.")
}

func EmptyMessage() *Error {
	return newError(ErrorTypeEmptyMessage, "Please enter a commit message.")
}

func NoMatchingCommit(message string) *Error {
	e := newError(ErrorTypeNoMatchingCommit, "Found no commit with that message.")
	e.Details = message
	return e
}

func BranchExists(name string) *Error {
	e := newError(ErrorTypeBranchExists, "A branch with that name already exists.")
	e.Details = name
	return e
}

func BranchNotFound(name string) *Error {
	e := newError(ErrorTypeBranchNotFound, "A branch with that name does not exist.")
	e.Details = name
	return e
}

func AlreadyOnBranch(name string) *Error {
	e := newError(ErrorTypeAlreadyOnBranch, "No need to checkout the current branch.")
	e.Details = name
	return e
}

func CannotDeleteCurrentBranch(name string) *Error {
	e := newError(ErrorTypeDeleteCurrentBranch, "Cannot remove the current branch.")
	e.Details = name
	return e
}

func UntrackedFileConflict(files []string) *Error {
	e := newError(ErrorTypeUntrackedConflict,
		"There is an untracked file in the way; delete it, or add and commit it first.")
	e.Details = files
	return e
}

func UncommittedChanges() *Error {
	return newError(ErrorTypeUncommittedChanges, "You have uncommitted changes.")
}

func SelfMerge() *Error {
	return newError(ErrorTypeSelfMerge, "Cannot merge a branch with itself.")
}

func AncestorMerge(branch string) *Error {
	e := newError(ErrorTypeAncestorMerge, "Given branch is an ancestor of the current branch.")
	e.Details = branch
	return e
}

func MergeConflict(files []string) *Error {
	e := newError(ErrorTypeMergeConflict, "Encountered a merge conflict.")
	e.Details = files
	return e
}

func ValidationError(message string, details any) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: details,
	}
}
