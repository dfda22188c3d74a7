package domain

import "errors"

// Sentinel errors shared across layers. Controllers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownEvent  = errors.New("unknown event")

	// Commit preconditions and outcomes.
	ErrUnauthenticated   = errors.New("sign in required")
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrNothingToPay      = errors.New("nothing to pay")
	ErrCommitFailed      = errors.New("commit failed")
	ErrCommitInProgress  = errors.New("commit already in progress")

	// Selection store.
	ErrCorruptLocalState   = errors.New("corrupt local selection state")
	ErrRegisteredImmutable = errors.New("registered events cannot be removed")
)

// CommitError reports a failed registration write. It matches ErrCommitFailed with errors.Is
// and unwraps to the underlying store error.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string {
	return ErrCommitFailed.Error() + ": " + e.Cause.Error()
}

func (e *CommitError) Is(target error) bool {
	return target == ErrCommitFailed
}

func (e *CommitError) Unwrap() error {
	return e.Cause
}
