package models

import "errors"

// Sentinel errors for pending-record lookups and commit.
var (
	ErrPreviewNotFound       = errors.New("preview not found")
	ErrClarificationNotFound = errors.New("clarification not found")
	ErrIdentityMismatch      = errors.New("record belongs to a different client")
	ErrStaleSnapshot         = errors.New("canonical data changed since the preview was created")
	ErrCommitTaskFailed      = errors.New("commit task execution failed")
)

// Sentinel errors for reference resolution.
var (
	ErrRefNotFound  = errors.New("reference not found")
	ErrRefAmbiguous = errors.New("reference is ambiguous")
)

// ErrActionNotAllowed indicates the role policy rejected the action kind.
var ErrActionNotAllowed = errors.New("action not allowed for role")
