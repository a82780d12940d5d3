package expense

import "errors"

var (
	ErrNotFound      = errors.New("expense record not found")
	ErrInvalidState  = errors.New("claim is not in a state that allows this transition")
	ErrEmptyClaim    = errors.New("claim has no items")
	ErrBillRequired  = errors.New("expense type requires a bill reference")
	ErrLimitExceeded = errors.New("amount exceeds the role level limit")
)
