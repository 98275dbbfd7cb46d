package models

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrPostNotFound        = errors.New("post not found")
	ErrTransactionConflict = errors.New("transaction conflict")
	ErrModerationWrite     = errors.New("moderation write failed")
	ErrTokenNotFound       = errors.New("device token not found")
	ErrNoRecipients        = errors.New("no valid recipients found")
)
