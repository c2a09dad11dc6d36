package service

import "errors"

// Invalid caller-state conditions, mapped to client errors by the API
// layer. No state mutation occurs when these are returned.
var (
	ErrNoActiveSession  = errors.New("no active reflection session")
	ErrAwaitingConfirm  = errors.New("reflection is ready to submit")
	ErrNothingToConfirm = errors.New("nothing to confirm")
	ErrEmptyText        = errors.New("missing text")
	ErrUnknownProfile   = errors.New("unknown profile key")
)
