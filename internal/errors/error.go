package errors

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameClosed   = errors.New("game is closed")
	ErrBadRequest   = errors.New("bad request")
	ErrStorage      = errors.New("storage failure")
	ErrInternal     = errors.New("internal error")
	// ErrRejected marks a request a remote server refused as invalid.
	ErrRejected = errors.New("request rejected")
)
