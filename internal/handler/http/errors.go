package http

import "errors"

// Sentinel errors of the authentication middleware, written into the 401
// response body so clients can tell a missing header from a malformed one.
var (
	ErrEmptyAuthorizationHeader   = errors.New("empty `Authorization` header")
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")
)
