package service

import "errors"

// ErrUnauthenticated covers a missing, unknown or expired session token and a
// failed password check. Handlers surface it as 401.
var ErrUnauthenticated = errors.New("unauthenticated")
