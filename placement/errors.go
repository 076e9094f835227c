package placement

import "errors"

// ErrInvalidRequest is returned when a request can never be satisfied, no
// matter the state of the address space.
var ErrInvalidRequest = errors.New("invalid request")
