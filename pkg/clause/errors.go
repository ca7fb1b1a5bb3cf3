package clause

import "errors"

// ErrNotFound is the sentinel returned by clause stores when no clause
// exists for a slug within the requested scope.
var ErrNotFound = errors.New("clause not found")
