package statsdb

import "errors"

// ErrNotFound is returned when a team is not enrolled in the competition or
// the competition does not exist.
var ErrNotFound = errors.New("stats subject not found")
