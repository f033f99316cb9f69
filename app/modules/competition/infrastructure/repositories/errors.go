package competitiondb

import "errors"

// ErrNotFound is returned when a competition row does not exist.
var ErrNotFound = errors.New("competition not found")
