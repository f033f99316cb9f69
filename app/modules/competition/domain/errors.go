package competitiondomain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrPhaseNotFound       = errors.New("competition has no matching phase")
	ErrRoundNotFound       = errors.New("round not found")
	ErrRoundNotEmpty       = errors.New("round already has matches assigned")
	ErrTeamNotFound        = errors.New("team not found")
	ErrValidationFailed    = errors.New("validation failed")
)

// ValidationError collects every violation found, keyed by the field or
// context it applies to.
type ValidationError struct {
	Violations map[string][]string `json:"violations"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Violations: make(map[string][]string)}
}

// Add records reason against field.
func (e *ValidationError) Add(field, reason string) {
	if e.Violations == nil {
		e.Violations = make(map[string][]string)
	}
	e.Violations[field] = append(e.Violations[field], reason)
}

// Addf records a formatted reason against field.
func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

func (e *ValidationError) Empty() bool { return e == nil || len(e.Violations) == 0 }

// Count returns the number of recorded reasons across every field.
func (e *ValidationError) Count() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, reasons := range e.Violations {
		n += len(reasons)
	}
	return n
}

// Fields returns the violated fields in sorted order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrValidationFailed.Error())
	for i, f := range e.Fields() {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Violations[f], ", "))
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// orNil keeps a typed nil *ValidationError from escaping as a non-nil error.
func (e *ValidationError) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
