package competitiondomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxNameLength = 120

type Competition struct {
	ID        uuid.UUID
	Name      string
	Phase     Phase
	CreatedAt time.Time
}

// NewCompetition validates the inputs of a new competition.
func NewCompetition(id uuid.UUID, name string, phase Phase, now time.Time) (Competition, error) {
	verr := NewValidationError()
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verr.Add("name", "name is required")
	case len(name) > maxNameLength:
		verr.Add("name", "name must be at most 120 characters")
	}
	if phase == nil {
		verr.Add("phase", "phase is required")
	}
	if err := verr.orNil(); err != nil {
		return Competition{}, err
	}
	return Competition{ID: id, Name: name, Phase: phase, CreatedAt: now}, nil
}

// InitialBracket returns the bracket a new competition starts with.
func (c Competition) InitialBracket() (Bracket, bool) {
	ko, ok := c.Phase.(KnockoutPhase)
	if !ok {
		return Bracket{}, false
	}
	return NewEmptyBracket(ko.StartStage), true
}
