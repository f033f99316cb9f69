package competitiondomain

import "github.com/google/uuid"

// MaxMatchesPerRound bounds the size of one league round.
const MaxMatchesPerRound = 18

// Round is a numbered batch of league matches. An empty MatchIDs means the
// round is unassigned.
type Round struct {
	CompetitionID uuid.UUID   `json:"competitionId"`
	Number        int         `json:"roundNumber"`
	MatchIDs      []uuid.UUID `json:"matchIds"`
}

func (r Round) Empty() bool { return len(r.MatchIDs) == 0 }

// ValidateRoundMatches checks the match list of an assignment request.
func ValidateRoundMatches(ids []uuid.UUID) error {
	verr := NewValidationError()
	if len(ids) < 1 || len(ids) > MaxMatchesPerRound {
		verr.Add("matchIds", "round must contain between 1 and 18 matches")
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add("matchIds", msgMatchesRepeat)
			break
		}
		seen[id] = true
	}
	return verr.orNil()
}

// AssignRound applies an assignment of ids to round number of a competition
// in phase, given the round as currently stored. Phase, round and occupancy
// are checked before the payload, so an occupied round reports
// ErrRoundNotEmpty whatever ids are sent.
func AssignRound(phase Phase, current Round, number int, ids []uuid.UUID) (Round, error) {
	if err := CheckLeagueRound(phase, number); err != nil {
		return Round{}, err
	}
	if !current.Empty() {
		return Round{}, ErrRoundNotEmpty
	}
	if err := ValidateRoundMatches(ids); err != nil {
		return Round{}, err
	}
	assigned := make([]uuid.UUID, len(ids))
	copy(assigned, ids)
	return Round{CompetitionID: current.CompetitionID, Number: number, MatchIDs: assigned}, nil
}

// UnassignRound clears round number. Clearing an empty round is allowed.
func UnassignRound(phase Phase, competitionID uuid.UUID, number int) (Round, error) {
	if err := CheckLeagueRound(phase, number); err != nil {
		return Round{}, err
	}
	return Round{CompetitionID: competitionID, Number: number, MatchIDs: []uuid.UUID{}}, nil
}

// CheckLeagueRound reports whether number addresses a round of phase.
func CheckLeagueRound(phase Phase, number int) error {
	league, ok := phase.(LeaguePhase)
	if !ok {
		return ErrPhaseNotFound
	}
	if !league.HasRound(number) {
		return ErrRoundNotFound
	}
	return nil
}
