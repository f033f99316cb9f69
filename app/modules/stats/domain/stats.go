package statsdomain

import (
	"sort"

	"github.com/google/uuid"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

// TeamStats are the cumulative figures of a team in one competition.
type TeamStats struct {
	CompetitionID uuid.UUID `json:"competitionId"`
	TeamID        uuid.UUID `json:"teamId"`
	MatchesPlayed int       `json:"matchesPlayed"`
	Wins          int       `json:"wins"`
	Draws         int       `json:"draws"`
	Losses        int       `json:"losses"`
	GoalsScored   int       `json:"goalsScored"`
	GoalsConceded int       `json:"goalsConceded"`
	Points        int       `json:"points"`
}

// NewTeamStats returns the zero row of a team.
func NewTeamStats(competitionID, teamID uuid.UUID) TeamStats {
	return TeamStats{CompetitionID: competitionID, TeamID: teamID}
}

func (t TeamStats) GoalDifference() int { return t.GoalsScored - t.GoalsConceded }

// PlayerStats are the cumulative figures of a player for one team in one
// competition.
type PlayerStats struct {
	CompetitionID uuid.UUID `json:"competitionId"`
	TeamID        uuid.UUID `json:"teamId"`
	PlayerID      uuid.UUID `json:"playerId"`
	PlayerName    string    `json:"playerName,omitempty"`
	Goals         int       `json:"goals"`
	Assists       int       `json:"assists"`
	YellowCards   int       `json:"yellowCards"`
	RedCards      int       `json:"redCards"`
}

// NewPlayerStats returns the zero row of a player.
func NewPlayerStats(competitionID, teamID uuid.UUID, player PlayerRef) PlayerStats {
	return PlayerStats{
		CompetitionID: competitionID,
		TeamID:        teamID,
		PlayerID:      player.ID,
		PlayerName:    player.Name,
	}
}

// SortStandings orders rows by points, goal difference and goals scored,
// all descending, breaking remaining ties by team id.
func SortStandings(rows []TeamStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsScored != b.GoalsScored {
			return a.GoalsScored > b.GoalsScored
		}
		return a.TeamID.String() < b.TeamID.String()
	})
}

// SortScorers orders player rows by goals then assists, descending.
func SortScorers(rows []PlayerStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		if a.Assists != b.Assists {
			return a.Assists > b.Assists
		}
		return a.PlayerID.String() < b.PlayerID.String()
	})
}
