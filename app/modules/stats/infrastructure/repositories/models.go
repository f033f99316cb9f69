package statsdb

import (
	"time"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TeamStats is the cumulative row of a team in one competition.
type TeamStats struct {
	bun.BaseModel `bun:"table:team_stats,alias:ts"`

	CompetitionID uuid.UUID `bun:"competition_id,pk,type:uuid"`
	TeamID        uuid.UUID `bun:"team_id,pk,type:uuid"`
	MatchesPlayed int       `bun:"matches_played,notnull"`
	Wins          int       `bun:"wins,notnull"`
	Draws         int       `bun:"draws,notnull"`
	Losses        int       `bun:"losses,notnull"`
	GoalsScored   int       `bun:"goals_scored,notnull"`
	GoalsConceded int       `bun:"goals_conceded,notnull"`
	Points        int       `bun:"points,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// PlayerStats is the cumulative row of a player for one team in one
// competition.
type PlayerStats struct {
	bun.BaseModel `bun:"table:player_stats,alias:ps"`

	CompetitionID uuid.UUID `bun:"competition_id,pk,type:uuid"`
	TeamID        uuid.UUID `bun:"team_id,pk,type:uuid"`
	PlayerID      uuid.UUID `bun:"player_id,pk,type:uuid"`
	PlayerName    string    `bun:"player_name,notnull"`
	Goals         int       `bun:"goals,notnull"`
	Assists       int       `bun:"assists,notnull"`
	YellowCards   int       `bun:"yellow_cards,notnull"`
	RedCards      int       `bun:"red_cards,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// AppliedEvent records a match event whose deltas were committed.
type AppliedEvent struct {
	bun.BaseModel `bun:"table:stats_applied_events,alias:sae"`

	EventID       string    `bun:"event_id,pk"`
	CompetitionID uuid.UUID `bun:"competition_id,notnull,type:uuid"`
	Kind          string    `bun:"kind,notnull"`
	AppliedAt     time.Time `bun:"applied_at,nullzero,notnull,default:current_timestamp"`
}

func (r *TeamStats) ToDomain() statsdomain.TeamStats {
	return statsdomain.TeamStats{
		CompetitionID: r.CompetitionID,
		TeamID:        r.TeamID,
		MatchesPlayed: r.MatchesPlayed,
		Wins:          r.Wins,
		Draws:         r.Draws,
		Losses:        r.Losses,
		GoalsScored:   r.GoalsScored,
		GoalsConceded: r.GoalsConceded,
		Points:        r.Points,
	}
}

func NewTeamStatsRow(s statsdomain.TeamStats, now time.Time) *TeamStats {
	return &TeamStats{
		CompetitionID: s.CompetitionID,
		TeamID:        s.TeamID,
		MatchesPlayed: s.MatchesPlayed,
		Wins:          s.Wins,
		Draws:         s.Draws,
		Losses:        s.Losses,
		GoalsScored:   s.GoalsScored,
		GoalsConceded: s.GoalsConceded,
		Points:        s.Points,
		UpdatedAt:     now,
	}
}

func (r *PlayerStats) ToDomain() statsdomain.PlayerStats {
	return statsdomain.PlayerStats{
		CompetitionID: r.CompetitionID,
		TeamID:        r.TeamID,
		PlayerID:      r.PlayerID,
		PlayerName:    r.PlayerName,
		Goals:         r.Goals,
		Assists:       r.Assists,
		YellowCards:   r.YellowCards,
		RedCards:      r.RedCards,
	}
}

func NewPlayerStatsRow(s statsdomain.PlayerStats, now time.Time) *PlayerStats {
	return &PlayerStats{
		CompetitionID: s.CompetitionID,
		TeamID:        s.TeamID,
		PlayerID:      s.PlayerID,
		PlayerName:    s.PlayerName,
		Goals:         s.Goals,
		Assists:       s.Assists,
		YellowCards:   s.YellowCards,
		RedCards:      s.RedCards,
		UpdatedAt:     now,
	}
}

// mergeStandings returns one row per enrolled team, zero-filled for teams
// without a stored row, followed by stored rows of teams no longer enrolled.
func mergeStandings(competitionID uuid.UUID, enrolled []uuid.UUID, stored []TeamStats) []statsdomain.TeamStats {
	byTeam := make(map[uuid.UUID]statsdomain.TeamStats, len(stored))
	for i := range stored {
		byTeam[stored[i].TeamID] = stored[i].ToDomain()
	}

	out := make([]statsdomain.TeamStats, 0, len(enrolled)+len(stored))
	seen := make(map[uuid.UUID]bool, len(enrolled))
	for _, id := range enrolled {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := byTeam[id]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, statsdomain.NewTeamStats(competitionID, id))
	}
	for i := range stored {
		if !seen[stored[i].TeamID] {
			out = append(out, stored[i].ToDomain())
		}
	}
	return out
}
