package statsdb

import (
	"testing"
	"time"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamStatsRowRoundTrip(t *testing.T) {
	s := statsdomain.TeamStats{
		CompetitionID: uuid.New(),
		TeamID:        uuid.New(),
		MatchesPlayed: 3,
		Wins:          2,
		Losses:        1,
		GoalsScored:   7,
		GoalsConceded: 4,
		Points:        6,
	}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	row := NewTeamStatsRow(s, now)
	assert.Equal(t, now, row.UpdatedAt)
	if diff := cmp.Diff(s, row.ToDomain()); diff != "" {
		t.Fatalf("team stats mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeStandings(t *testing.T) {
	competitionID := uuid.New()
	a, b, c, gone := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	stored := []TeamStats{
		{CompetitionID: competitionID, TeamID: b, MatchesPlayed: 1, Wins: 1, Points: 3},
		{CompetitionID: competitionID, TeamID: gone, MatchesPlayed: 1, Losses: 1},
	}

	got := mergeStandings(competitionID, []uuid.UUID{a, b, c, a}, stored)
	require.Len(t, got, 4)

	assert.Equal(t, statsdomain.NewTeamStats(competitionID, a), got[0])
	assert.Equal(t, 3, got[1].Points)
	assert.Equal(t, c, got[2].TeamID)
	assert.Zero(t, got[2].MatchesPlayed)
	assert.Equal(t, gone, got[3].TeamID)
	assert.Equal(t, 1, got[3].Losses)
}

func TestMergeStandings_NoTeams(t *testing.T) {
	got := mergeStandings(uuid.New(), nil, nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
