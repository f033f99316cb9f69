package statsdomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyTeams(t *testing.T, eff Effect, rows map[uuid.UUID]TeamStats) {
	t.Helper()
	for _, u := range eff.Teams {
		rows[u.TeamID] = u.Delta.Apply(rows[u.TeamID])
	}
}

func TestPlanStatus_HomeWinFourThree(t *testing.T) {
	competitionID, home, away := uuid.New(), uuid.New(), uuid.New()

	eff, err := Plan(StatusEvent{
		EventHeader: EventHeader{CompetitionID: competitionID, MatchID: uuid.New(), Minute: 90},
		Status:      StatusFinished,
		Result:      ResultHomeWin,
		HomeTeamID:  home,
		AwayTeamID:  away,
		HomeGoals:   4,
		AwayGoals:   3,
	})
	require.NoError(t, err)

	rows := map[uuid.UUID]TeamStats{
		home: NewTeamStats(competitionID, home),
		away: NewTeamStats(competitionID, away),
	}
	applyTeams(t, eff, rows)

	want := map[uuid.UUID]TeamStats{
		home: {CompetitionID: competitionID, TeamID: home, MatchesPlayed: 1, Wins: 1, Points: 3, GoalsScored: 4, GoalsConceded: 3},
		away: {CompetitionID: competitionID, TeamID: away, MatchesPlayed: 1, Losses: 1, Points: 0, GoalsScored: 3, GoalsConceded: 4},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("team stats mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanStatus(t *testing.T) {
	competitionID, home, away := uuid.New(), uuid.New(), uuid.New()
	base := StatusEvent{
		EventHeader: EventHeader{CompetitionID: competitionID},
		Status:      StatusFinished,
		HomeTeamID:  home,
		AwayTeamID:  away,
	}

	tests := []struct {
		name      string
		mutate    func(*StatusEvent)
		wantHome  TeamDelta
		wantAway  TeamDelta
		wantNoOp  bool
		wantError bool
	}{
		{
			name: "away win",
			mutate: func(e *StatusEvent) {
				e.Result, e.HomeGoals, e.AwayGoals = ResultAwayWin, 0, 2
			},
			wantHome: TeamDelta{MatchesPlayed: 1, Losses: 1, GoalsConceded: 2},
			wantAway: TeamDelta{MatchesPlayed: 1, Wins: 1, Points: 3, GoalsScored: 2},
		},
		{
			name: "draw",
			mutate: func(e *StatusEvent) {
				e.Result, e.HomeGoals, e.AwayGoals = ResultDraw, 1, 1
			},
			wantHome: TeamDelta{MatchesPlayed: 1, Draws: 1, Points: 1, GoalsScored: 1, GoalsConceded: 1},
			wantAway: TeamDelta{MatchesPlayed: 1, Draws: 1, Points: 1, GoalsScored: 1, GoalsConceded: 1},
		},
		{
			name:     "no result is a no-op",
			mutate:   func(e *StatusEvent) { e.Result = ResultNoResult },
			wantNoOp: true,
		},
		{
			name:     "live status is a no-op",
			mutate:   func(e *StatusEvent) { e.Status, e.Result = StatusLive, ResultHomeWin },
			wantNoOp: true,
		},
		{
			name:      "same team on both sides",
			mutate:    func(e *StatusEvent) { e.Result, e.AwayTeamID = ResultDraw, home },
			wantError: true,
		},
		{
			name:      "unknown result",
			mutate:    func(e *StatusEvent) { e.Result = "ABANDONED" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := base
			tt.mutate(&ev)

			eff, err := Plan(ev)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			if tt.wantNoOp {
				assert.True(t, eff.Empty())
				assert.NotEmpty(t, eff.Reason)
				return
			}
			require.Len(t, eff.Teams, 2)
			assert.Equal(t, ev.HomeTeamID, eff.Teams[0].TeamID)
			assert.Equal(t, tt.wantHome, eff.Teams[0].Delta)
			assert.Equal(t, tt.wantAway, eff.Teams[1].Delta)
		})
	}
}

func TestPlanPlayerEvents(t *testing.T) {
	header := EventHeader{CompetitionID: uuid.New(), MatchID: uuid.New(), Minute: 33}
	team, otherTeam := uuid.New(), uuid.New()
	scorer := PlayerRef{ID: uuid.New(), Name: "Scorer"}
	assist := PlayerRef{ID: uuid.New(), Name: "Provider"}

	tests := []struct {
		name      string
		event     MatchEvent
		want      []PlayerUpdate
		wantError bool
	}{
		{
			name:  "yellow card",
			event: CardEvent{EventHeader: header, TeamID: team, Player: scorer, Card: CardYellow},
			want:  []PlayerUpdate{{TeamID: team, Player: scorer, Delta: PlayerDelta{YellowCards: 1}}},
		},
		{
			name:  "second yellow counts as red",
			event: CardEvent{EventHeader: header, TeamID: team, Player: scorer, Card: CardSecondYellow},
			want:  []PlayerUpdate{{TeamID: team, Player: scorer, Delta: PlayerDelta{RedCards: 1}}},
		},
		{
			name:  "direct red",
			event: CardEvent{EventHeader: header, TeamID: team, Player: scorer, Card: CardDirectRed},
			want:  []PlayerUpdate{{TeamID: team, Player: scorer, Delta: PlayerDelta{RedCards: 1}}},
		},
		{
			name:  "goal without assist",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer},
			want:  []PlayerUpdate{{TeamID: team, Player: scorer, Delta: PlayerDelta{Goals: 1}}},
		},
		{
			name:  "goal with assist is two independent updates",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer, Assist: &assist},
			want: []PlayerUpdate{
				{TeamID: team, Player: scorer, Delta: PlayerDelta{Goals: 1}},
				{TeamID: team, Player: assist, Delta: PlayerDelta{Assists: 1}},
			},
		},
		{
			name:  "assist credited to its own team",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer, Assist: &assist, AssistTeamID: otherTeam},
			want: []PlayerUpdate{
				{TeamID: team, Player: scorer, Delta: PlayerDelta{Goals: 1}},
				{TeamID: otherTeam, Player: assist, Delta: PlayerDelta{Assists: 1}},
			},
		},
		{
			name:  "own goal credits the assist to the assisting team",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer, Assist: &assist, AssistTeamID: otherTeam, OwnGoal: true},
			want:  []PlayerUpdate{{TeamID: otherTeam, Player: assist, Delta: PlayerDelta{Assists: 1}}},
		},
		{
			name:  "own goal assist without a team is not credited to the scorer's team",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer, Assist: &assist, OwnGoal: true},
		},
		{
			name:  "own goal alone is a no-op",
			event: GoalEvent{EventHeader: header, TeamID: team, Scorer: scorer, OwnGoal: true},
		},
		{
			name:  "converted penalty in play",
			event: PenaltyEvent{EventHeader: header, TeamID: team, Taker: scorer, Scored: true},
			want:  []PlayerUpdate{{TeamID: team, Player: scorer, Delta: PlayerDelta{Goals: 1}}},
		},
		{
			name:  "missed penalty",
			event: PenaltyEvent{EventHeader: header, TeamID: team, Taker: scorer},
		},
		{
			name:  "converted shootout kick",
			event: PenaltyEvent{EventHeader: header, TeamID: team, Taker: scorer, Scored: true, Shootout: true},
		},
		{
			name:  "commentary",
			event: CommentaryEvent{EventHeader: header, Text: "kick-off"},
		},
		{
			name:  "substitution",
			event: SubstitutionEvent{EventHeader: header, TeamID: team, PlayerIn: assist, PlayerOut: scorer},
		},
		{
			name:      "card without player",
			event:     CardEvent{EventHeader: header, TeamID: team, Card: CardYellow},
			wantError: true,
		},
		{
			name:      "unknown card",
			event:     CardEvent{EventHeader: header, TeamID: team, Player: scorer, Card: "GREEN"},
			wantError: true,
		},
		{
			name:      "missing competition",
			event:     GoalEvent{TeamID: team, Scorer: scorer},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, err := Plan(tt.event)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, eff.Teams)
			if len(tt.want) == 0 {
				assert.True(t, eff.Empty())
				assert.NotEmpty(t, eff.Reason)
				return
			}
			assert.Equal(t, tt.want, eff.Players)
		})
	}
}

func TestPlayerDeltaApply(t *testing.T) {
	s := PlayerStats{Goals: 2, Assists: 1, YellowCards: 1}
	got := PlayerDelta{Goals: 1, RedCards: 1}.Apply(s)
	assert.Equal(t, PlayerStats{Goals: 3, Assists: 1, YellowCards: 1, RedCards: 1}, got)
}

func TestSortStandings(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	d := uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	e := uuid.MustParse("00000000-0000-0000-0000-00000000000e")

	rows := []TeamStats{
		{TeamID: e, Points: 4, GoalsScored: 2, GoalsConceded: 2},
		{TeamID: d, Points: 4, GoalsScored: 3, GoalsConceded: 3},
		{TeamID: c, Points: 4, GoalsScored: 5, GoalsConceded: 1},
		{TeamID: b, Points: 4, GoalsScored: 2, GoalsConceded: 2},
		{TeamID: a, Points: 7},
	}
	SortStandings(rows)

	order := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		order = append(order, r.TeamID)
	}
	// a on points; c on goal difference; d on goals scored; b before e on id.
	assert.Equal(t, []uuid.UUID{a, c, d, b, e}, order)
}
