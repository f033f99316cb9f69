package statsintegrationtests

import (
	"sync"
	"testing"

	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finished(competitionID, home, away uuid.UUID, result statsdomain.MatchResult, hg, ag int) statsdomain.StatusEvent {
	return statsdomain.StatusEvent{
		EventHeader: statsdomain.EventHeader{CompetitionID: competitionID, MatchID: uuid.New(), Minute: 90},
		Status:      statsdomain.StatusFinished,
		Result:      result,
		HomeTeamID:  home,
		AwayTeamID:  away,
		HomeGoals:   hg,
		AwayGoals:   ag,
	}
}

func TestApplyFinishedMatch(t *testing.T) {
	deps := SetupTestStatsService(t, true)
	teams := deps.Generator.GenerateTeams(3, 2)
	competitionID := deps.seedLeague(t, teams)
	home, away, idle := teams[0].ID, teams[1].ID, teams[2].ID

	res, err := deps.Service.ApplyMatchEvent(deps.Ctx, "evt-1", finished(competitionID, home, away, statsdomain.ResultHomeWin, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, statsservice.OutcomeApplied, res.Outcome)

	standings, err := deps.Service.GetStandings(deps.Ctx, competitionID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, statsdomain.TeamStats{CompetitionID: competitionID, TeamID: home, MatchesPlayed: 1, Wins: 1, GoalsScored: 4, GoalsConceded: 3, Points: 3}, standings[0])
	assert.Equal(t, idle, standings[1].TeamID)
	assert.Zero(t, standings[1].MatchesPlayed)
	assert.Equal(t, statsdomain.TeamStats{CompetitionID: competitionID, TeamID: away, MatchesPlayed: 1, Losses: 1, GoalsScored: 3, GoalsConceded: 4}, standings[2])

	t.Run("redelivery of the same event is a duplicate", func(t *testing.T) {
		res, err := deps.Service.ApplyMatchEvent(deps.Ctx, "evt-1", finished(competitionID, home, away, statsdomain.ResultHomeWin, 4, 3))
		require.NoError(t, err)
		assert.Equal(t, statsservice.OutcomeDuplicate, res.Outcome)

		again, err := deps.Service.GetStandings(deps.Ctx, competitionID)
		require.NoError(t, err)
		assert.Equal(t, standings, again)
	})

	t.Run("unknown team drops the whole event", func(t *testing.T) {
		_, err := deps.Service.ApplyMatchEvent(deps.Ctx, "evt-2", finished(competitionID, home, uuid.New(), statsdomain.ResultDraw, 0, 0))
		assert.ErrorIs(t, err, statsdomain.ErrUpstreamLookupFailed)

		again, err := deps.Service.GetStandings(deps.Ctx, competitionID)
		require.NoError(t, err)
		assert.Equal(t, standings, again)
	})

	t.Run("unknown competition", func(t *testing.T) {
		_, err := deps.Service.GetStandings(deps.Ctx, uuid.New())
		assert.ErrorIs(t, err, statsdomain.ErrCompetitionNotFound)
	})
}

func TestApplyPlayerEvents(t *testing.T) {
	deps := SetupTestStatsService(t, true)
	teams := deps.Generator.GenerateTeams(2, 3)
	competitionID := deps.seedLeague(t, teams)

	team := teams[0]
	scorer := statsdomain.PlayerRef{ID: team.Players[0].ID, Name: team.Players[0].Name}
	assist := statsdomain.PlayerRef{ID: team.Players[1].ID, Name: team.Players[1].Name}
	header := statsdomain.EventHeader{CompetitionID: competitionID, MatchID: uuid.New(), Minute: 12}

	events := []statsdomain.MatchEvent{
		statsdomain.GoalEvent{EventHeader: header, TeamID: team.ID, Scorer: scorer, Assist: &assist},
		statsdomain.PenaltyEvent{EventHeader: header, TeamID: team.ID, Taker: scorer, Scored: true},
		statsdomain.PenaltyEvent{EventHeader: header, TeamID: team.ID, Taker: scorer, Scored: true, Shootout: true},
		statsdomain.CardEvent{EventHeader: header, TeamID: team.ID, Player: assist, Card: statsdomain.CardYellow},
		statsdomain.CardEvent{EventHeader: header, TeamID: team.ID, Player: assist, Card: statsdomain.CardSecondYellow},
		statsdomain.CommentaryEvent{EventHeader: header, Text: "corner"},
	}
	want := []statsservice.Outcome{
		statsservice.OutcomeApplied,
		statsservice.OutcomeApplied,
		statsservice.OutcomeIgnored,
		statsservice.OutcomeApplied,
		statsservice.OutcomeApplied,
		statsservice.OutcomeIgnored,
	}

	for i, ev := range events {
		res, err := deps.Service.ApplyMatchEvent(deps.Ctx, uuid.NewString(), ev)
		require.NoError(t, err)
		assert.Equal(t, want[i], res.Outcome, "event %d", i)
	}

	players, err := deps.Service.GetPlayerStats(deps.Ctx, competitionID)
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Equal(t, scorer.ID, players[0].PlayerID)
	assert.Equal(t, 2, players[0].Goals)
	assert.Equal(t, scorer.Name, players[0].PlayerName)

	assert.Equal(t, assist.ID, players[1].PlayerID)
	assert.Equal(t, 1, players[1].Assists)
	assert.Equal(t, 1, players[1].YellowCards)
	assert.Equal(t, 1, players[1].RedCards)
}

func TestConcurrentEventsDoNotLoseUpdates(t *testing.T) {
	deps := SetupTestStatsService(t, true)
	teams := deps.Generator.GenerateTeams(2, 1)
	competitionID := deps.seedLeague(t, teams)

	const matches = 10
	var wg sync.WaitGroup
	errs := make([]error, matches)
	for i := range matches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = deps.Service.ApplyMatchEvent(deps.Ctx, uuid.NewString(),
				finished(competitionID, teams[0].ID, teams[1].ID, statsdomain.ResultDraw, 1, 1))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	standings, err := deps.Service.GetStandings(deps.Ctx, competitionID)
	require.NoError(t, err)
	for _, row := range standings {
		assert.Equal(t, matches, row.MatchesPlayed)
		assert.Equal(t, matches, row.Draws)
		assert.Equal(t, matches, row.Points)
	}
}

func TestWithoutDeduplicationRedeliveryCountsTwice(t *testing.T) {
	deps := SetupTestStatsService(t, false)
	teams := deps.Generator.GenerateTeams(2, 0)
	competitionID := deps.seedLeague(t, teams)

	ev := finished(competitionID, teams[0].ID, teams[1].ID, statsdomain.ResultAwayWin, 0, 1)
	for range 2 {
		res, err := deps.Service.ApplyMatchEvent(deps.Ctx, "same-id", ev)
		require.NoError(t, err)
		assert.Equal(t, statsservice.OutcomeApplied, res.Outcome)
	}

	standings, err := deps.Service.GetStandings(deps.Ctx, competitionID)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, teams[1].ID, standings[0].TeamID)
	assert.Equal(t, 6, standings[0].Points)
	assert.Equal(t, 2, standings[1].Losses)
}
