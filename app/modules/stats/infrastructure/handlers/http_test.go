package statshandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(svc *FakeStatsService) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/standings", func(r chi.Router) {
		RegisterRoutes(r, newTestHandlers(svc))
	})
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHTTPStandings(t *testing.T) {
	competitionID := uuid.New()
	leader, second := uuid.New(), uuid.New()

	svc := NewFakeStatsService()
	svc.GetStandingsFunc = func(context.Context, uuid.UUID) ([]statsdomain.TeamStats, error) {
		return []statsdomain.TeamStats{
			{CompetitionID: competitionID, TeamID: leader, MatchesPlayed: 1, Wins: 1, GoalsScored: 4, GoalsConceded: 3, Points: 3},
			{CompetitionID: competitionID, TeamID: second, MatchesPlayed: 1, Losses: 1, GoalsScored: 3, GoalsConceded: 4},
		}, nil
	}

	rec := get(t, newTestServer(svc), "/api/standings/"+competitionID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.EqualValues(t, 1, body[0]["position"])
	assert.Equal(t, leader.String(), body[0]["teamId"])
	assert.EqualValues(t, 1, body[0]["goalDifference"])
	assert.EqualValues(t, 3, body[0]["points"])
	assert.EqualValues(t, 2, body[1]["position"])
	assert.EqualValues(t, -1, body[1]["goalDifference"])
}

func TestHTTPStandings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{name: "invalid id", path: "/api/standings/nope", wantCode: http.StatusBadRequest},
		{name: "unknown competition", path: "/api/standings/" + uuid.NewString(), err: statsdomain.ErrCompetitionNotFound, wantCode: http.StatusNotFound},
		{name: "database failure", path: "/api/standings/" + uuid.NewString() + "/xlsx", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
		{name: "players of unknown competition", path: "/api/standings/" + uuid.NewString() + "/players", err: statsdomain.ErrCompetitionNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeStatsService()
			svc.GetStandingsFunc = func(context.Context, uuid.UUID) ([]statsdomain.TeamStats, error) { return nil, tt.err }
			svc.GetPlayerStatsFunc = func(context.Context, uuid.UUID) ([]statsdomain.PlayerStats, error) { return nil, tt.err }

			rec := get(t, newTestServer(svc), tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHTTPStandingsExports(t *testing.T) {
	competitionID := uuid.New()
	svc := NewFakeStatsService()
	svc.GetStandingsFunc = func(context.Context, uuid.UUID) ([]statsdomain.TeamStats, error) {
		return []statsdomain.TeamStats{
			{CompetitionID: competitionID, TeamID: uuid.New(), MatchesPlayed: 1, Draws: 1, Points: 1},
			{CompetitionID: competitionID, TeamID: uuid.New(), MatchesPlayed: 1, Draws: 1, Points: 1},
		}, nil
	}
	srv := newTestServer(svc)

	t.Run("xlsx", func(t *testing.T) {
		rec := get(t, srv, "/api/standings/"+competitionID.String()+"/xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "standings.xlsx")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("chart", func(t *testing.T) {
		rec := get(t, srv, "/api/standings/"+competitionID.String()+"/chart")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})
}

func TestHTTPPlayerStats(t *testing.T) {
	competitionID, player := uuid.New(), uuid.New()
	svc := NewFakeStatsService()
	svc.GetPlayerStatsFunc = func(context.Context, uuid.UUID) ([]statsdomain.PlayerStats, error) {
		return []statsdomain.PlayerStats{{CompetitionID: competitionID, PlayerID: player, PlayerName: "Nine", Goals: 7}}, nil
	}

	rec := get(t, newTestServer(svc), "/api/standings/"+competitionID.String()+"/players")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []statsdomain.PlayerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, 7, body[0].Goals)
	assert.Equal(t, "Nine", body[0].PlayerName)
	assert.Equal(t, []string{"GetPlayerStats"}, svc.Trace())
}
