package competitionhandlers

import (
	"context"
	"net/http"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
)

// Handlers defines the interface for competition event and HTTP handlers.
type Handlers interface {
	// HandleBracketUpsertRequested replaces a knockout bracket.
	HandleBracketUpsertRequested(ctx context.Context, payload *competitionevents.BracketUpsertRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRoundAssignRequested assigns matches to an empty league round.
	HandleRoundAssignRequested(ctx context.Context, payload *competitionevents.RoundAssignRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRoundUnassignRequested clears a league round.
	HandleRoundUnassignRequested(ctx context.Context, payload *competitionevents.RoundUnassignRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPCreateCompetition(w http.ResponseWriter, r *http.Request)
	HandleHTTPGetCompetition(w http.ResponseWriter, r *http.Request)
	HandleHTTPEnrollTeam(w http.ResponseWriter, r *http.Request)
	HandleHTTPListTeams(w http.ResponseWriter, r *http.Request)
	HandleHTTPGetBracket(w http.ResponseWriter, r *http.Request)
	HandleHTTPPutBracket(w http.ResponseWriter, r *http.Request)
	HandleHTTPGetRound(w http.ResponseWriter, r *http.Request)
	HandleHTTPPutRound(w http.ResponseWriter, r *http.Request)
	HandleHTTPDeleteRound(w http.ResponseWriter, r *http.Request)
}
