package statshandlers

import (
	"context"
	"net/http"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
)

// Handlers defines the interface for stats event and HTTP handlers.
type Handlers interface {
	// HandleMatchEvent applies one match event. Dropped events are
	// acknowledged; infrastructure errors are returned for redelivery.
	HandleMatchEvent(ctx context.Context, payload *matchevents.MatchEventPayloadV1) ([]handlerwrapper.Result, error)

	// ReplayMatchEvent re-attempts an event dropped for a failed lookup.
	ReplayMatchEvent(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPStandings(w http.ResponseWriter, r *http.Request)
	HandleHTTPStandingsXLSX(w http.ResponseWriter, r *http.Request)
	HandleHTTPStandingsChart(w http.ResponseWriter, r *http.Request)
	HandleHTTPPlayerStats(w http.ResponseWriter, r *http.Request)
}
