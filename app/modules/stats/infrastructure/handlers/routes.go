package statshandlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the read-only standings endpoints on r.
func RegisterRoutes(r chi.Router, h Handlers) {
	r.Get("/{competitionID}", h.HandleHTTPStandings)
	r.Get("/{competitionID}/xlsx", h.HandleHTTPStandingsXLSX)
	r.Get("/{competitionID}/chart", h.HandleHTTPStandingsChart)
	r.Get("/{competitionID}/players", h.HandleHTTPPlayerStats)
}
