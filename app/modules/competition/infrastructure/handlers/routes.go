package competitionhandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the competition API on r. Mutating routes are
// wrapped in requireOperator.
func RegisterRoutes(r chi.Router, h Handlers, requireOperator func(http.Handler) http.Handler) {
	r.Get("/{competitionID}", h.HandleHTTPGetCompetition)
	r.Get("/{competitionID}/teams", h.HandleHTTPListTeams)
	r.Get("/{competitionID}/bracket", h.HandleHTTPGetBracket)
	r.Get("/{competitionID}/rounds/{roundNumber}", h.HandleHTTPGetRound)

	r.Group(func(r chi.Router) {
		r.Use(requireOperator)
		r.Post("/", h.HandleHTTPCreateCompetition)
		r.Post("/{competitionID}/teams", h.HandleHTTPEnrollTeam)
		r.Put("/{competitionID}/bracket", h.HandleHTTPPutBracket)
		r.Put("/{competitionID}/rounds/{roundNumber}", h.HandleHTTPPutRound)
		r.Delete("/{competitionID}/rounds/{roundNumber}", h.HandleHTTPDeleteRound)
	})
}
