package statshandlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type standingRow struct {
	Position int `json:"position"`
	statsdomain.TeamStats
	GoalDifference int `json:"goalDifference"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newStandingRows(rows []statsdomain.TeamStats) []standingRow {
	out := make([]standingRow, len(rows))
	for i, s := range rows {
		out[i] = standingRow{Position: i + 1, TeamStats: s, GoalDifference: s.GoalDifference()}
	}
	return out
}

// HandleHTTPStandings handles GET /api/standings/{competitionID}.
func (h *StatsHandlers) HandleHTTPStandings(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.standings(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, newStandingRows(rows))
}

// HandleHTTPStandingsXLSX handles GET /api/standings/{competitionID}/xlsx.
func (h *StatsHandlers) HandleHTTPStandingsXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.standings(w, r)
	if !ok {
		return
	}
	data, err := statsservice.RenderStandingsXLSX(rows)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleHTTPStandingsChart handles GET /api/standings/{competitionID}/chart.
func (h *StatsHandlers) HandleHTTPStandingsChart(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.standings(w, r)
	if !ok {
		return
	}
	data, err := statsservice.RenderStandingsChart("Points", rows)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleHTTPPlayerStats handles GET /api/standings/{competitionID}/players.
func (h *StatsHandlers) HandleHTTPPlayerStats(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	rows, err := h.service.GetPlayerStats(r.Context(), competitionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, rows)
}

func (h *StatsHandlers) standings(w http.ResponseWriter, r *http.Request) ([]statsdomain.TeamStats, bool) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return nil, false
	}
	rows, err := h.service.GetStandings(r.Context(), competitionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return nil, false
	}
	return rows, true
}

func (h *StatsHandlers) competitionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "competitionID"))
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid competition id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *StatsHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, statsdomain.ErrCompetitionNotFound) {
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	h.logger.ErrorContext(r.Context(), "Stats request failed",
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (h *StatsHandlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write response", attr.Error(err))
	}
}
