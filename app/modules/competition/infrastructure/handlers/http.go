package competitionhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type createCompetitionRequest struct {
	Name  string                      `json:"name"`
	Phase competitiondomain.PhaseSpec `json:"phase"`
}

type competitionResponse struct {
	ID        uuid.UUID                   `json:"id"`
	Name      string                      `json:"name"`
	Phase     competitiondomain.PhaseSpec `json:"phase"`
	CreatedAt time.Time                   `json:"createdAt"`
}

type enrollTeamRequest struct {
	TeamID uuid.UUID `json:"teamId"`
}

type teamsResponse struct {
	TeamIDs []uuid.UUID `json:"teamIds"`
}

type assignRoundRequest struct {
	MatchIDs []uuid.UUID `json:"matchIds"`
}

type errorResponse struct {
	Error      string              `json:"error"`
	Violations map[string][]string `json:"violations,omitempty"`
}

func newCompetitionResponse(c *competitiondomain.Competition) competitionResponse {
	return competitionResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phase:     competitiondomain.Spec(c.Phase),
		CreatedAt: c.CreatedAt,
	}
}

// HandleHTTPCreateCompetition handles POST /api/competitions.
func (h *CompetitionHandlers) HandleHTTPCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req createCompetitionRequest
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	phase, err := competitiondomain.ParsePhase(req.Phase)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	competition, err := h.service.CreateCompetition(r.Context(), req.Name, phase)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/competitions/"+competition.ID.String())
	h.writeJSON(w, r, http.StatusCreated, newCompetitionResponse(competition))
}

// HandleHTTPGetCompetition handles GET /api/competitions/{competitionID}.
func (h *CompetitionHandlers) HandleHTTPGetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	competition, err := h.service.GetCompetition(r.Context(), competitionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newCompetitionResponse(competition))
}

// HandleHTTPEnrollTeam handles POST /api/competitions/{competitionID}/teams.
func (h *CompetitionHandlers) HandleHTTPEnrollTeam(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	var req enrollTeamRequest
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := h.service.EnrollTeam(r.Context(), competitionID, req.TeamID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHTTPListTeams handles GET /api/competitions/{competitionID}/teams.
func (h *CompetitionHandlers) HandleHTTPListTeams(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	teams, err := h.service.ListTeams(r.Context(), competitionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, teamsResponse{TeamIDs: teams})
}

// HandleHTTPGetBracket handles GET /api/competitions/{competitionID}/bracket.
func (h *CompetitionHandlers) HandleHTTPGetBracket(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	bracket, err := h.service.GetBracket(r.Context(), competitionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, bracket.Proposal())
}

// HandleHTTPPutBracket handles PUT /api/competitions/{competitionID}/bracket.
func (h *CompetitionHandlers) HandleHTTPPutBracket(w http.ResponseWriter, r *http.Request) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return
	}
	var proposal competitiondomain.BracketProposal
	if err := readJSON(w, r, &proposal); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	bracket, err := h.service.UpsertBracket(r.Context(), competitionID, proposal)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	body := bracket.Proposal()
	h.broadcast(competitionID, competitionws.MessageBracketUpdated, body)
	h.publish(r.Context(), scoped(competitionevents.BracketUpdatedV1, competitionID, &competitionevents.BracketUpdatedPayloadV1{
		CompetitionID: competitionID,
		Bracket:       body,
	}))
	h.writeJSON(w, r, http.StatusOK, body)
}

// HandleHTTPGetRound handles GET /api/competitions/{competitionID}/rounds/{roundNumber}.
func (h *CompetitionHandlers) HandleHTTPGetRound(w http.ResponseWriter, r *http.Request) {
	competitionID, roundNumber, ok := h.roundParams(w, r)
	if !ok {
		return
	}
	round, err := h.service.GetRound(r.Context(), competitionID, roundNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, round)
}

// HandleHTTPPutRound handles PUT /api/competitions/{competitionID}/rounds/{roundNumber}.
func (h *CompetitionHandlers) HandleHTTPPutRound(w http.ResponseWriter, r *http.Request) {
	competitionID, roundNumber, ok := h.roundParams(w, r)
	if !ok {
		return
	}
	var req assignRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	round, err := h.service.AssignRound(r.Context(), competitionID, roundNumber, req.MatchIDs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.broadcast(competitionID, competitionws.MessageRoundAssigned, round)
	h.publish(r.Context(), scoped(competitionevents.RoundAssignedV1, competitionID, &competitionevents.RoundAssignedPayloadV1{
		CompetitionID: round.CompetitionID,
		RoundNumber:   round.Number,
		MatchIDs:      round.MatchIDs,
	}))
	h.writeJSON(w, r, http.StatusOK, round)
}

// HandleHTTPDeleteRound handles DELETE /api/competitions/{competitionID}/rounds/{roundNumber}.
func (h *CompetitionHandlers) HandleHTTPDeleteRound(w http.ResponseWriter, r *http.Request) {
	competitionID, roundNumber, ok := h.roundParams(w, r)
	if !ok {
		return
	}
	round, err := h.service.UnassignRound(r.Context(), competitionID, roundNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.broadcast(competitionID, competitionws.MessageRoundUnassigned, round)
	h.publish(r.Context(), scoped(competitionevents.RoundUnassignedV1, competitionID, &competitionevents.RoundUnassignedPayloadV1{
		CompetitionID: competitionID,
		RoundNumber:   roundNumber,
	}))
	h.writeJSON(w, r, http.StatusOK, round)
}

func (h *CompetitionHandlers) competitionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "competitionID"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, errors.New("invalid competition id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *CompetitionHandlers) roundParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	competitionID, ok := h.competitionID(w, r)
	if !ok {
		return uuid.Nil, 0, false
	}
	roundNumber, err := strconv.Atoi(chi.URLParam(r, "roundNumber"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, errors.New("invalid round number"))
		return uuid.Nil, 0, false
	}
	return competitionID, roundNumber, true
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *CompetitionHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *competitiondomain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:      competitiondomain.ErrValidationFailed.Error(),
			Violations: verr.Violations,
		})
	case errors.Is(err, competitiondomain.ErrCompetitionNotFound),
		errors.Is(err, competitiondomain.ErrPhaseNotFound),
		errors.Is(err, competitiondomain.ErrRoundNotFound),
		errors.Is(err, competitiondomain.ErrTeamNotFound):
		h.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, competitiondomain.ErrRoundNotEmpty):
		h.writeError(w, r, http.StatusConflict, err)
	default:
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.String("method", r.Method),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		h.writeError(w, r, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}

func (h *CompetitionHandlers) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func (h *CompetitionHandlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write response", attr.Error(err))
	}
}

// readJSON decodes a single JSON value into dst, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
