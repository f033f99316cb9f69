// Package competitionevents defines the topics and payloads of the
// competition module.
package competitionevents

import (
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/google/uuid"
)

// Bracket topics.
const (
	// BracketUpsertRequestedV1 asks for the bracket of a competition to be
	// replaced in full.
	BracketUpsertRequestedV1 = "competition.bracket.upsert.requested.v1"
	// BracketUpdatedV1 announces a stored bracket.
	BracketUpdatedV1 = "competition.bracket.updated.v1"
	// BracketRejectedV1 reports a bracket that failed validation or could
	// not be applied.
	BracketRejectedV1 = "competition.bracket.rejected.v1"
)

// Round topics.
const (
	RoundAssignRequestedV1   = "competition.round.assign.requested.v1"
	RoundAssignedV1          = "competition.round.assigned.v1"
	RoundAssignFailedV1      = "competition.round.assign.failed.v1"
	RoundUnassignRequestedV1 = "competition.round.unassign.requested.v1"
	RoundUnassignedV1        = "competition.round.unassigned.v1"
)

// Failure reasons carried by rejected and failed payloads.
const (
	ReasonValidationFailed    = "VALIDATION_FAILED"
	ReasonCompetitionNotFound = "COMPETITION_NOT_FOUND"
	ReasonPhaseNotFound       = "PHASE_NOT_FOUND"
	ReasonRoundNotFound       = "ROUND_NOT_FOUND"
	ReasonRoundNotEmpty       = "ROUND_NOT_EMPTY"
)

type BracketUpsertRequestedPayloadV1 struct {
	CompetitionID uuid.UUID                         `json:"competition_id"`
	RequestedBy   string                            `json:"requested_by,omitempty"`
	Bracket       competitiondomain.BracketProposal `json:"bracket"`
}

type BracketUpdatedPayloadV1 struct {
	CompetitionID uuid.UUID                         `json:"competition_id"`
	Bracket       competitiondomain.BracketProposal `json:"bracket"`
}

type BracketRejectedPayloadV1 struct {
	CompetitionID uuid.UUID           `json:"competition_id"`
	Reason        string              `json:"reason"`
	Violations    map[string][]string `json:"violations,omitempty"`
}

type RoundAssignRequestedPayloadV1 struct {
	CompetitionID uuid.UUID   `json:"competition_id"`
	RoundNumber   int         `json:"round_number"`
	MatchIDs      []uuid.UUID `json:"match_ids"`
}

type RoundAssignedPayloadV1 struct {
	CompetitionID uuid.UUID   `json:"competition_id"`
	RoundNumber   int         `json:"round_number"`
	MatchIDs      []uuid.UUID `json:"match_ids"`
}

type RoundAssignFailedPayloadV1 struct {
	CompetitionID uuid.UUID           `json:"competition_id"`
	RoundNumber   int                 `json:"round_number"`
	Reason        string              `json:"reason"`
	Violations    map[string][]string `json:"violations,omitempty"`
}

type RoundUnassignRequestedPayloadV1 struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	RoundNumber   int       `json:"round_number"`
}

type RoundUnassignedPayloadV1 struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	RoundNumber   int       `json:"round_number"`
}
