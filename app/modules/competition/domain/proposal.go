package competitiondomain

import "github.com/google/uuid"

// BracketProposal is the unvalidated bracket submitted by a client.
type BracketProposal struct {
	Stages []StageProposal `json:"stages"`
}

type StageProposal struct {
	Stage string         `json:"stage"`
	Slots []SlotProposal `json:"slots"`
}

type SlotProposal struct {
	Type      string     `json:"type"`
	TeamID    *uuid.UUID `json:"teamId,omitempty"`
	FirstLeg  *uuid.UUID `json:"firstLeg,omitempty"`
	SecondLeg *uuid.UUID `json:"secondLeg,omitempty"`
}
