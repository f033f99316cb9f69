package competitiondomain

import (
	"fmt"
	"strings"
)

type PhaseKind string

const (
	PhaseLeague   PhaseKind = "LEAGUE"
	PhaseKnockout PhaseKind = "KNOCKOUT"
)

// Phase is the progression format of a competition: LeaguePhase or
// KnockoutPhase.
type Phase interface {
	Kind() PhaseKind
	isPhase()
}

// LeaguePhase plays numbered rounds 1..MaxRounds.
type LeaguePhase struct {
	MaxRounds int
}

// KnockoutPhase plays a bracket from StartStage to FINAL.
type KnockoutPhase struct {
	StartStage StageType
}

func (LeaguePhase) Kind() PhaseKind   { return PhaseLeague }
func (KnockoutPhase) Kind() PhaseKind { return PhaseKnockout }

func (LeaguePhase) isPhase()   {}
func (KnockoutPhase) isPhase() {}

// HasRound reports whether n is a round of the league.
func (p LeaguePhase) HasRound(n int) bool {
	return n >= 1 && n <= p.MaxRounds
}

// PhaseSpec is the wire form of a phase in a create request.
type PhaseSpec struct {
	Kind       string `json:"kind"`
	MaxRounds  int    `json:"maxRounds,omitempty"`
	StartStage string `json:"startStage,omitempty"`
}

// ParsePhase validates spec and builds the phase it describes.
func ParsePhase(spec PhaseSpec) (Phase, error) {
	verr := NewValidationError()
	switch PhaseKind(strings.ToUpper(spec.Kind)) {
	case PhaseLeague:
		if spec.MaxRounds < 1 {
			verr.Add("phase.maxRounds", "league must have at least 1 round")
			return nil, verr
		}
		return LeaguePhase{MaxRounds: spec.MaxRounds}, nil
	case PhaseKnockout:
		st, ok := ParseStageType(spec.StartStage)
		if !ok {
			verr.Add("phase.startStage", unknownStageMessage(spec.StartStage))
			return nil, verr
		}
		return KnockoutPhase{StartStage: st}, nil
	default:
		verr.Addf("phase.kind", "unknown phase kind %q", spec.Kind)
		return nil, verr
	}
}

// Spec renders p in its wire form.
func Spec(p Phase) PhaseSpec {
	switch ph := p.(type) {
	case LeaguePhase:
		return PhaseSpec{Kind: string(PhaseLeague), MaxRounds: ph.MaxRounds}
	case KnockoutPhase:
		return PhaseSpec{Kind: string(PhaseKnockout), StartStage: string(ph.StartStage)}
	default:
		panic(fmt.Sprintf("unhandled phase %T", p))
	}
}
