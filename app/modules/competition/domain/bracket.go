package competitiondomain

import "github.com/google/uuid"

// Stage is one level of a knockout tree.
type Stage struct {
	Type  StageType
	Slots []Slot
}

// Bracket is the whole knockout tree of a competition. Stages are kept in
// the order they were proposed.
type Bracket struct {
	Stages []Stage
}

// NewEmptyBracket builds a bracket of Empty slots covering start to FINAL.
func NewEmptyBracket(start StageType) Bracket {
	stages := StagesFrom(start)
	b := Bracket{Stages: make([]Stage, 0, len(stages))}
	for _, st := range stages {
		slots := make([]Slot, st.SlotCount())
		for i := range slots {
			slots[i] = EmptySlot{}
		}
		b.Stages = append(b.Stages, Stage{Type: st, Slots: slots})
	}
	return b
}

// MatchIDs lists every leg referenced by the bracket, stage by stage.
func (b Bracket) MatchIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range b.Stages {
		for _, slot := range s.Slots {
			if t, ok := slot.(TakenSlot); ok {
				ids = append(ids, t.MatchIDs()...)
			}
		}
	}
	return ids
}

// Proposal renders the bracket in its wire shape.
func (b Bracket) Proposal() BracketProposal {
	p := BracketProposal{Stages: make([]StageProposal, 0, len(b.Stages))}
	for _, s := range b.Stages {
		sp := StageProposal{Stage: string(s.Type), Slots: make([]SlotProposal, 0, len(s.Slots))}
		for _, slot := range s.Slots {
			sp.Slots = append(sp.Slots, slotProposal(slot))
		}
		p.Stages = append(p.Stages, sp)
	}
	return p
}

func slotProposal(slot Slot) SlotProposal {
	switch s := slot.(type) {
	case ByeSlot:
		id := s.TeamID
		return SlotProposal{Type: string(SlotBye), TeamID: &id}
	case TakenSlot:
		first := s.FirstLeg
		return SlotProposal{Type: string(SlotTaken), FirstLeg: &first, SecondLeg: s.SecondLeg}
	default:
		return SlotProposal{Type: string(SlotEmpty)}
	}
}
