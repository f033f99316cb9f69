package competitiondomain

import "github.com/google/uuid"

type SlotKind string

const (
	SlotEmpty SlotKind = "EMPTY"
	SlotBye   SlotKind = "BYE"
	SlotTaken SlotKind = "TAKEN"
)

// Slot is one bracket position. The set of implementations is closed:
// EmptySlot, ByeSlot and TakenSlot.
type Slot interface {
	Kind() SlotKind
	isSlot()
}

// EmptySlot has no match-up yet.
type EmptySlot struct{}

// ByeSlot advances TeamID without playing.
type ByeSlot struct {
	TeamID uuid.UUID
}

// TakenSlot is a real tie. SecondLeg is set for two-legged ties.
type TakenSlot struct {
	FirstLeg  uuid.UUID
	SecondLeg *uuid.UUID
}

func (EmptySlot) Kind() SlotKind { return SlotEmpty }
func (ByeSlot) Kind() SlotKind   { return SlotBye }
func (TakenSlot) Kind() SlotKind { return SlotTaken }

func (EmptySlot) isSlot() {}
func (ByeSlot) isSlot()   {}
func (TakenSlot) isSlot() {}

// MatchIDs returns the legs of the tie in order.
func (t TakenSlot) MatchIDs() []uuid.UUID {
	if t.SecondLeg == nil {
		return []uuid.UUID{t.FirstLeg}
	}
	return []uuid.UUID{t.FirstLeg, *t.SecondLeg}
}
