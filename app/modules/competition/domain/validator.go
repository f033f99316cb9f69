package competitiondomain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	msgStageCount     = "bracket must contain between 1 and 7 stages"
	msgStagesRepeat   = "stage names cannot repeat"
	msgMatchesRepeat  = "matches cannot repeat"
	msgByeTeam        = "bye slot must carry a team id"
	msgTakenFirstLeg  = "taken slot must carry a first leg match id"
	bracketScopeField = "bracket"
)

// ValidateBracket checks p and converts it into a Bracket. Every violation
// is reported; on failure the returned error is a *ValidationError.
func ValidateBracket(p BracketProposal) (Bracket, error) {
	verr := NewValidationError()

	if len(p.Stages) < 1 || len(p.Stages) > MaxStages {
		verr.Add("stages", msgStageCount)
	}

	bracket := Bracket{Stages: make([]Stage, 0, len(p.Stages))}
	seenStages := make(map[StageType]bool, len(p.Stages))
	seenMatches := make(map[uuid.UUID]bool)
	stagesRepeat, matchesRepeat := false, false

	useMatch := func(id uuid.UUID) {
		if seenMatches[id] {
			matchesRepeat = true
			return
		}
		seenMatches[id] = true
	}

	for i, sp := range p.Stages {
		stageField := fmt.Sprintf("stages[%d]", i)

		st, known := ParseStageType(sp.Stage)
		if !known {
			verr.Add(stageField+".stage", unknownStageMessage(sp.Stage))
		} else if seenStages[st] {
			stagesRepeat = true
		} else {
			seenStages[st] = true
		}

		if known && len(sp.Slots) != st.SlotCount() {
			verr.Addf(stageField+".slots", "stage %s must contain exactly %d slots", st, st.SlotCount())
		}

		slots := make([]Slot, 0, len(sp.Slots))
		for j, slp := range sp.Slots {
			slotField := fmt.Sprintf("%s.slots[%d]", stageField, j)
			switch strings.ToUpper(slp.Type) {
			case string(SlotEmpty):
				slots = append(slots, EmptySlot{})
			case string(SlotBye):
				if slp.TeamID == nil {
					verr.Add(slotField+".teamId", msgByeTeam)
					continue
				}
				slots = append(slots, ByeSlot{TeamID: *slp.TeamID})
			case string(SlotTaken):
				if slp.FirstLeg == nil {
					verr.Add(slotField+".firstLeg", msgTakenFirstLeg)
				} else {
					useMatch(*slp.FirstLeg)
				}
				if slp.SecondLeg != nil {
					useMatch(*slp.SecondLeg)
				}
				if slp.FirstLeg != nil {
					slots = append(slots, TakenSlot{FirstLeg: *slp.FirstLeg, SecondLeg: slp.SecondLeg})
				}
			default:
				verr.Addf(slotField+".type", "unknown slot type %q", slp.Type)
			}
		}

		bracket.Stages = append(bracket.Stages, Stage{Type: st, Slots: slots})
	}

	if stagesRepeat {
		verr.Add(bracketScopeField, msgStagesRepeat)
	}
	if matchesRepeat {
		verr.Add(bracketScopeField, msgMatchesRepeat)
	}

	if err := verr.orNil(); err != nil {
		return Bracket{}, err
	}
	return bracket, nil
}

// unknownStageMessage adds a hint when name is a near miss of a stage type.
func unknownStageMessage(name string) string {
	msg := fmt.Sprintf("unknown stage type %q", name)
	normalized := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name)
	if normalized == "" {
		return msg
	}

	targets := make([]string, 0, MaxStages)
	for _, st := range AllStages() {
		targets = append(targets, string(st))
	}
	ranks := fuzzy.RankFindFold(normalized, targets)
	if len(ranks) == 0 {
		return msg
	}
	sort.Sort(ranks)
	return fmt.Sprintf("%s, did you mean %s?", msg, ranks[0].Target)
}
