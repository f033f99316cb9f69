package competitiondomain

import "strings"

// StageType names one knockout stage.
type StageType string

const (
	RoundOf128   StageType = "ROUND_OF_128"
	RoundOf64    StageType = "ROUND_OF_64"
	RoundOf32    StageType = "ROUND_OF_32"
	RoundOf16    StageType = "ROUND_OF_16"
	QuarterFinal StageType = "QUARTER_FINAL"
	SemiFinal    StageType = "SEMI_FINAL"
	Final        StageType = "FINAL"
)

// stageTable lists every stage from earliest to latest with its slot count.
// Ordering comes from this table, never from the constant declarations.
var stageTable = [...]struct {
	stage StageType
	slots int
}{
	{RoundOf128, 64},
	{RoundOf64, 32},
	{RoundOf32, 16},
	{RoundOf16, 8},
	{QuarterFinal, 4},
	{SemiFinal, 2},
	{Final, 1},
}

// MaxStages is the largest number of stages a bracket can hold.
const MaxStages = len(stageTable)

// Order returns the position of s in the stage ordering, or -1.
func (s StageType) Order() int {
	for i, e := range stageTable {
		if e.stage == s {
			return i
		}
	}
	return -1
}

// SlotCount returns the fixed number of slots of s, or 0 for an unknown stage.
func (s StageType) SlotCount() int {
	if i := s.Order(); i >= 0 {
		return stageTable[i].slots
	}
	return 0
}

func (s StageType) Valid() bool { return s.Order() >= 0 }

func (s StageType) String() string { return string(s) }

// ParseStageType resolves name case-insensitively.
func ParseStageType(name string) (StageType, bool) {
	for _, e := range stageTable {
		if strings.EqualFold(string(e.stage), name) {
			return e.stage, true
		}
	}
	return "", false
}

// AllStages returns every stage from earliest to latest.
func AllStages() []StageType {
	out := make([]StageType, len(stageTable))
	for i, e := range stageTable {
		out[i] = e.stage
	}
	return out
}

// StagesFrom returns start and every later stage up to FINAL.
func StagesFrom(start StageType) []StageType {
	i := start.Order()
	if i < 0 {
		return nil
	}
	return AllStages()[i:]
}
