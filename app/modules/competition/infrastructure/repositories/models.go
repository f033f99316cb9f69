package competitiondb

import (
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Competition is a competition row. Exactly one of MaxRounds and StartStage
// is set, depending on PhaseKind.
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:c"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	Name       string    `bun:"name,notnull"`
	PhaseKind  string    `bun:"phase_kind,notnull"`
	MaxRounds  *int      `bun:"max_rounds"`
	StartStage *string   `bun:"start_stage"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// CompetitionTeam enrolls a team in a competition.
type CompetitionTeam struct {
	bun.BaseModel `bun:"table:competition_teams,alias:ct"`

	CompetitionID uuid.UUID `bun:"competition_id,pk,type:uuid"`
	TeamID        uuid.UUID `bun:"team_id,pk,type:uuid"`
	EnrolledAt    time.Time `bun:"enrolled_at,nullzero,notnull,default:current_timestamp"`
}

// BracketSlot is one slot of a stored bracket. StageOrder is the index of the
// stage in the bracket, Position the index of the slot in the stage.
type BracketSlot struct {
	bun.BaseModel `bun:"table:bracket_slots,alias:bs"`

	CompetitionID uuid.UUID  `bun:"competition_id,pk,type:uuid"`
	StageOrder    int        `bun:"stage_order,pk"`
	Position      int        `bun:"position,pk"`
	Stage         string     `bun:"stage,notnull"`
	Kind          string     `bun:"kind,notnull"`
	TeamID        *uuid.UUID `bun:"team_id,type:uuid"`
	FirstLeg      *uuid.UUID `bun:"first_leg,type:uuid"`
	SecondLeg     *uuid.UUID `bun:"second_leg,type:uuid"`
}

// LeagueRound stores the match ids of an assigned league round.
type LeagueRound struct {
	bun.BaseModel `bun:"table:league_rounds,alias:lr"`

	CompetitionID uuid.UUID `bun:"competition_id,pk,type:uuid"`
	RoundNumber   int       `bun:"round_number,pk"`
	MatchIDs      []string  `bun:"match_ids,array,type:uuid[]"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// NewCompetitionRow maps a domain competition onto its row.
func NewCompetitionRow(c competitiondomain.Competition) *Competition {
	row := &Competition{
		ID:        c.ID,
		Name:      c.Name,
		PhaseKind: string(c.Phase.Kind()),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.CreatedAt,
	}
	switch p := c.Phase.(type) {
	case competitiondomain.LeaguePhase:
		n := p.MaxRounds
		row.MaxRounds = &n
	case competitiondomain.KnockoutPhase:
		s := string(p.StartStage)
		row.StartStage = &s
	}
	return row
}

// Phase decodes the phase columns.
func (c *Competition) Phase() (competitiondomain.Phase, error) {
	switch competitiondomain.PhaseKind(c.PhaseKind) {
	case competitiondomain.PhaseLeague:
		if c.MaxRounds == nil {
			return nil, fmt.Errorf("league competition %s has no max_rounds", c.ID)
		}
		return competitiondomain.LeaguePhase{MaxRounds: *c.MaxRounds}, nil
	case competitiondomain.PhaseKnockout:
		if c.StartStage == nil {
			return nil, fmt.Errorf("knockout competition %s has no start_stage", c.ID)
		}
		st, ok := competitiondomain.ParseStageType(*c.StartStage)
		if !ok {
			return nil, fmt.Errorf("knockout competition %s has unknown start_stage %q", c.ID, *c.StartStage)
		}
		return competitiondomain.KnockoutPhase{StartStage: st}, nil
	default:
		return nil, fmt.Errorf("competition %s has unknown phase_kind %q", c.ID, c.PhaseKind)
	}
}

// ToDomain converts the row into a domain competition.
func (c *Competition) ToDomain() (competitiondomain.Competition, error) {
	phase, err := c.Phase()
	if err != nil {
		return competitiondomain.Competition{}, err
	}
	return competitiondomain.Competition{
		ID:        c.ID,
		Name:      c.Name,
		Phase:     phase,
		CreatedAt: c.CreatedAt,
	}, nil
}

func bracketRows(competitionID uuid.UUID, b competitiondomain.Bracket) []BracketSlot {
	var rows []BracketSlot
	for i, stage := range b.Stages {
		for j, slot := range stage.Slots {
			row := BracketSlot{
				CompetitionID: competitionID,
				StageOrder:    i,
				Position:      j,
				Stage:         string(stage.Type),
				Kind:          string(slot.Kind()),
			}
			switch s := slot.(type) {
			case competitiondomain.ByeSlot:
				id := s.TeamID
				row.TeamID = &id
			case competitiondomain.TakenSlot:
				first := s.FirstLeg
				row.FirstLeg = &first
				row.SecondLeg = s.SecondLeg
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// bracketFromRows rebuilds a bracket from rows ordered by stage and position.
func bracketFromRows(rows []BracketSlot) (competitiondomain.Bracket, error) {
	var b competitiondomain.Bracket
	current := -1
	for _, row := range rows {
		if row.StageOrder != current {
			st, ok := competitiondomain.ParseStageType(row.Stage)
			if !ok {
				return competitiondomain.Bracket{}, fmt.Errorf("stored bracket has unknown stage %q", row.Stage)
			}
			b.Stages = append(b.Stages, competitiondomain.Stage{Type: st})
			current = row.StageOrder
		}
		stage := &b.Stages[len(b.Stages)-1]

		switch competitiondomain.SlotKind(row.Kind) {
		case competitiondomain.SlotEmpty:
			stage.Slots = append(stage.Slots, competitiondomain.EmptySlot{})
		case competitiondomain.SlotBye:
			if row.TeamID == nil {
				return competitiondomain.Bracket{}, fmt.Errorf("stored bye slot %d/%d has no team", row.StageOrder, row.Position)
			}
			stage.Slots = append(stage.Slots, competitiondomain.ByeSlot{TeamID: *row.TeamID})
		case competitiondomain.SlotTaken:
			if row.FirstLeg == nil {
				return competitiondomain.Bracket{}, fmt.Errorf("stored taken slot %d/%d has no first leg", row.StageOrder, row.Position)
			}
			stage.Slots = append(stage.Slots, competitiondomain.TakenSlot{FirstLeg: *row.FirstLeg, SecondLeg: row.SecondLeg})
		default:
			return competitiondomain.Bracket{}, fmt.Errorf("stored slot %d/%d has unknown kind %q", row.StageOrder, row.Position, row.Kind)
		}
	}
	return b, nil
}

func matchIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseMatchIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("stored match id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}
