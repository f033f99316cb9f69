package testutils

import (
	"fmt"
	"time"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Team is a generated club with a squad.
type Team struct {
	ID      uuid.UUID
	Name    string
	Players []matchevents.PlayerV1
}

func (g *TestDataGenerator) id() uuid.UUID {
	return uuid.MustParse(g.faker.UUID())
}

// CompetitionName returns a plausible competition name.
func (g *TestDataGenerator) CompetitionName() string {
	return fmt.Sprintf("%s %s Cup", g.faker.City(), g.faker.Color())
}

// GenerateTeams returns n teams with squadSize players each.
func (g *TestDataGenerator) GenerateTeams(n, squadSize int) []Team {
	teams := make([]Team, n)
	for i := range teams {
		teams[i] = Team{
			ID:      g.id(),
			Name:    fmt.Sprintf("%s FC", g.faker.City()),
			Players: make([]matchevents.PlayerV1, squadSize),
		}
		for j := range teams[i].Players {
			teams[i].Players[j] = matchevents.PlayerV1{ID: g.id(), Name: g.faker.Name()}
		}
	}
	return teams
}

// MatchIDs returns n fresh match ids.
func (g *TestDataGenerator) MatchIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = g.id()
	}
	return ids
}

// KnockoutProposal builds a valid proposal from start to FINAL. The first
// stage is filled with two-legged ties; later stages are left empty.
func (g *TestDataGenerator) KnockoutProposal(start competitiondomain.StageType) competitiondomain.BracketProposal {
	var p competitiondomain.BracketProposal
	for i, st := range competitiondomain.StagesFrom(start) {
		sp := competitiondomain.StageProposal{Stage: string(st)}
		for range st.SlotCount() {
			if i > 0 {
				sp.Slots = append(sp.Slots, competitiondomain.SlotProposal{Type: "EMPTY"})
				continue
			}
			first, second := g.id(), g.id()
			sp.Slots = append(sp.Slots, competitiondomain.SlotProposal{Type: "TAKEN", FirstLeg: &first, SecondLeg: &second})
		}
		p.Stages = append(p.Stages, sp)
	}
	return p
}

// FinishedMatch builds the STATUS envelope of a finished match.
func (g *TestDataGenerator) FinishedMatch(competitionID uuid.UUID, home, away Team, homeGoals, awayGoals int) matchevents.MatchEventPayloadV1 {
	result := "DRAW"
	switch {
	case homeGoals > awayGoals:
		result = "HOME_WIN"
	case awayGoals > homeGoals:
		result = "AWAY_WIN"
	}
	return matchevents.MatchEventPayloadV1{
		EventID:       g.faker.UUID(),
		Type:          matchevents.TypeStatus,
		CompetitionID: competitionID,
		MatchID:       g.id(),
		Minute:        90,
		Status:        "FINISHED",
		Result:        result,
		HomeTeamID:    &home.ID,
		AwayTeamID:    &away.ID,
		HomeGoals:     homeGoals,
		AwayGoals:     awayGoals,
	}
}

// Goal builds a GOAL envelope for a random player of team, with an optional
// assist from a different squad member.
func (g *TestDataGenerator) Goal(competitionID, matchID uuid.UUID, team Team, withAssist bool) matchevents.MatchEventPayloadV1 {
	scorerIdx := g.faker.Number(0, len(team.Players)-1)
	scorer := team.Players[scorerIdx]
	ev := matchevents.MatchEventPayloadV1{
		EventID:       g.faker.UUID(),
		Type:          matchevents.TypeGoal,
		CompetitionID: competitionID,
		MatchID:       matchID,
		Minute:        g.faker.Number(1, 90),
		TeamID:        &team.ID,
		Player:        &scorer,
	}
	if withAssist && len(team.Players) > 1 {
		assist := team.Players[(scorerIdx+1)%len(team.Players)]
		ev.Assist = &assist
	}
	return ev
}
