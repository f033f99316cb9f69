package competitionhandlers

import (
	"context"
	"errors"

	competitionservice "github.com/Black-And-White-Club/competition-engine/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ------------------------
// Fake Competition Service
// ------------------------

type FakeCompetitionService struct {
	trace []string

	CreateCompetitionFunc func(ctx context.Context, name string, phase competitiondomain.Phase) (*competitiondomain.Competition, error)
	GetCompetitionFunc    func(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Competition, error)
	EnrollTeamFunc        func(ctx context.Context, competitionID, teamID uuid.UUID) error
	ListTeamsFunc         func(ctx context.Context, competitionID uuid.UUID) ([]uuid.UUID, error)
	GetBracketFunc        func(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Bracket, error)
	UpsertBracketFunc     func(ctx context.Context, competitionID uuid.UUID, proposal competitiondomain.BracketProposal) (*competitiondomain.Bracket, error)
	GetRoundFunc          func(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error)
	AssignRoundFunc       func(ctx context.Context, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) (*competitiondomain.Round, error)
	UnassignRoundFunc     func(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error)
}

func NewFakeCompetitionService() *FakeCompetitionService {
	return &FakeCompetitionService{
		trace: []string{},
	}
}

func (f *FakeCompetitionService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeCompetitionService) CreateCompetition(ctx context.Context, name string, phase competitiondomain.Phase) (*competitiondomain.Competition, error) {
	f.record("CreateCompetition")
	if f.CreateCompetitionFunc != nil {
		return f.CreateCompetitionFunc(ctx, name, phase)
	}
	return &competitiondomain.Competition{ID: uuid.New(), Name: name, Phase: phase}, nil
}

func (f *FakeCompetitionService) GetCompetition(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Competition, error) {
	f.record("GetCompetition")
	if f.GetCompetitionFunc != nil {
		return f.GetCompetitionFunc(ctx, competitionID)
	}
	return nil, competitiondomain.ErrCompetitionNotFound
}

func (f *FakeCompetitionService) EnrollTeam(ctx context.Context, competitionID, teamID uuid.UUID) error {
	f.record("EnrollTeam")
	if f.EnrollTeamFunc != nil {
		return f.EnrollTeamFunc(ctx, competitionID, teamID)
	}
	return nil
}

func (f *FakeCompetitionService) ListTeams(ctx context.Context, competitionID uuid.UUID) ([]uuid.UUID, error) {
	f.record("ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx, competitionID)
	}
	return []uuid.UUID{}, nil
}

func (f *FakeCompetitionService) GetBracket(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Bracket, error) {
	f.record("GetBracket")
	if f.GetBracketFunc != nil {
		return f.GetBracketFunc(ctx, competitionID)
	}
	return &competitiondomain.Bracket{}, nil
}

func (f *FakeCompetitionService) UpsertBracket(ctx context.Context, competitionID uuid.UUID, proposal competitiondomain.BracketProposal) (*competitiondomain.Bracket, error) {
	f.record("UpsertBracket")
	if f.UpsertBracketFunc != nil {
		return f.UpsertBracketFunc(ctx, competitionID, proposal)
	}
	bracket, err := competitiondomain.ValidateBracket(proposal)
	if err != nil {
		return nil, err
	}
	return &bracket, nil
}

func (f *FakeCompetitionService) GetRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, competitionID, roundNumber)
	}
	return &competitiondomain.Round{CompetitionID: competitionID, Number: roundNumber, MatchIDs: []uuid.UUID{}}, nil
}

func (f *FakeCompetitionService) AssignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) (*competitiondomain.Round, error) {
	f.record("AssignRound")
	if f.AssignRoundFunc != nil {
		return f.AssignRoundFunc(ctx, competitionID, roundNumber, matchIDs)
	}
	return &competitiondomain.Round{CompetitionID: competitionID, Number: roundNumber, MatchIDs: matchIDs}, nil
}

func (f *FakeCompetitionService) UnassignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error) {
	f.record("UnassignRound")
	if f.UnassignRoundFunc != nil {
		return f.UnassignRoundFunc(ctx, competitionID, roundNumber)
	}
	return &competitiondomain.Round{CompetitionID: competitionID, Number: roundNumber, MatchIDs: []uuid.UUID{}}, nil
}

// --- Accessors for assertions ---

func (f *FakeCompetitionService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ competitionservice.Service = (*FakeCompetitionService)(nil)

// ------------------------
// Fake Broadcaster
// ------------------------

type broadcastCall struct {
	CompetitionID uuid.UUID
	Type          string
	Payload       any
}

type FakeBroadcaster struct {
	calls []broadcastCall
}

func (f *FakeBroadcaster) Broadcast(competitionID uuid.UUID, messageType string, payload any) int {
	f.calls = append(f.calls, broadcastCall{CompetitionID: competitionID, Type: messageType, Payload: payload})
	return 1
}

func (f *FakeBroadcaster) Types() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Type)
	}
	return out
}

var _ Broadcaster = (*FakeBroadcaster)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	topics   []string
	messages []*message.Message
	Fail     bool
}

func (f *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	if f.Fail {
		return errors.New("nats: no responders available")
	}
	for _, m := range messages {
		f.topics = append(f.topics, topic)
		f.messages = append(f.messages, m)
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Topics() []string {
	out := make([]string, len(f.topics))
	copy(out, f.topics)
	return out
}

// MetadataTopics returns the routing topic set on each published message.
func (f *FakePublisher) MetadataTopics() []string {
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Metadata.Get(handlerwrapper.MetadataTopic))
	}
	return out
}

var _ message.Publisher = (*FakePublisher)(nil)
