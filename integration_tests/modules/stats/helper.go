package statsintegrationtests

import (
	"context"
	"testing"

	competitionservice "github.com/Black-And-White-Club/competition-engine/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdb "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories"
	"github.com/Black-And-White-Club/competition-engine/integration_tests/testutils"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

type TestDeps struct {
	Ctx          context.Context
	Env          *testutils.TestEnvironment
	Competitions competitionservice.Service
	Service      *statsservice.StatsService
	Generator    *testutils.TestDataGenerator
}

func SetupTestStatsService(t *testing.T, deduplicate bool) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.ResetDatabase(t)

	tracer := noop.NewTracerProvider().Tracer("test_stats_service")
	competitions := competitionservice.NewCompetitionService(competitiondb.NewRepository(env.DB), env.Logger, metrics.NewNoop(), tracer, env.DB)
	service := statsservice.NewStatsService(statsdb.NewRepository(env.DB), env.Logger, metrics.NewNoop(), tracer, env.DB, deduplicate)

	return TestDeps{
		Ctx:          env.Ctx,
		Env:          env,
		Competitions: competitions,
		Service:      service,
		Generator:    testutils.NewTestDataGenerator(2026),
	}
}

// seedLeague creates a league and enrolls teams.
func (d TestDeps) seedLeague(t *testing.T, teams []testutils.Team) uuid.UUID {
	t.Helper()
	comp, err := d.Competitions.CreateCompetition(d.Ctx, d.Generator.CompetitionName(), competitiondomain.LeaguePhase{MaxRounds: 38})
	if err != nil {
		t.Fatalf("Failed to create competition: %v", err)
	}
	for _, team := range teams {
		if err := d.Competitions.EnrollTeam(d.Ctx, comp.ID, team.ID); err != nil {
			t.Fatalf("Failed to enroll team: %v", err)
		}
	}
	return comp.ID
}
