package competitionintegrationtests

import (
	"context"
	"testing"

	competitionservice "github.com/Black-And-White-Club/competition-engine/app/modules/competition/application"
	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/competition-engine/integration_tests/testutils"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type TestDeps struct {
	Ctx     context.Context
	Repo    competitiondb.Repository
	BunDB   *bun.DB
	Service competitionservice.Service
}

func SetupTestCompetitionService(t *testing.T) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.ResetDatabase(t)

	repo := competitiondb.NewRepository(env.DB)
	service := competitionservice.NewCompetitionService(
		repo,
		env.Logger,
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test_competition_service"),
		env.DB,
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Repo:    repo,
		BunDB:   env.DB,
		Service: service,
	}
}
