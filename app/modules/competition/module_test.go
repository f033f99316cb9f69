package competition

import (
	"context"
	"sync"
	"testing"
	"time"

	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule() *Module {
	obs := observability.NewTestObservability()
	return &Module{
		Hub:           competitionws.NewHub(obs.Provider.Logger, nil),
		observability: obs,
	}
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("module Run did not return")
	}
}

func TestModuleCloseStopsRun(t *testing.T) {
	m := newTestModule()

	var wg sync.WaitGroup
	wg.Add(1)
	go m.Run(context.Background(), &wg)

	require.NoError(t, m.Close())
	waitDone(t, &wg)
}

func TestModuleCloseBeforeRun(t *testing.T) {
	m := newTestModule()
	require.NoError(t, m.Close())

	var wg sync.WaitGroup
	wg.Add(1)
	go m.Run(context.Background(), &wg)
	waitDone(t, &wg)
	assert.True(t, m.closed)
}
