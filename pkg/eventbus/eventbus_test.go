package eventbus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDurableName(t *testing.T) {
	tests := []struct {
		appType string
		topic   string
		want    string
	}{
		{"competition-engine", "match.event.v1", "competition-engine-match_event_v1"},
		{"competition-engine", "stats.updated.v1.*", "competition-engine-stats_updated_v1_any"},
		{"backend", "competition.>", "backend-competition_all"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurableName(tt.appType, tt.topic))
	}
}

func TestCompetitionScopedTopic(t *testing.T) {
	competitionID := uuid.MustParse("6d1f4c3e-7a44-4f0e-9d0b-3c2b1a0f9e8d")
	assert.Equal(t,
		"competition.bracket.updated.v1.6d1f4c3e-7a44-4f0e-9d0b-3c2b1a0f9e8d",
		CompetitionScopedTopic("competition.bracket.updated.v1", competitionID),
	)
}
