package eventbus

import (
	"fmt"

	"github.com/google/uuid"
)

// CompetitionScopedTopic formats a topic with the competition id suffix so
// live consumers can subscribe to a single competition or, with a wildcard,
// to all of them.
func CompetitionScopedTopic(baseTopic string, competitionID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", baseTopic, competitionID)
}
