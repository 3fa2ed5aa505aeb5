package driven

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// RegenerationGateway rebuilds an artifact's derived output with an
// external tool. It never returns an error: every problem, including a
// timeout, is classified into the result.
type RegenerationGateway interface {
	Regenerate(ctx context.Context, key string) domain.RegenerationResult
}
