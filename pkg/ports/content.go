package ports

import (
	"context"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// ContentResolver resolves a screen's content reference into displayable text.
type ContentResolver interface {
	// Resolve returns the body for ref.
	// Returns an error wrapping domain.ErrContentUnavailable when ref is unknown.
	Resolve(ctx context.Context, ref domain.ContentRef) (string, error)
}

// ContentResolverFunc adapts a function to ContentResolver.
type ContentResolverFunc func(ctx context.Context, ref domain.ContentRef) (string, error)

// Resolve calls f.
func (f ContentResolverFunc) Resolve(ctx context.Context, ref domain.ContentRef) (string, error) {
	return f(ctx, ref)
}

// Question is a free-text question handed to an Answerer.
type Question struct {
	UserID string
	Text   string
}

// Answerer answers free-text questions about the report.
// Implementations are external collaborators (LLM, vector search).
type Answerer interface {
	Answer(ctx context.Context, q Question) (string, error)
}

// RateLimiter bounds how often a key may perform an operation.
type RateLimiter interface {
	// Allow records one attempt for key and reports whether it is within budget.
	Allow(ctx context.Context, key string) (bool, error)
}

// InteractionLog keeps an audit trail of handled exchanges.
// Record failures must not affect the reply already computed.
type InteractionLog interface {
	Record(ctx context.Context, i domain.Interaction) error
}
