package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// SessionStore is the per-visitor key-value boundary. It is authoritative
// for the current owner token and the transient checkout draft.
type SessionStore interface {
	// Owner returns the session's owner token, or "" when none is set yet.
	Owner(ctx context.Context, sessionID string) (string, error)
	SetOwner(ctx context.Context, sessionID, ownerID string) error

	// Draft returns nil when the session holds no checkout draft.
	Draft(ctx context.Context, sessionID string) (*domain.OrderDraft, error)
	SetDraft(ctx context.Context, sessionID string, draft domain.OrderDraft) error
	ClearDraft(ctx context.Context, sessionID string) error
}
