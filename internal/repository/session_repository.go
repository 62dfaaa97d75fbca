package repository

import (
	"context"

	"github.com/amoradev/amora-backend/internal/domain"
)

// SessionRepository owns the ephemeral per-user state: the registration/edit
// draft and the active search session. Implementations evict by TTL; callers
// also delete explicitly on commit or replacement.
type SessionRepository interface {
	GetDraft(ctx context.Context, userID int64) (*domain.Draft, error)
	SaveDraft(ctx context.Context, userID int64, draft *domain.Draft) error
	DeleteDraft(ctx context.Context, userID int64) error

	GetSearch(ctx context.Context, userID int64) (*domain.SearchSession, error)
	SaveSearch(ctx context.Context, userID int64, session *domain.SearchSession) error
	DeleteSearch(ctx context.Context, userID int64) error
}
