package repository

import (
	"context"

	"github.com/amoradev/amora-backend/internal/domain"
)

// ArchiveRepository is the relational sink for records that must outlive the
// live document store: full copies of soft-deleted profiles and the
// moderation audit trail.
type ArchiveRepository interface {
	ArchiveProfile(ctx context.Context, profile *domain.Profile) error
	RecordModeration(ctx context.Context, record *domain.ModerationRecord) error
}
