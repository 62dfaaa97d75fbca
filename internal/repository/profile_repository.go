package repository

import (
	"context"
	"time"

	"github.com/amoradev/amora-backend/internal/domain"
)

// ProfileRepository is the document-store contract the core issues against.
// Per-document updates (field set, add-to-set, increment) must be atomic at
// the store level. Read-after-write on the same client is required: a
// FindByID issued after AddLiked/AddLikedBy must observe those writes, since
// mutual-like detection re-reads the target immediately after liking.
type ProfileRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Profile, error)

	// FindCandidates returns the candidate pool for a requester: everyone
	// except the requester who is not banned or deleted, matches the gender
	// preference, and is either unseen or was last viewed before
	// resurfaceBefore.
	FindCandidates(ctx context.Context, requester *domain.Profile, resurfaceBefore time.Time) ([]*domain.Profile, error)

	// Upsert writes every collected field of the profile and seeds liked,
	// liked_by, viewed, reports=0 and banned=false only when the document did
	// not previously exist.
	Upsert(ctx context.Context, profile *domain.Profile) error

	// SetFields overwrites the named document fields.
	SetFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// AddLiked / AddLikedBy add to the respective unique sets. The two sides
	// of a like are separate writes by design; mutuality is re-derived at
	// read time rather than trusted to a cached flag.
	AddLiked(ctx context.Context, id, target int64) error
	AddLikedBy(ctx context.Context, id, liker int64) error

	// MarkViewed records that viewer was shown target at the given time:
	// target joins viewer's viewed set and the per-candidate view time and
	// last_viewed are updated.
	MarkViewed(ctx context.Context, viewerID, targetID int64, at time.Time) error

	// IncrementReports bumps the report counter and returns the new value so
	// threshold checks do not race a second read.
	IncrementReports(ctx context.Context, id int64) (int, error)

	SetBanned(ctx context.Context, id int64) error

	// SoftDelete marks the document deleted and returns the final state for
	// archival. The row is retained, never hard-deleted.
	SoftDelete(ctx context.Context, id int64, at time.Time) (*domain.Profile, error)

	// FindMutual returns profiles that are in user's liked_by, have user's id
	// in their own liked set, and are neither banned nor deleted.
	FindMutual(ctx context.Context, user *domain.Profile) ([]*domain.Profile, error)
}
