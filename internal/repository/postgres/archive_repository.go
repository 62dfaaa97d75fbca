package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
)

type archiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) repository.ArchiveRepository {
	return &archiveRepository{db: db}
}

// ArchiveProfile stores a full copy of a soft-deleted profile document. The
// live store keeps the marked row; this copy is the durable archive.
func (r *archiveRepository) ArchiveProfile(ctx context.Context, profile *domain.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile %d: %w", profile.ID, err)
	}

	deletedAt := time.Now()
	if profile.DeletedAt != nil {
		deletedAt = *profile.DeletedAt
	}

	query := `
		INSERT INTO profile_archive (id, profile_id, document, deleted_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, query, uuid.NewString(), profile.ID, doc, deletedAt)
	if err != nil {
		return fmt.Errorf("archive profile %d: %w", profile.ID, err)
	}
	return nil
}

func (r *archiveRepository) RecordModeration(ctx context.Context, record *domain.ModerationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO moderation_log (id, user_id, action, reasons, reporter_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(
		ctx, query,
		record.ID, record.UserID, record.Action,
		pq.Array(record.Reasons), record.ReporterID, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record moderation for %d: %w", record.UserID, err)
	}
	return nil
}
