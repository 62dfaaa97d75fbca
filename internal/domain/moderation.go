package domain

import "time"

// ModerationAction classifies audit entries written to the archive sink and
// published to the moderation queue.
type ModerationAction string

const (
	ModerationReported   ModerationAction = "reported"
	ModerationBanned     ModerationAction = "banned"
	ModerationSuspicious ModerationAction = "suspicious"
)

// ModerationRecord is one audit row: who was acted on, why, and by whom.
type ModerationRecord struct {
	ID         string           `json:"id" db:"id"`
	UserID     int64            `json:"user_id" db:"user_id"`
	Action     ModerationAction `json:"action" db:"action"`
	Reasons    []string         `json:"reasons" db:"reasons"`
	ReporterID *int64           `json:"reporter_id,omitempty" db:"reporter_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}
