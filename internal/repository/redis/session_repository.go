package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
)

type sessionRepository struct {
	client    *redis.Client
	draftTTL  time.Duration
	searchTTL time.Duration
}

// NewSessionRepository stores drafts and search sessions as JSON values with
// TTL eviction. Drafts live longer than search cursors: an interrupted
// registration should survive a coffee break, a stale search should not.
func NewSessionRepository(client *redis.Client, draftTTL, searchTTL time.Duration) repository.SessionRepository {
	return &sessionRepository{
		client:    client,
		draftTTL:  draftTTL,
		searchTTL: searchTTL,
	}
}

func draftKey(userID int64) string {
	return fmt.Sprintf("session:draft:%d", userID)
}

func searchKey(userID int64) string {
	return fmt.Sprintf("session:search:%d", userID)
}

func (r *sessionRepository) GetDraft(ctx context.Context, userID int64) (*domain.Draft, error) {
	raw, err := r.client.Get(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("get draft %d: %w", userID, err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %d: %w", userID, err)
	}
	return &draft, nil
}

func (r *sessionRepository) SaveDraft(ctx context.Context, userID int64, draft *domain.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %d: %w", userID, err)
	}
	if err := r.client.Set(ctx, draftKey(userID), raw, r.draftTTL).Err(); err != nil {
		return fmt.Errorf("save draft %d: %w", userID, err)
	}
	return nil
}

func (r *sessionRepository) DeleteDraft(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft %d: %w", userID, err)
	}
	return nil
}

func (r *sessionRepository) GetSearch(ctx context.Context, userID int64) (*domain.SearchSession, error) {
	raw, err := r.client.Get(ctx, searchKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get search session %d: %w", userID, err)
	}

	var session domain.SearchSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode search session %d: %w", userID, err)
	}
	return &session, nil
}

func (r *sessionRepository) SaveSearch(ctx context.Context, userID int64, session *domain.SearchSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode search session %d: %w", userID, err)
	}
	if err := r.client.Set(ctx, searchKey(userID), raw, r.searchTTL).Err(); err != nil {
		return fmt.Errorf("save search session %d: %w", userID, err)
	}
	return nil
}

func (r *sessionRepository) DeleteSearch(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, searchKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete search session %d: %w", userID, err)
	}
	return nil
}
