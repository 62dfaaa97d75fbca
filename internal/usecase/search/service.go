package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
	"github.com/amoradev/amora-backend/internal/transport"
	"github.com/amoradev/amora-backend/internal/usecase/ranking"
	"github.com/amoradev/amora-backend/pkg/backoff"
)

// Ranker is the slice of the ranking engine the search service needs.
type Ranker interface {
	Rank(ctx context.Context, requester *domain.Profile, pool []*domain.Profile) ([]ranking.Scored, error)
}

// Service owns the per-user search session: it builds the ranked result
// list, serves "next profile" requests, and records view history as a
// persistent side effect of presentation.
type Service struct {
	profiles        repository.ProfileRepository
	sessions        repository.SessionRepository
	ranker          Ranker
	notifier        transport.Notifier
	log             *zap.Logger
	retry           backoff.Policy
	resurfaceWindow time.Duration
}

func NewService(
	profiles repository.ProfileRepository,
	sessions repository.SessionRepository,
	ranker Ranker,
	notifier transport.Notifier,
	log *zap.Logger,
	retry backoff.Policy,
	resurfaceWindow time.Duration,
) *Service {
	if resurfaceWindow == 0 {
		resurfaceWindow = 8 * time.Hour
	}
	return &Service{
		profiles:        profiles,
		sessions:        sessions,
		ranker:          ranker,
		notifier:        notifier,
		log:             log,
		retry:           retry,
		resurfaceWindow: resurfaceWindow,
	}
}

// Start builds a fresh ranked session for the requester, replacing any prior
// session wholesale, and presents the first candidate. An unregistered or
// incomplete requester is rejected with ErrNotRegistered.
func (s *Service) Start(ctx context.Context, userID int64) error {
	me, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("load requester %d: %w", userID, err)
	}
	if !me.IsComplete() {
		return domain.ErrNotRegistered
	}

	pool, err := s.profiles.FindCandidates(ctx, me, time.Now().Add(-s.resurfaceWindow))
	if err != nil {
		return fmt.Errorf("load candidate pool for %d: %w", userID, err)
	}

	ranked, err := s.ranker.Rank(ctx, me, pool)
	if err != nil {
		return err
	}

	if len(ranked) == 0 {
		if derr := s.sessions.DeleteSearch(ctx, userID); derr != nil {
			s.log.Warn("failed to clear empty search session", zap.Int64("user_id", userID), zap.Error(derr))
		}
		return s.notifier.SendText(ctx, userID, "No new profiles nearby yet. Try again later.")
	}

	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Profile.ID
	}

	session := &domain.SearchSession{Results: ids, Cursor: 0}
	if err := s.sessions.SaveSearch(ctx, userID, session); err != nil {
		return fmt.Errorf("save search session for %d: %w", userID, err)
	}

	return s.present(ctx, userID, session)
}

// Current returns the candidate id under the cursor of the active session.
func (s *Service) Current(ctx context.Context, userID int64) (int64, error) {
	session, err := s.sessions.GetSearch(ctx, userID)
	if err != nil {
		return 0, err
	}
	return session.Current()
}

// Advance moves to the next candidate and presents it. Running past the end
// is a normal condition: the user is told to come back later.
func (s *Service) Advance(ctx context.Context, userID int64) error {
	session, err := s.sessions.GetSearch(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return s.notifier.SendText(ctx, userID, "No more profiles for now. Try again later.")
		}
		return fmt.Errorf("load search session for %d: %w", userID, err)
	}

	hasNext := session.Advance()
	if serr := s.sessions.SaveSearch(ctx, userID, session); serr != nil {
		s.log.Warn("failed to save advanced cursor", zap.Int64("user_id", userID), zap.Error(serr))
	}
	if !hasNext {
		return s.notifier.SendText(ctx, userID, "No more profiles for now. Try again later.")
	}

	return s.present(ctx, userID, session)
}

// present shows the candidate under the cursor and records the view. The
// viewed/last_viewed write is coupled to presentation itself, regardless of
// whether the user acts on the card.
func (s *Service) present(ctx context.Context, userID int64, session *domain.SearchSession) error {
	candidateID, err := session.Current()
	if err != nil {
		return s.notifier.SendText(ctx, userID, "No more profiles for now. Try again later.")
	}

	candidate, err := s.profiles.FindByID(ctx, candidateID)
	if err != nil {
		s.log.Error("failed to load candidate for presentation",
			zap.Int64("user_id", userID),
			zap.Int64("candidate_id", candidateID),
			zap.Error(err),
		)
		return s.notifier.SendText(ctx, userID, "Couldn't load this profile.")
	}

	verr := s.retry.Do(ctx, func() error {
		return s.profiles.MarkViewed(ctx, userID, candidateID, time.Now())
	})
	if verr != nil {
		s.log.Error("failed to record view",
			zap.Int64("user_id", userID),
			zap.Int64("candidate_id", candidateID),
			zap.Error(verr),
		)
	}

	caption := FormatCard(candidate)
	buttons := []transport.Button{
		{Label: "👍", Data: fmt.Sprintf("like_%d", candidateID)},
		{Label: "👎", Data: fmt.Sprintf("dislike_%d", candidateID)},
		{Label: "⚠️ Report", Data: fmt.Sprintf("report_%d", candidateID)},
	}

	if err := s.notifier.SendPhoto(ctx, userID, candidate.PhotoID, caption, buttons...); err != nil {
		// Keep the flow alive even when the photo cannot be delivered.
		return s.notifier.SendText(ctx, userID, caption, buttons...)
	}
	return nil
}

// FormatCard renders the profile caption shown in discovery and match lists.
func FormatCard(p *domain.Profile) string {
	badge := ""
	if p.Verified {
		badge = " ✅"
	}
	return fmt.Sprintf("%s%s, %s, %d y.o., %d cm\nHobbies: %s\nAbout: %s",
		p.Name, badge, p.Gender, p.Age, p.HeightCm,
		strings.Join(p.Hobbies, ", "), p.Bio)
}
