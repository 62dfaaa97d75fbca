package interaction

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
	"github.com/amoradev/amora-backend/internal/usecase/search"
	"github.com/amoradev/amora-backend/pkg/backoff"
)

// Presenter advances the requester's search session after an interaction.
type Presenter interface {
	Advance(ctx context.Context, userID int64) error
}

// Icebreaker suggests conversation openers for a fresh match. Optional.
type Icebreaker interface {
	GenerateIcebreakers(ctx context.Context, a, b *domain.Profile) (string, error)
}

// ModerationPublisher pushes moderation records onto the event bus for the
// review tooling. Optional.
type ModerationPublisher interface {
	PublishModeration(ctx context.Context, rec *domain.ModerationRecord) error
}

// Service implements reactions to a presented profile: like, dislike and
// report, plus the mutual-match listing.
type Service struct {
	profiles        repository.ProfileRepository
	archive         repository.ArchiveRepository
	presenter       Presenter
	notifier        transport.Notifier
	icebreaker      Icebreaker
	publisher       ModerationPublisher
	log             *zap.Logger
	retry           backoff.Policy
	reportThreshold int
	adminChatID     int64
}

func NewService(
	profiles repository.ProfileRepository,
	archive repository.ArchiveRepository,
	presenter Presenter,
	notifier transport.Notifier,
	icebreaker Icebreaker,
	publisher ModerationPublisher,
	log *zap.Logger,
	retry backoff.Policy,
	reportThreshold int,
	adminChatID int64,
) *Service {
	if reportThreshold <= 0 {
		reportThreshold = 3
	}
	return &Service{
		profiles:        profiles,
		archive:         archive,
		presenter:       presenter,
		notifier:        notifier,
		icebreaker:      icebreaker,
		publisher:       publisher,
		log:             log,
		retry:           retry,
		reportThreshold: reportThreshold,
		adminChatID:     adminChatID,
	}
}

// Like records a like from requester to target. The like is written to both
// sides (target's liked_by first, then requester's liked); mutuality is
// detected by re-reading the target after the write, so a concurrent
// counter-like is picked up by whichever of the two likes lands second.
func (s *Service) Like(ctx context.Context, requesterID, targetID int64) error {
	if requesterID == targetID {
		return domain.ErrCannotActSelf
	}

	me, err := s.profiles.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("load requester %d: %w", requesterID, err)
	}

	if me.HasLiked(targetID) {
		if err := s.notifier.SendText(ctx, requesterID, "You already liked this profile."); err != nil {
			return err
		}
		return s.presenter.Advance(ctx, requesterID)
	}

	err = s.retry.Do(ctx, func() error {
		return s.profiles.AddLikedBy(ctx, targetID, requesterID)
	})
	if err != nil {
		s.log.Error("failed to record liked_by",
			zap.Int64("requester_id", requesterID),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
		return s.notifier.SendText(ctx, requesterID, "Couldn't save your like, please try again.")
	}
	err = s.retry.Do(ctx, func() error {
		return s.profiles.AddLiked(ctx, requesterID, targetID)
	})
	if err != nil {
		s.log.Error("failed to record liked",
			zap.Int64("requester_id", requesterID),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
		return s.notifier.SendText(ctx, requesterID, "Couldn't save your like, please try again.")
	}

	target, err := s.profiles.FindByID(ctx, targetID)
	if err != nil {
		s.log.Error("failed to re-read target after like",
			zap.Int64("target_id", targetID), zap.Error(err))
	} else if target.HasLiked(requesterID) {
		s.announceMatch(ctx, me, target)
	}

	return s.presenter.Advance(ctx, requesterID)
}

// Dislike leaves no persistent trace beyond the view already recorded at
// presentation time.
func (s *Service) Dislike(ctx context.Context, requesterID, targetID int64) error {
	if requesterID == targetID {
		return domain.ErrCannotActSelf
	}
	return s.presenter.Advance(ctx, requesterID)
}

// Report increments the target's report counter and bans the target once the
// counter reaches the threshold. The reporter's flow continues either way.
func (s *Service) Report(ctx context.Context, requesterID, targetID int64) error {
	if requesterID == targetID {
		return domain.ErrCannotActSelf
	}

	var count int
	err := s.retry.Do(ctx, func() error {
		var rerr error
		count, rerr = s.profiles.IncrementReports(ctx, targetID)
		return rerr
	})
	if err != nil {
		s.log.Error("failed to increment reports",
			zap.Int64("requester_id", requesterID),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
		if nerr := s.notifier.SendText(ctx, requesterID, "Couldn't file the report, please try again."); nerr != nil {
			return nerr
		}
		return s.presenter.Advance(ctx, requesterID)
	}

	s.recordModeration(ctx, &domain.ModerationRecord{
		UserID:     targetID,
		Action:     domain.ModerationReported,
		Reasons:    []string{fmt.Sprintf("report %d of %d", count, s.reportThreshold)},
		ReporterID: &requesterID,
		CreatedAt:  time.Now(),
	})

	if count >= s.reportThreshold {
		err := s.retry.Do(ctx, func() error {
			return s.profiles.SetBanned(ctx, targetID)
		})
		if err != nil {
			s.log.Error("failed to ban reported profile",
				zap.Int64("target_id", targetID), zap.Error(err))
		} else {
			s.recordModeration(ctx, &domain.ModerationRecord{
				UserID:    targetID,
				Action:    domain.ModerationBanned,
				Reasons:   []string{fmt.Sprintf("reached %d reports", count)},
				CreatedAt: time.Now(),
			})
			if s.adminChatID != 0 {
				msg := fmt.Sprintf("Profile %d banned after %d reports.", targetID, count)
				if nerr := s.notifier.SendText(ctx, s.adminChatID, msg); nerr != nil {
					s.log.Warn("failed to notify admin chat", zap.Error(nerr))
				}
			}
		}
	}

	if err := s.notifier.SendText(ctx, requesterID, "Thanks, your report was filed."); err != nil {
		return err
	}
	return s.presenter.Advance(ctx, requesterID)
}

// ListMatches sends the requester the profiles that liked them back.
func (s *Service) ListMatches(ctx context.Context, userID int64) error {
	me, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("load requester %d: %w", userID, err)
	}

	matches, err := s.profiles.FindMutual(ctx, me)
	if err != nil {
		return fmt.Errorf("load matches for %d: %w", userID, err)
	}
	if len(matches) == 0 {
		return s.notifier.SendText(ctx, userID, "No matches yet. Keep swiping!")
	}

	if err := s.notifier.SendText(ctx, userID, fmt.Sprintf("You have %d match(es):", len(matches))); err != nil {
		return err
	}
	for _, m := range matches {
		caption := search.FormatCard(m)
		if m.Username != "" {
			caption += "\nReach out: @" + m.Username
		}
		if err := s.notifier.SendPhoto(ctx, userID, m.PhotoID, caption); err != nil {
			if err := s.notifier.SendText(ctx, userID, caption); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) announceMatch(ctx context.Context, a, b *domain.Profile) {
	s.notifyMatch(ctx, a, b)
	s.notifyMatch(ctx, b, a)
}

// notifyMatch tells `to` about their new match `with`, decorated with
// generated icebreakers when the generator is configured and responsive.
func (s *Service) notifyMatch(ctx context.Context, to, with *domain.Profile) {
	lines := []string{fmt.Sprintf("🎉 It's a match with %s!", with.Name)}
	if with.Username != "" {
		lines = append(lines, "Say hi: @"+with.Username)
	}
	if s.icebreaker != nil {
		if openers, err := s.icebreaker.GenerateIcebreakers(ctx, to, with); err != nil {
			s.log.Warn("icebreaker generation failed", zap.Error(err))
		} else if openers != "" {
			lines = append(lines, "", "Some openers to get you started:", openers)
		}
	}
	if err := s.notifier.SendText(ctx, to.ID, strings.Join(lines, "\n")); err != nil {
		s.log.Warn("failed to deliver match notification",
			zap.Int64("user_id", to.ID), zap.Error(err))
	}
}

func (s *Service) recordModeration(ctx context.Context, rec *domain.ModerationRecord) {
	if err := s.archive.RecordModeration(ctx, rec); err != nil {
		s.log.Warn("failed to persist moderation record",
			zap.Int64("user_id", rec.UserID), zap.Error(err))
	}
	if s.publisher != nil {
		if err := s.publisher.PublishModeration(ctx, rec); err != nil {
			s.log.Warn("failed to publish moderation event",
				zap.Int64("user_id", rec.UserID), zap.Error(err))
		}
	}
}
