package ranking

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
	"github.com/amoradev/amora-backend/pkg/geo"
)

// Options are the engine tunables; zero values fall back to sensible
// defaults.
type Options struct {
	TopK            int
	MaxAgeGap       int
	MinHobbyOverlap float64
	ResurfaceWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.TopK == 0 {
		o.TopK = 50
	}
	if o.MaxAgeGap == 0 {
		o.MaxAgeGap = 10
	}
	if o.MinHobbyOverlap == 0 {
		o.MinHobbyOverlap = 0.3
	}
	if o.ResurfaceWindow == 0 {
		o.ResurfaceWindow = 8 * time.Hour
	}
	return o
}

// Scored is one surviving candidate with its ranking score.
type Scored struct {
	Profile *domain.Profile
	Score   float64
}

// Ranker filters and scores a candidate pool for a requester. Filtering is
// mostly read-only, with one deliberate exception: candidates failing the
// suspicion check are persisted as banned while being excluded.
type Ranker struct {
	profiles repository.ProfileRepository
	archive  repository.ArchiveRepository
	log      *zap.Logger
	opts     Options
}

func NewRanker(
	profiles repository.ProfileRepository,
	archive repository.ArchiveRepository,
	log *zap.Logger,
	opts Options,
) *Ranker {
	return &Ranker{
		profiles: profiles,
		archive:  archive,
		log:      log,
		opts:     opts.withDefaults(),
	}
}

// Rank applies the filter chain in order and returns survivors ordered by
// descending score, truncated to the top K. Ties keep the pool's input order
// so results are reproducible. An incomplete requester is rejected with
// ErrNotRegistered rather than given an empty list.
func (r *Ranker) Rank(ctx context.Context, requester *domain.Profile, pool []*domain.Profile) ([]Scored, error) {
	if !requester.IsComplete() {
		return nil, domain.ErrNotRegistered
	}

	now := time.Now()
	var survivors []Scored

	for _, candidate := range pool {
		if candidate.ID == requester.ID {
			continue
		}
		if candidate.Banned || candidate.Deleted {
			continue
		}
		if r.viewedRecently(requester, candidate.ID, now) {
			continue
		}
		if !requester.LookingFor.Matches(candidate.Gender) {
			continue
		}
		if !candidate.IsComplete() {
			continue
		}
		if ageGap(requester.Age, candidate.Age) > r.opts.MaxAgeGap {
			continue
		}

		overlap := Jaccard(requester.Hobbies, candidate.Hobbies)
		if overlap < r.opts.MinHobbyOverlap {
			continue
		}

		if reasons := Suspicion(candidate.Name, candidate.Bio); len(reasons) > 0 {
			r.flagSuspicious(ctx, candidate, reasons)
			continue
		}

		survivors = append(survivors, Scored{
			Profile: candidate,
			Score:   r.score(requester, candidate, overlap),
		})
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})
	if len(survivors) > r.opts.TopK {
		survivors = survivors[:r.opts.TopK]
	}
	return survivors, nil
}

// viewedRecently reports whether the requester saw this candidate within the
// re-surfacing window. A candidate viewed earlier than the window may appear
// again.
func (r *Ranker) viewedRecently(requester *domain.Profile, candidateID int64, now time.Time) bool {
	if !requester.HasViewed(candidateID) {
		return false
	}
	at, ok := requester.ViewedAt(candidateID)
	if !ok {
		// Viewed but no timestamp recorded: keep it hidden rather than
		// re-showing on every search.
		return true
	}
	return now.Sub(at) < r.opts.ResurfaceWindow
}

// score implements verified-dominates, overlap-secondary, proximity as
// tie-breaker. A missing location on either side contributes nothing.
func (r *Ranker) score(requester, candidate *domain.Profile, overlap float64) float64 {
	score := 10 * overlap
	if candidate.Verified {
		score += 100
	}

	if requester.Location != nil && candidate.Location != nil {
		km, err := geo.Distance(
			geo.Coordinate{Latitude: requester.Location.Latitude, Longitude: requester.Location.Longitude},
			geo.Coordinate{Latitude: candidate.Location.Latitude, Longitude: candidate.Location.Longitude},
		)
		if err != nil {
			// Corrupt stored coordinates rank like a missing location.
			r.log.Warn("invalid stored location",
				zap.Int64("candidate_id", candidate.ID),
				zap.Error(err),
			)
		} else {
			score += 1 / (km + 1)
		}
	}

	return score
}

func (r *Ranker) flagSuspicious(ctx context.Context, candidate *domain.Profile, reasons []string) {
	r.log.Warn("suspicious profile banned",
		zap.Int64("candidate_id", candidate.ID),
		zap.Strings("reasons", reasons),
	)

	if err := r.profiles.SetBanned(ctx, candidate.ID); err != nil {
		r.log.Error("failed to persist suspicion ban",
			zap.Int64("candidate_id", candidate.ID),
			zap.Error(err),
		)
		return
	}

	record := &domain.ModerationRecord{
		UserID:  candidate.ID,
		Action:  domain.ModerationSuspicious,
		Reasons: reasons,
	}
	if err := r.archive.RecordModeration(ctx, record); err != nil {
		r.log.Error("failed to record suspicion ban",
			zap.Int64("candidate_id", candidate.ID),
			zap.Error(err),
		)
	}
}

// Jaccard is |intersection| / |union| over hobby tags, 0 when both sets are
// empty.
func Jaccard(a, b []string) float64 {
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for _, tag := range a {
		union[tag] = struct{}{}
	}

	common := 0
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			common++
			delete(set, tag)
		}
		union[tag] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(common) / float64(len(union))
}

func ageGap(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
