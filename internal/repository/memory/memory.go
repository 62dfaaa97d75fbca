// Package memory holds in-memory repository implementations with the same
// semantics as the real stores. They back the usecase tests and are handy for
// running the service locally without infrastructure.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
)

type ProfileRepository struct {
	mu       sync.Mutex
	profiles map[int64]*domain.Profile

	// FailUpsert makes Upsert fail, for exercising commit retry paths.
	FailUpsert error

	// Transient failure counters: each fails that many upcoming calls of
	// the matching method before it behaves normally again.
	FailAddLiked         int
	FailAddLikedBy       int
	FailMarkViewed       int
	FailIncrementReports int
}

var errTransient = errors.New("transient store failure")

// takeFailure consumes one injected failure. Callers hold r.mu.
func takeFailure(n *int) bool {
	if *n > 0 {
		*n--
		return true
	}
	return false
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[int64]*domain.Profile)}
}

// Seed stores a profile directly, bypassing upsert seeding.
func (r *ProfileRepository) Seed(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = clone(p)
}

func (r *ProfileRepository) FindByID(_ context.Context, id int64) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return clone(p), nil
}

func (r *ProfileRepository) FindCandidates(_ context.Context, requester *domain.Profile, resurfaceBefore time.Time) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Profile
	for _, p := range r.profiles {
		if p.ID == requester.ID || p.Banned || p.Deleted {
			continue
		}
		if !requester.LookingFor.Matches(p.Gender) {
			continue
		}
		if requester.HasViewed(p.ID) {
			at, ok := requester.ViewedAt(p.ID)
			if !ok || !at.Before(resurfaceBefore) {
				continue
			}
		}
		out = append(out, clone(p))
	}
	return out, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, profile *domain.Profile) error {
	if r.FailUpsert != nil {
		return r.FailUpsert
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(profile)
	if prev, ok := r.profiles[profile.ID]; ok {
		// Interaction state survives re-registration.
		stored.Liked = prev.Liked
		stored.LikedBy = prev.LikedBy
		stored.Viewed = prev.Viewed
		stored.ViewedTimes = prev.ViewedTimes
		stored.LastViewed = prev.LastViewed
		stored.Reports = prev.Reports
		stored.Banned = prev.Banned
		stored.Deleted = prev.Deleted
	} else {
		stored.Liked = []int64{}
		stored.LikedBy = []int64{}
		stored.Viewed = []int64{}
	}
	r.profiles[profile.ID] = stored
	return nil
}

func (r *ProfileRepository) SetFields(_ context.Context, id int64, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	for key, value := range fields {
		switch key {
		case "name":
			p.Name = value.(string)
		case "photo_id":
			p.PhotoID = value.(string)
		case "bio":
			p.Bio = value.(string)
		case "hobbies":
			p.Hobbies = value.([]string)
		case "verified":
			p.Verified = value.(bool)
		case "phone":
			phone := value.(string)
			p.Phone = &phone
		}
	}
	return nil
}

func (r *ProfileRepository) AddLiked(_ context.Context, id, target int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if takeFailure(&r.FailAddLiked) {
		return errTransient
	}
	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if !p.HasLiked(target) {
		p.Liked = append(p.Liked, target)
	}
	return nil
}

func (r *ProfileRepository) AddLikedBy(_ context.Context, id, liker int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if takeFailure(&r.FailAddLikedBy) {
		return errTransient
	}
	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	for _, v := range p.LikedBy {
		if v == liker {
			return nil
		}
	}
	p.LikedBy = append(p.LikedBy, liker)
	return nil
}

func (r *ProfileRepository) MarkViewed(_ context.Context, viewerID, targetID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if takeFailure(&r.FailMarkViewed) {
		return errTransient
	}
	p, ok := r.profiles[viewerID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if !p.HasViewed(targetID) {
		p.Viewed = append(p.Viewed, targetID)
	}
	if p.ViewedTimes == nil {
		p.ViewedTimes = make(map[string]time.Time)
	}
	p.ViewedTimes[domain.FormatID(targetID)] = at
	p.LastViewed = &at
	return nil
}

func (r *ProfileRepository) IncrementReports(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if takeFailure(&r.FailIncrementReports) {
		return 0, errTransient
	}
	p, ok := r.profiles[id]
	if !ok {
		return 0, domain.ErrProfileNotFound
	}
	p.Reports++
	return p.Reports, nil
}

func (r *ProfileRepository) SetBanned(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Banned = true
	return nil
}

func (r *ProfileRepository) SoftDelete(_ context.Context, id int64, at time.Time) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Deleted = true
	p.DeletedAt = &at
	return clone(p), nil
}

func (r *ProfileRepository) FindMutual(_ context.Context, user *domain.Profile) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Profile
	for _, id := range user.LikedBy {
		p, ok := r.profiles[id]
		if !ok || p.Banned || p.Deleted {
			continue
		}
		if p.HasLiked(user.ID) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func clone(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.Hobbies = append([]string(nil), p.Hobbies...)
	cp.Liked = append([]int64(nil), p.Liked...)
	cp.LikedBy = append([]int64(nil), p.LikedBy...)
	cp.Viewed = append([]int64(nil), p.Viewed...)
	if p.ViewedTimes != nil {
		cp.ViewedTimes = make(map[string]time.Time, len(p.ViewedTimes))
		for k, v := range p.ViewedTimes {
			cp.ViewedTimes[k] = v
		}
	}
	if p.Location != nil {
		loc := *p.Location
		cp.Location = &loc
	}
	if p.Phone != nil {
		phone := *p.Phone
		cp.Phone = &phone
	}
	return &cp
}

// SessionRepository keeps drafts and search sessions in process memory.
type SessionRepository struct {
	mu       sync.Mutex
	drafts   map[int64]*domain.Draft
	searches map[int64]*domain.SearchSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		drafts:   make(map[int64]*domain.Draft),
		searches: make(map[int64]*domain.SearchSession),
	}
}

func (r *SessionRepository) GetDraft(_ context.Context, userID int64) (*domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[userID]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	cp := *d
	cp.Hobbies = append([]string(nil), d.Hobbies...)
	return &cp, nil
}

func (r *SessionRepository) SaveDraft(_ context.Context, userID int64, draft *domain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *draft
	cp.Hobbies = append([]string(nil), draft.Hobbies...)
	r.drafts[userID] = &cp
	return nil
}

func (r *SessionRepository) DeleteDraft(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, userID)
	return nil
}

func (r *SessionRepository) GetSearch(_ context.Context, userID int64) (*domain.SearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	cp.Results = append([]int64(nil), s.Results...)
	return &cp, nil
}

func (r *SessionRepository) SaveSearch(_ context.Context, userID int64, session *domain.SearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	cp.Results = append([]int64(nil), session.Results...)
	r.searches[userID] = &cp
	return nil
}

func (r *SessionRepository) DeleteSearch(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.searches, userID)
	return nil
}

// ArchiveRepository records archived profiles and moderation entries.
type ArchiveRepository struct {
	mu       sync.Mutex
	Archived []*domain.Profile
	Records  []*domain.ModerationRecord
}

func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{}
}

func (r *ArchiveRepository) ArchiveProfile(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Archived = append(r.Archived, clone(profile))
	return nil
}

func (r *ArchiveRepository) RecordModeration(_ context.Context, rec *domain.ModerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.Records = append(r.Records, &cp)
	return nil
}

// RecordsFor returns moderation records for one user.
func (r *ArchiveRepository) RecordsFor(userID int64) []*domain.ModerationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ModerationRecord
	for _, rec := range r.Records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
var _ repository.SessionRepository = (*SessionRepository)(nil)
var _ repository.ArchiveRepository = (*ArchiveRepository)(nil)
