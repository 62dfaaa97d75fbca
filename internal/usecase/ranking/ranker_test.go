package ranking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository/memory"
)

func profile(id int64, gender domain.Gender, age int, hobbies ...string) *domain.Profile {
	return &domain.Profile{
		ID:         id,
		Gender:     gender,
		LookingFor: domain.LookingForAny,
		Name:       "User",
		Age:        age,
		HeightCm:   175,
		Bio:        "just a regular bio",
		Hobbies:    hobbies,
		PhotoID:    "photo",
		Location:   &domain.Location{Latitude: 55.75, Longitude: 37.61},
	}
}

func newTestRanker(t *testing.T) (*Ranker, *memory.ProfileRepository, *memory.ArchiveRepository) {
	t.Helper()
	profiles := memory.NewProfileRepository()
	archive := memory.NewArchiveRepository()
	return NewRanker(profiles, archive, zap.NewNop(), Options{}), profiles, archive
}

func TestRankVerifiedOutranksUnverified(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music", "🎮 Gaming")

	verified := profile(2, domain.GenderMale, 25, "🎵 Music", "🎮 Gaming")
	verified.Verified = true
	// The unverified candidate has full hobby overlap and zero distance; the
	// verified one shares only half. Verification still dominates.
	unverified := profile(3, domain.GenderMale, 25, "🎵 Music", "🎮 Gaming")
	verified.Hobbies = []string{"🎵 Music"}

	got, err := r.Rank(context.Background(), me, []*domain.Profile{unverified, verified})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Profile.ID)
	assert.Equal(t, int64(3), got[1].Profile.ID)
}

func TestRankHobbyOverlapThreshold(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music", "🎮 Gaming", "📚 Reading")

	// 2 of 4 distinct tags shared: overlap 0.5, passes.
	passing := profile(2, domain.GenderMale, 25, "🎵 Music", "🎮 Gaming", "🏃 Sports")
	// 1 of 5 distinct tags shared: overlap 0.2, below the 0.3 floor.
	failing := profile(3, domain.GenderMale, 25, "🎵 Music", "🏃 Sports", "🎨 Art")

	got, err := r.Rank(context.Background(), me, []*domain.Profile{passing, failing})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Profile.ID)
}

func TestRankHobbyOverlapExactBoundary(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25,
		"🎵 Music", "🎮 Gaming", "📚 Reading", "🏃 Sports", "🎨 Art", "✈️ Travel")

	// 3 shared of union 10: overlap exactly 0.3, sits on the floor and passes.
	atFloor := profile(2, domain.GenderMale, 25,
		"🎵 Music", "🎮 Gaming", "📚 Reading", "🍳 Cooking", "🎬 Movies", "🧘 Yoga", "📷 Photo")
	// 2 shared of union 7: overlap ≈0.286, just under the floor.
	underFloor := profile(3, domain.GenderMale, 25,
		"🎵 Music", "🎮 Gaming", "🍳 Cooking")

	got, err := r.Rank(context.Background(), me, []*domain.Profile{atFloor, underFloor})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Profile.ID)
}

func TestRankAgeGapBoundary(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 30, "🎵 Music")

	atLimit := profile(2, domain.GenderMale, 40, "🎵 Music")
	pastLimit := profile(3, domain.GenderMale, 41, "🎵 Music")

	got, err := r.Rank(context.Background(), me, []*domain.Profile{atLimit, pastLimit})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Profile.ID)
}

func TestRankSkipsSelfBannedDeletedIncomplete(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music")

	self := profile(1, domain.GenderFemale, 25, "🎵 Music")
	banned := profile(2, domain.GenderMale, 25, "🎵 Music")
	banned.Banned = true
	deleted := profile(3, domain.GenderMale, 25, "🎵 Music")
	deleted.Deleted = true
	incomplete := profile(4, domain.GenderMale, 25, "🎵 Music")
	incomplete.PhotoID = ""

	got, err := r.Rank(context.Background(), me, []*domain.Profile{self, banned, deleted, incomplete})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankGenderPreference(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music")
	me.LookingFor = domain.LookingForMale

	male := profile(2, domain.GenderMale, 25, "🎵 Music")
	female := profile(3, domain.GenderFemale, 25, "🎵 Music")

	got, err := r.Rank(context.Background(), me, []*domain.Profile{male, female})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Profile.ID)
}

func TestRankRecentlyViewedHidden(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music")

	recent := profile(2, domain.GenderMale, 25, "🎵 Music")
	stale := profile(3, domain.GenderMale, 25, "🎵 Music")
	noStamp := profile(4, domain.GenderMale, 25, "🎵 Music")

	now := time.Now()
	me.Viewed = []int64{2, 3, 4}
	me.ViewedTimes = map[string]time.Time{
		domain.FormatID(2): now.Add(-time.Hour),
		domain.FormatID(3): now.Add(-9 * time.Hour),
	}

	got, err := r.Rank(context.Background(), me, []*domain.Profile{recent, stale, noStamp})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].Profile.ID)
}

func TestRankBansSuspiciousCandidate(t *testing.T) {
	r, profiles, archive := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music")

	spammer := profile(2, domain.GenderMale, 25, "🎵 Music")
	spammer.Bio = "great deals, buy now at onlyfans"
	profiles.Seed(spammer)

	got, err := r.Rank(context.Background(), me, []*domain.Profile{spammer})

	require.NoError(t, err)
	assert.Empty(t, got)

	stored, err := profiles.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, stored.Banned)

	recs := archive.RecordsFor(2)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ModerationSuspicious, recs[0].Action)
}

func TestRankIncompleteRequester(t *testing.T) {
	r, _, _ := newTestRanker(t)
	me := profile(1, domain.GenderFemale, 25, "🎵 Music")
	me.Location = nil

	_, err := r.Rank(context.Background(), me, nil)

	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestRankTruncatesToTopK(t *testing.T) {
	profiles := memory.NewProfileRepository()
	archive := memory.NewArchiveRepository()
	r := NewRanker(profiles, archive, zap.NewNop(), Options{TopK: 2})

	me := profile(1, domain.GenderFemale, 25, "🎵 Music")
	pool := []*domain.Profile{
		profile(2, domain.GenderMale, 25, "🎵 Music"),
		profile(3, domain.GenderMale, 25, "🎵 Music"),
		profile(4, domain.GenderMale, 25, "🎵 Music"),
	}

	got, err := r.Rank(context.Background(), me, pool)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard([]string{"a", "b"}, []string{"b", "a"}), 1e-9)
	assert.InDelta(t, 0.5, Jaccard([]string{"a", "b", "c"}, []string{"b", "c", "d"}), 1e-9)
	assert.InDelta(t, 0.0, Jaccard([]string{"a"}, []string{"b"}), 1e-9)
	assert.InDelta(t, 0.0, Jaccard(nil, nil), 1e-9)
	// Duplicate tags must not inflate the intersection.
	assert.InDelta(t, 0.5, Jaccard([]string{"a", "b"}, []string{"a", "a", "c"}), 1e-9)
}

func TestSuspicion(t *testing.T) {
	assert.Empty(t, Suspicion("Anna", "I like hiking and tea"))

	assert.Contains(t, Suspicion("A", "fine bio"), "name too short")
	assert.Contains(t, Suspicion("  x ", "fine bio"), "name too short")

	long := strings.Repeat("x", maxBioLen+1)
	assert.Contains(t, Suspicion("Anna", long), "bio exceeds length cap")

	reasons := Suspicion("Anna", "Visit HTTPS://spam.example and use promo code X")
	assert.Contains(t, reasons, "denylisted term: https://")
	assert.Contains(t, reasons, "denylisted term: promo code")
}
