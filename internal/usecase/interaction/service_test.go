package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository/memory"
	"github.com/amoradev/amora-backend/internal/transport/transporttest"
	"github.com/amoradev/amora-backend/pkg/backoff"
)

const (
	aliceID int64 = 1
	bobID   int64 = 2
	adminID int64 = 999
)

type fakePresenter struct {
	advanced []int64
}

func (p *fakePresenter) Advance(_ context.Context, userID int64) error {
	p.advanced = append(p.advanced, userID)
	return nil
}

type fakeIcebreaker struct {
	out string
	err error
}

func (i *fakeIcebreaker) GenerateIcebreakers(context.Context, *domain.Profile, *domain.Profile) (string, error) {
	return i.out, i.err
}

type fakePublisher struct {
	published []*domain.ModerationRecord
}

func (p *fakePublisher) PublishModeration(_ context.Context, rec *domain.ModerationRecord) error {
	p.published = append(p.published, rec)
	return nil
}

type fixture struct {
	svc       *Service
	profiles  *memory.ProfileRepository
	archive   *memory.ArchiveRepository
	presenter *fakePresenter
	notifier  *transporttest.Recorder
	publisher *fakePublisher
}

func newFixture(t *testing.T, ice Icebreaker) *fixture {
	t.Helper()
	f := &fixture{
		profiles:  memory.NewProfileRepository(),
		archive:   memory.NewArchiveRepository(),
		presenter: &fakePresenter{},
		notifier:  transporttest.NewRecorder(),
		publisher: &fakePublisher{},
	}
	quick := backoff.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	f.svc = NewService(f.profiles, f.archive, f.presenter, f.notifier, ice, f.publisher, zap.NewNop(), quick, 3, adminID)
	return f
}

func seed(f *fixture, id int64, name, username string) *domain.Profile {
	p := &domain.Profile{
		ID:       id,
		Name:     name,
		Username: username,
		Gender:   domain.GenderFemale,
		Age:      25,
		HeightCm: 170,
		Bio:      "bio",
		Hobbies:  []string{"🎵 Music"},
		PhotoID:  "photo",
		Location: &domain.Location{Latitude: 1, Longitude: 1},
	}
	f.profiles.Seed(p)
	return p
}

func TestLikeRecordsBothSides(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	alice, _ := f.profiles.FindByID(ctx, aliceID)
	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.True(t, alice.HasLiked(bobID))
	assert.Contains(t, bob.LikedBy, aliceID)

	// One-sided like is not announced as a match.
	assert.False(t, f.notifier.Contains("match"))
	assert.Equal(t, []int64{aliceID}, f.presenter.advanced)
}

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))
	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.Equal(t, []int64{aliceID}, bob.LikedBy)
	assert.True(t, f.notifier.Contains("already liked"))
	assert.Equal(t, []int64{aliceID, aliceID}, f.presenter.advanced)
}

func TestLikeRetriesTransientWriteFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	f.profiles.FailAddLikedBy = 1
	f.profiles.FailAddLiked = 1

	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	alice, _ := f.profiles.FindByID(ctx, aliceID)
	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.True(t, alice.HasLiked(bobID))
	assert.Contains(t, bob.LikedBy, aliceID)
	assert.False(t, f.notifier.Contains("Couldn't save"))
	assert.Equal(t, []int64{aliceID}, f.presenter.advanced)
}

func TestLikeSurfacesFailureAfterRetriesExhaust(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	// More failures than the policy has attempts.
	f.profiles.FailAddLikedBy = 2

	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.NotContains(t, bob.LikedBy, aliceID)
	assert.True(t, f.notifier.Contains("Couldn't save your like"))
	assert.Empty(t, f.presenter.advanced)
}

func TestReportRetriesTransientWriteFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	f.profiles.FailIncrementReports = 1

	require.NoError(t, f.svc.Report(ctx, aliceID, bobID))

	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.Equal(t, 1, bob.Reports)
	assert.True(t, f.notifier.Contains("report was filed"))
	assert.False(t, f.notifier.Contains("Couldn't file"))
}

func TestMutualLikeNotifiesBoth(t *testing.T) {
	f := newFixture(t, &fakeIcebreaker{out: "1. Ask about music"})
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Like(ctx, bobID, aliceID))
	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	aliceMsgs := f.notifier.For(aliceID)
	bobMsgs := f.notifier.For(bobID)
	require.NotEmpty(t, aliceMsgs)
	require.NotEmpty(t, bobMsgs)
	assert.Contains(t, aliceMsgs[len(aliceMsgs)-1].Text, "match with Bob")
	assert.Contains(t, aliceMsgs[len(aliceMsgs)-1].Text, "@bob")
	assert.Contains(t, bobMsgs[len(bobMsgs)-1].Text, "match with Alice")
	assert.Contains(t, bobMsgs[len(bobMsgs)-1].Text, "Ask about music")
}

func TestMutualLikeSurvivesIcebreakerFailure(t *testing.T) {
	f := newFixture(t, &fakeIcebreaker{err: errors.New("quota exceeded")})
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Like(ctx, bobID, aliceID))
	require.NoError(t, f.svc.Like(ctx, aliceID, bobID))

	assert.True(t, f.notifier.Contains("match with Bob"))
	assert.True(t, f.notifier.Contains("match with Alice"))
}

func TestLikeSelf(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.Like(context.Background(), aliceID, aliceID)

	assert.ErrorIs(t, err, domain.ErrCannotActSelf)
}

func TestDislikeOnlyAdvances(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, aliceID, "Alice", "alice")
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Dislike(ctx, aliceID, bobID))

	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.Empty(t, bob.LikedBy)
	assert.Equal(t, []int64{aliceID}, f.presenter.advanced)
}

func TestReportBansAtThresholdNotBefore(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seed(f, bobID, "Bob", "bob")

	require.NoError(t, f.svc.Report(ctx, 10, bobID))
	require.NoError(t, f.svc.Report(ctx, 11, bobID))

	bob, _ := f.profiles.FindByID(ctx, bobID)
	assert.Equal(t, 2, bob.Reports)
	assert.False(t, bob.Banned)

	require.NoError(t, f.svc.Report(ctx, 12, bobID))

	bob, _ = f.profiles.FindByID(ctx, bobID)
	assert.Equal(t, 3, bob.Reports)
	assert.True(t, bob.Banned)

	// Reported records for every report, one banned record at the threshold.
	recs := f.archive.RecordsFor(bobID)
	var reported, banned int
	for _, rec := range recs {
		switch rec.Action {
		case domain.ModerationReported:
			reported++
		case domain.ModerationBanned:
			banned++
		}
	}
	assert.Equal(t, 3, reported)
	assert.Equal(t, 1, banned)

	// Moderation events reach the bus and the admin chat hears about the ban.
	assert.Len(t, f.publisher.published, 4)
	assert.NotEmpty(t, f.notifier.For(adminID))
}

func TestListMatchesMutualOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	alice := seed(f, aliceID, "Alice", "alice")
	alice.Liked = []int64{bobID, 3}
	alice.LikedBy = []int64{bobID, 4}
	f.profiles.Seed(alice)

	bob := seed(f, bobID, "Bob", "bob")
	bob.Liked = []int64{aliceID}
	f.profiles.Seed(bob)

	// 4 liked Alice but she never liked back; 3 is liked one-way.
	seed(f, 3, "Carol", "carol")
	seed(f, 4, "Dave", "dave")

	require.NoError(t, f.svc.ListMatches(ctx, aliceID))

	msgs := f.notifier.For(aliceID)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Text, "1 match")
	assert.True(t, f.notifier.Contains("@bob"))
	assert.False(t, f.notifier.Contains("@carol"))
	assert.False(t, f.notifier.Contains("@dave"))
}

func TestListMatchesEmpty(t *testing.T) {
	f := newFixture(t, nil)
	seed(f, aliceID, "Alice", "alice")

	require.NoError(t, f.svc.ListMatches(context.Background(), aliceID))

	assert.True(t, f.notifier.Contains("No matches yet"))
}

func TestListMatchesUnregistered(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.ListMatches(context.Background(), aliceID)

	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}
