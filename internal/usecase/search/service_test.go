package search

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
	"github.com/amoradev/amora-backend/internal/usecase/ranking"
	"github.com/amoradev/amora-backend/pkg/backoff"
)

const requesterID int64 = 1

func seedComplete(repo *memory.ProfileRepository, id int64, gender domain.Gender) *domain.Profile {
	p := &domain.Profile{
		ID:         id,
		Gender:     gender,
		LookingFor: domain.LookingForAny,
		Name:       "User",
		Age:        25,
		HeightCm:   175,
		Bio:        "plain bio",
		Hobbies:    []string{"🎵 Music"},
		PhotoID:    "photo",
		Location:   &domain.Location{Latitude: 55.75, Longitude: 37.61},
	}
	repo.Seed(p)
	return p
}

func newService(t *testing.T) (*Service, *memory.ProfileRepository, *memory.SessionRepository, *transporttest.Recorder) {
	t.Helper()
	profiles := memory.NewProfileRepository()
	sessions := memory.NewSessionRepository()
	notifier := transporttest.NewRecorder()
	ranker := ranking.NewRanker(profiles, memory.NewArchiveRepository(), zap.NewNop(), ranking.Options{})
	quick := backoff.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	svc := NewService(profiles, sessions, ranker, notifier, zap.NewNop(), quick, 8*time.Hour)
	return svc, profiles, sessions, notifier
}

func TestStartPresentsAndRecordsView(t *testing.T) {
	svc, profiles, sessions, notifier := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)
	seedComplete(profiles, 2, domain.GenderMale)

	require.NoError(t, svc.Start(ctx, requesterID))

	session, err := sessions.GetSearch(ctx, requesterID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, session.Results)
	assert.Equal(t, 0, session.Cursor)

	// Presentation itself records the view.
	me, err := profiles.FindByID(ctx, requesterID)
	require.NoError(t, err)
	assert.True(t, me.HasViewed(2))
	_, ok := me.ViewedAt(2)
	assert.True(t, ok)

	last := notifier.Last()
	assert.Equal(t, "photo", last.Kind)
	require.Len(t, last.Buttons, 3)
	assert.Equal(t, "like_2", last.Buttons[0].Data)
	assert.Equal(t, "dislike_2", last.Buttons[1].Data)
	assert.Equal(t, "report_2", last.Buttons[2].Data)
}

func TestPresentRetriesViewRecording(t *testing.T) {
	svc, profiles, _, notifier := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)
	seedComplete(profiles, 2, domain.GenderMale)

	profiles.FailMarkViewed = 1

	require.NoError(t, svc.Start(ctx, requesterID))

	me, err := profiles.FindByID(ctx, requesterID)
	require.NoError(t, err)
	assert.True(t, me.HasViewed(2))
	assert.Equal(t, "photo", notifier.Last().Kind)
}

func TestStartUnregisteredRequester(t *testing.T) {
	svc, profiles, _, _ := newService(t)
	ctx := context.Background()

	err := svc.Start(ctx, requesterID)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	incomplete := seedComplete(profiles, requesterID, domain.GenderFemale)
	incomplete.PhotoID = ""
	profiles.Seed(incomplete)

	err = svc.Start(ctx, requesterID)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestStartEmptyPool(t *testing.T) {
	svc, profiles, sessions, notifier := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)

	require.NoError(t, svc.Start(ctx, requesterID))

	assert.True(t, notifier.Contains("No new profiles nearby"))
	_, err := sessions.GetSearch(ctx, requesterID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStartReplacesSessionWholesale(t *testing.T) {
	svc, profiles, sessions, _ := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)
	seedComplete(profiles, 2, domain.GenderMale)

	require.NoError(t, sessions.SaveSearch(ctx, requesterID, &domain.SearchSession{
		Results: []int64{9, 8, 7},
		Cursor:  2,
	}))

	require.NoError(t, svc.Start(ctx, requesterID))

	session, err := sessions.GetSearch(ctx, requesterID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, session.Results)
	assert.Equal(t, 0, session.Cursor)
}

func TestAdvanceWalksAndExhausts(t *testing.T) {
	svc, profiles, sessions, notifier := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)
	seedComplete(profiles, 2, domain.GenderMale)
	seedComplete(profiles, 3, domain.GenderMale)

	require.NoError(t, sessions.SaveSearch(ctx, requesterID, &domain.SearchSession{Results: []int64{2, 3}}))

	require.NoError(t, svc.Advance(ctx, requesterID))
	session, err := sessions.GetSearch(ctx, requesterID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Cursor)

	require.NoError(t, svc.Advance(ctx, requesterID))
	assert.True(t, notifier.Contains("No more profiles"))

	// Repeated advances stay exhausted.
	require.NoError(t, svc.Advance(ctx, requesterID))
	session, err = sessions.GetSearch(ctx, requesterID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Cursor)
}

func TestAdvanceWithoutSession(t *testing.T) {
	svc, _, _, notifier := newService(t)

	require.NoError(t, svc.Advance(context.Background(), requesterID))
	assert.True(t, notifier.Contains("No more profiles"))
}

func TestPresentFallsBackToText(t *testing.T) {
	svc, profiles, sessions, notifier := newService(t)
	ctx := context.Background()

	seedComplete(profiles, requesterID, domain.GenderFemale)
	seedComplete(profiles, 2, domain.GenderMale)
	require.NoError(t, sessions.SaveSearch(ctx, requesterID, &domain.SearchSession{Results: []int64{2, 3}}))

	notifier.FailPhoto = errors.New("photo upload rejected")

	require.NoError(t, svc.Start(ctx, requesterID))

	last := notifier.Last()
	assert.Equal(t, "text", last.Kind)
	assert.Contains(t, last.Text, "User")
}

func TestCurrent(t *testing.T) {
	svc, _, sessions, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, sessions.SaveSearch(ctx, requesterID, &domain.SearchSession{Results: []int64{5}}))

	id, err := svc.Current(ctx, requesterID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestFormatCardShowsVerifiedBadge(t *testing.T) {
	p := &domain.Profile{
		Name: "Anna", Gender: domain.GenderFemale, Age: 24, HeightCm: 168,
		Hobbies: []string{"🎵 Music"}, Bio: "hi", Verified: true,
	}
	card := FormatCard(p)
	assert.Contains(t, card, "Anna ✅")

	p.Verified = false
	assert.NotContains(t, FormatCard(p), "✅")
}
