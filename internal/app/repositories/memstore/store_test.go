package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

func newRepos(t *testing.T) (*repositories.Repositories, *models.Club) {
	t.Helper()
	repos := New().Repositories()
	club := &models.Club{Slug: "chess", Name: "Chess Club", Category: "games"}
	require.NoError(t, repos.ClubRepository.Create(context.Background(), club))
	return repos, club
}

func TestClubSlugUnique(t *testing.T) {
	repos, _ := newRepos(t)
	err := repos.ClubRepository.Create(context.Background(), &models.Club{Slug: "chess", Name: "Other"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestMembershipDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	memberships := repos.MembershipRepository

	first := &models.Membership{ClubID: club.ID, Name: "Ada", StudentID: "S1", Email: "ada@uni.edu", Status: models.MembershipPending}
	require.NoError(t, memberships.Create(ctx, first))

	dupEmail := &models.Membership{ClubID: club.ID, Name: "Ada", StudentID: "S2", Email: " ADA@uni.edu", Status: models.MembershipPending}
	assert.ErrorIs(t, memberships.Create(ctx, dupEmail), apperrors.ErrDuplicateMembership)

	otherClub := &models.Club{Slug: "go", Name: "Go Club"}
	require.NoError(t, repos.ClubRepository.Create(ctx, otherClub))
	elsewhere := &models.Membership{ClubID: otherClub.ID, Name: "Ada", StudentID: "S1", Status: models.MembershipPending}
	assert.NoError(t, memberships.Create(ctx, elsewhere))
}

func TestMembershipConcurrentDuplicateSubmissions(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.MembershipRepository.Create(ctx, &models.Membership{
				ClubID: club.ID, Name: "Ada", StudentID: "S1", Status: models.MembershipPending,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, apperrors.ErrDuplicateMembership) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, duplicates)
}

func TestActivateKeepsActiveUntouched(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	m := &models.Membership{ClubID: club.ID, Name: "Ada", Email: "ada@uni.edu", Role: models.DefaultMemberRole, Status: models.MembershipPending}
	require.NoError(t, repos.MembershipRepository.Create(ctx, m))

	captain := "Captain"
	activated, err := repos.MembershipRepository.Activate(ctx, m.ID, &captain)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, activated.Status)
	assert.Equal(t, "Captain", activated.Role)

	other := "Treasurer"
	again, err := repos.MembershipRepository.Activate(ctx, m.ID, &other)
	require.NoError(t, err)
	assert.Equal(t, "Captain", again.Role)

	_, err = repos.MembershipRepository.Activate(ctx, 999, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestJoinRaceOnSingleSeat(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	event := &models.Event{ClubID: club.ID, Title: "Simul", StartsAt: time.Now(), Capacity: models.Limited(1)}
	require.NoError(t, repos.EventRepository.Create(ctx, event))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repos.EventRepository.Join(ctx, event.ID, int64(100+i))
		}(i)
	}
	wg.Wait()

	successes, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, apperrors.ErrEventFull):
			full++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, full)

	stored, err := repos.EventRepository.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Attendees)
}

func TestUpdateDoesNotTouchAttendance(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	event := &models.Event{ClubID: club.ID, Title: "Talk", StartsAt: time.Now(), Capacity: models.Limited(5)}
	require.NoError(t, repos.EventRepository.Create(ctx, event))
	for u := int64(1); u <= 3; u++ {
		_, err := repos.EventRepository.Join(ctx, event.ID, u)
		require.NoError(t, err)
	}

	lower := models.Limited(2)
	title := "Talk (moved)"
	updated, err := repos.EventRepository.Update(ctx, event.ID, models.EventPatch{Title: &title, Capacity: &lower})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Attendees)
	assert.True(t, updated.IsFull())

	_, err = repos.EventRepository.Join(ctx, event.ID, 4)
	assert.ErrorIs(t, err, apperrors.ErrEventFull)

	roster, err := repos.EventRepository.ListAttendees(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 3)
}

func TestRespondOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	msg := &models.Message{ClubID: club.ID, UserID: 7, Subject: "Hi", Content: "?", Status: models.MessageSent, Priority: models.PriorityMedium}
	require.NoError(t, repos.MessageRepository.Create(ctx, msg))

	answered, err := repos.MessageRepository.Respond(ctx, msg.ID, "Hello", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.MessageResolved, answered.Status)
	require.NotNil(t, answered.AnsweredAt)

	_, err = repos.MessageRepository.Respond(ctx, msg.ID, "Again", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResponded)

	_, err = repos.MessageRepository.Respond(ctx, 404, "x", time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestConditionalStatusUpdate(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	msg := &models.Message{ClubID: club.ID, UserID: 7, Subject: "Hi", Content: "?", Status: models.MessageInProgress}
	require.NoError(t, repos.MessageRepository.Create(ctx, msg))

	got, err := repos.MessageRepository.UpdateStatus(ctx, msg.ID, models.MessageRead, models.MessageSent)
	require.NoError(t, err)
	assert.Equal(t, models.MessageInProgress, got.Status)

	got, err = repos.MessageRepository.UpdateStatus(ctx, msg.ID, models.MessageSent)
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, got.Status)
}

func TestDeleteClubCascades(t *testing.T) {
	ctx := context.Background()
	repos, club := newRepos(t)
	event := &models.Event{ClubID: club.ID, Title: "Talk", StartsAt: time.Now()}
	require.NoError(t, repos.EventRepository.Create(ctx, event))
	_, err := repos.EventRepository.Join(ctx, event.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repos.ClubRepository.Delete(ctx, club.ID))

	_, err = repos.EventRepository.GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	joined, err := repos.EventRepository.HasJoined(ctx, event.ID, 1)
	require.NoError(t, err)
	assert.False(t, joined)
}
