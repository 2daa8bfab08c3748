package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

var _ repositories.EventRepository = (*EventRepository)(nil)

// EventRepository is the in-memory event and attendance table
type EventRepository struct {
	s *Store
}

func (r *EventRepository) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	e.ID = r.s.nextID("events")
	e.Attendees = 0
	e.CreatedAt, e.UpdatedAt = now, now
	r.s.events[e.ID] = cloneEvent(e)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *EventRepository) ListByClub(_ context.Context, clubID int64, startsAfter *time.Time) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := []*models.Event{}
	for _, e := range r.s.events {
		if e.ClubID != clubID {
			continue
		}
		if startsAfter != nil && e.StartsAt.Before(*startsAfter) {
			continue
		}
		events = append(events, cloneEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartsAt.Equal(events[j].StartsAt) {
			return events[i].StartsAt.Before(events[j].StartsAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (r *EventRepository) Update(_ context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	patch.Apply(e)
	e.UpdatedAt = r.s.now()
	return cloneEvent(e), nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.events, id)
	delete(r.s.attendance, id)
	return nil
}

func (r *EventRepository) Join(_ context.Context, eventID, userID int64) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[eventID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	roster := r.s.attendance[eventID]
	if _, joined := roster[userID]; joined {
		return nil, apperrors.ErrAlreadyJoined
	}
	if !e.Capacity.HasRoomFor(e.Attendees) {
		return nil, apperrors.ErrEventFull
	}

	if roster == nil {
		roster = map[int64]time.Time{}
		r.s.attendance[eventID] = roster
	}
	now := r.s.now()
	roster[userID] = now
	e.Attendees++
	e.UpdatedAt = now
	return cloneEvent(e), nil
}

func (r *EventRepository) Leave(_ context.Context, eventID, userID int64) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[eventID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if _, joined := r.s.attendance[eventID][userID]; !joined {
		return nil, repositories.ErrNotFound
	}

	delete(r.s.attendance[eventID], userID)
	if e.Attendees > 0 {
		e.Attendees--
	}
	e.UpdatedAt = r.s.now()
	return cloneEvent(e), nil
}

func (r *EventRepository) HasJoined(_ context.Context, eventID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, joined := r.s.attendance[eventID][userID]
	return joined, nil
}

func (r *EventRepository) ListAttendees(_ context.Context, eventID int64) ([]*models.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.Attendance{}
	for userID, joinedAt := range r.s.attendance[eventID] {
		out = append(out, &models.Attendance{EventID: eventID, UserID: userID, JoinedAt: joinedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
