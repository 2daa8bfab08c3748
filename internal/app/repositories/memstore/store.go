// Package memstore keeps every repository in process memory behind one
// mutex. It backs the memory database driver and the service tests.
package memstore

import (
	"sync"
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
)

// Store holds all tables. Each repository method takes mu for its whole
// read-check-write sequence, which makes it atomic.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	seq         map[string]int64
	clubs       map[int64]*models.Club
	memberships map[int64]*models.Membership
	events      map[int64]*models.Event
	attendance  map[int64]map[int64]time.Time // eventID -> userID -> joinedAt
	messages    map[int64]*models.Message
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:         time.Now,
		seq:         map[string]int64{},
		clubs:       map[int64]*models.Club{},
		memberships: map[int64]*models.Membership{},
		events:      map[int64]*models.Event{},
		attendance:  map[int64]map[int64]time.Time{},
		messages:    map[int64]*models.Message{},
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		ClubRepository:       &ClubRepository{s: s},
		MembershipRepository: &MembershipRepository{s: s},
		EventRepository:      &EventRepository{s: s},
		MessageRepository:    &MessageRepository{s: s},
	}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func pageWindow(total, page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

func cloneClub(c *models.Club) *models.Club {
	out := *c
	out.Roles = append([]models.ClubRole(nil), c.Roles...)
	return &out
}

func cloneMembership(m *models.Membership) *models.Membership {
	out := *m
	return &out
}

func cloneEvent(e *models.Event) *models.Event {
	out := *e
	out.Details = models.EventDetails{
		Images:   append([]string(nil), e.Details.Images...),
		Schedule: append([]models.ScheduleEntry(nil), e.Details.Schedule...),
		Speakers: append([]models.Speaker(nil), e.Details.Speakers...),
		FAQ:      append([]models.FAQEntry(nil), e.Details.FAQ...),
	}
	return &out
}

func cloneMessage(m *models.Message) *models.Message {
	out := *m
	out.InternalNotes = append([]models.InternalNote{}, m.InternalNotes...)
	return &out
}
