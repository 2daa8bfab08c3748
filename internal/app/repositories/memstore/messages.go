package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

var _ repositories.MessageRepository = (*MessageRepository)(nil)

// MessageRepository is the in-memory support ticket table
type MessageRepository struct {
	s *Store
}

func (r *MessageRepository) Create(_ context.Context, m *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	m.ID = r.s.nextID("messages")
	m.CreatedAt, m.UpdatedAt = now, now
	if m.InternalNotes == nil {
		m.InternalNotes = []models.InternalNote{}
	}
	r.s.messages[m.ID] = cloneMessage(m)
	return nil
}

func (r *MessageRepository) GetByID(_ context.Context, id int64) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneMessage(m), nil
}

func newestFirst(messages []*models.Message) {
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID > messages[j].ID })
}

func (r *MessageRepository) ListByClub(_ context.Context, clubID int64, filter repositories.MessageFilter) ([]*models.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*models.Message
	for _, m := range r.s.messages {
		if m.ClubID != clubID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneMessage(m))
	}
	newestFirst(matched)

	start, end := pageWindow(len(matched), filter.Page, filter.PageSize)
	return append([]*models.Message{}, matched[start:end]...), int64(len(matched)), nil
}

func (r *MessageRepository) ListBySender(_ context.Context, userID int64) ([]*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.Message{}
	for _, m := range r.s.messages {
		if m.UserID == userID {
			out = append(out, cloneMessage(m))
		}
	}
	newestFirst(out)
	return out, nil
}

func (r *MessageRepository) UpdateStatus(_ context.Context, id int64, to models.MessageStatus, onlyFrom ...models.MessageStatus) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	allowed := len(onlyFrom) == 0
	for _, from := range onlyFrom {
		if m.Status == from {
			allowed = true
			break
		}
	}
	if allowed {
		m.Status = to
		m.UpdatedAt = r.s.now()
	}
	return cloneMessage(m), nil
}

func (r *MessageRepository) Respond(_ context.Context, id int64, response string, answeredAt time.Time) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if m.Response != nil {
		return nil, apperrors.ErrAlreadyResponded
	}

	at := answeredAt
	m.Response = &response
	m.AnsweredAt = &at
	m.Status = models.MessageResolved
	m.UpdatedAt = answeredAt
	return cloneMessage(m), nil
}

func (r *MessageRepository) AddNote(_ context.Context, id int64, note models.InternalNote) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m.InternalNotes = append(m.InternalNotes, note)
	m.UpdatedAt = r.s.now()
	return cloneMessage(m), nil
}

func (r *MessageRepository) SetPriority(_ context.Context, id int64, priority models.MessagePriority) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m.Priority = priority
	m.UpdatedAt = r.s.now()
	return cloneMessage(m), nil
}
