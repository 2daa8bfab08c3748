package dto

import (
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
)

// UserMessageView is a support ticket as its sender sees it. Internal notes
// are admin-only and never included.
type UserMessageView struct {
	ID         int64                  `json:"id"`
	ClubID     int64                  `json:"clubId"`
	Subject    string                 `json:"subject"`
	Topic      string                 `json:"topic"`
	Content    string                 `json:"content"`
	Priority   models.MessagePriority `json:"priority"`
	Status     models.MessageStatus   `json:"status"`
	Response   *string                `json:"response,omitempty"`
	AnsweredAt *time.Time             `json:"answeredAt,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// NewUserMessageView strips admin-only fields from m
func NewUserMessageView(m *models.Message) UserMessageView {
	return UserMessageView{
		ID:         m.ID,
		ClubID:     m.ClubID,
		Subject:    m.Subject,
		Topic:      m.Topic,
		Content:    m.Content,
		Priority:   m.Priority,
		Status:     m.Status,
		Response:   m.Response,
		AnsweredAt: m.AnsweredAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// NewUserMessageViews converts a list of messages
func NewUserMessageViews(messages []*models.Message) []UserMessageView {
	views := make([]UserMessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, NewUserMessageView(m))
	}
	return views
}
