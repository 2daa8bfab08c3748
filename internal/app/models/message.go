package models

import (
	"fmt"
	"strings"
	"time"
)

// MessageStatus is the support ticket workflow state. The lifecycle
// sent -> read -> in_progress -> resolved is advisory; closed is reachable
// from any unresolved state and admins may override any status.
type MessageStatus string

const (
	MessageSent       MessageStatus = "sent"
	MessageRead       MessageStatus = "read"
	MessageInProgress MessageStatus = "in_progress"
	MessageResolved   MessageStatus = "resolved"
	MessageClosed     MessageStatus = "closed"
)

// legacyRepliedStatus is accepted on input and stored as resolved
const legacyRepliedStatus = "replied"

// ParseMessageStatus validates s, mapping the legacy "replied" alias
func ParseMessageStatus(s string) (MessageStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == legacyRepliedStatus {
		return MessageResolved, nil
	}
	switch st := MessageStatus(normalized); st {
	case MessageSent, MessageRead, MessageInProgress, MessageResolved, MessageClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown message status %q", s)
}

// rank orders statuses along the natural lifecycle. closed sits beside the
// lifecycle rather than on it.
func (s MessageStatus) rank() int {
	switch s {
	case MessageSent:
		return 0
	case MessageRead:
		return 1
	case MessageInProgress:
		return 2
	case MessageResolved:
		return 3
	}
	return -1
}

// Terminal reports whether s ends the natural lifecycle
func (s MessageStatus) Terminal() bool {
	return s == MessageResolved || s == MessageClosed
}

// IsBackwardFrom reports whether moving from prev to s walks the lifecycle
// backwards, including re-opening a closed ticket.
func (s MessageStatus) IsBackwardFrom(prev MessageStatus) bool {
	if prev == MessageClosed {
		return s != MessageClosed
	}
	if s == MessageClosed {
		return false
	}
	return s.rank() < prev.rank()
}

// MessagePriority is the ticket priority
type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityMedium MessagePriority = "medium"
	PriorityHigh   MessagePriority = "high"
)

// ParseMessagePriority validates s
func ParseMessagePriority(s string) (MessagePriority, error) {
	switch p := MessagePriority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown message priority %q", s)
}

// Conventional topics offered by the contact form
const (
	TopicQuestion      = "Soru"
	TopicSuggestion    = "Öneri"
	TopicComplaint     = "Şikayet"
	TopicCollaboration = "İşbirliği"
)

// Message is a support ticket sent by a user to a club
type Message struct {
	ID            int64           `json:"id" db:"id"`
	ClubID        int64           `json:"clubId" db:"club_id"`
	UserID        int64           `json:"userId" db:"user_id"`
	SenderName    string          `json:"senderName" db:"sender_name"`
	Subject       string          `json:"subject" db:"subject"`
	Topic         string          `json:"topic" db:"topic"`
	Content       string          `json:"content" db:"content"`
	Priority      MessagePriority `json:"priority" db:"priority"`
	Status        MessageStatus   `json:"status" db:"status"`
	Response      *string         `json:"response,omitempty" db:"response"`
	AnsweredAt    *time.Time      `json:"answeredAt,omitempty" db:"answered_at"`
	InternalNotes []InternalNote  `json:"internalNotes" db:"internal_notes"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// InternalNote is an admin-only annotation. Notes are append-only.
type InternalNote struct {
	Note  string    `json:"note"`
	Admin string    `json:"admin"`
	Date  time.Time `json:"date"`
}
