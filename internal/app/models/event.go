package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// unlimitedSentinel is how an unlimited capacity crosses the JSON and SQL boundary
const unlimitedSentinel = -1

// Capacity is either Limited(n) with n > 0 or Unlimited. The zero value is
// Unlimited.
type Capacity struct {
	limit   uint32
	limited bool
}

// Limited returns a capacity of n seats
func Limited(n uint32) Capacity {
	return Capacity{limit: n, limited: true}
}

// Unlimited returns a capacity with no seat limit
func Unlimited() Capacity {
	return Capacity{}
}

// CapacityFromInt decodes the boundary representation: -1 or a positive count
func CapacityFromInt(n int64) (Capacity, error) {
	switch {
	case n == unlimitedSentinel:
		return Unlimited(), nil
	case n > 0 && n <= int64(^uint32(0)):
		return Limited(uint32(n)), nil
	default:
		return Capacity{}, fmt.Errorf("capacity must be a positive integer or %d, got %d", unlimitedSentinel, n)
	}
}

// IsUnlimited reports whether the capacity has no limit
func (c Capacity) IsUnlimited() bool {
	return !c.limited
}

// Limit returns the seat count and false when unlimited
func (c Capacity) Limit() (uint32, bool) {
	return c.limit, c.limited
}

// HasRoomFor reports whether one more attendee fits given the current count
func (c Capacity) HasRoomFor(attendees int) bool {
	if !c.limited {
		return true
	}
	return attendees < int(c.limit)
}

// Int64 returns the boundary representation
func (c Capacity) Int64() int64 {
	if !c.limited {
		return unlimitedSentinel
	}
	return int64(c.limit)
}

func (c Capacity) String() string {
	if !c.limited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", c.limit)
}

// MarshalJSON renders the capacity as its integer form
func (c Capacity) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Int64())
}

// UnmarshalJSON accepts a positive integer or -1
func (c *Capacity) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("capacity: %w", err)
	}
	parsed, err := CapacityFromInt(n)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Event is a scheduled club activity
type Event struct {
	ID          int64        `json:"id" db:"id"`
	ClubID      int64        `json:"clubId" db:"club_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	StartsAt    time.Time    `json:"startsAt" db:"starts_at"`
	Location    string       `json:"location" db:"location"`
	Capacity    Capacity     `json:"capacity" db:"capacity"`
	Attendees   int          `json:"attendees" db:"attendees"`
	Details     EventDetails `json:"details" db:"details"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsFull reports whether a new attendee would be rejected
func (e *Event) IsFull() bool {
	return !e.Capacity.HasRoomFor(e.Attendees)
}

// EventDetails is descriptive metadata stored verbatim
type EventDetails struct {
	Images   []string        `json:"images,omitempty"`
	Schedule []ScheduleEntry `json:"schedule,omitempty"`
	Speakers []Speaker       `json:"speakers,omitempty"`
	FAQ      []FAQEntry      `json:"faq,omitempty"`
}

type ScheduleEntry struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

type Speaker struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EventPatch holds the admin-editable event fields. Attendees and the
// attendance roster are owned by join/leave and cannot be patched.
type EventPatch struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	Location    *string
	Capacity    *Capacity
	Details     *EventDetails
}

// Apply copies the patch onto e
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartsAt != nil {
		e.StartsAt = *p.StartsAt
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Details != nil {
		e.Details = *p.Details
	}
}

// Attendance records that a user joined an event
type Attendance struct {
	EventID  int64     `json:"eventId" db:"event_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}
