package dto

import (
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
)

// ClubRoleRequest is one custom role label
type ClubRoleRequest struct {
	ID       string `json:"id" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Color    string `json:"color" binding:"omitempty,max=20"`
	Priority int    `json:"priority"`
}

// ClubRequest creates or replaces a club
type ClubRequest struct {
	Slug     string            `json:"slug" binding:"required,max=100" example:"robotics"`
	Name     string            `json:"name" binding:"required,max=200" example:"Robotics Club"`
	Category string            `json:"category" binding:"omitempty,max=100" example:"technology"`
	Roles    []ClubRoleRequest `json:"roles" binding:"omitempty,dive"`
}

// ToModel converts the request into a club
func (r *ClubRequest) ToModel() *models.Club {
	club := &models.Club{Slug: r.Slug, Name: r.Name, Category: r.Category, Roles: []models.ClubRole{}}
	for _, role := range r.Roles {
		club.Roles = append(club.Roles, models.ClubRole{ID: role.ID, Name: role.Name, Color: role.Color, Priority: role.Priority})
	}
	return club
}

// MemberInfoRequest carries the person fields of an application or a direct add
type MemberInfoRequest struct {
	ClubID     int64  `json:"clubId" binding:"required,gt=0" example:"1"`
	Name       string `json:"name" binding:"required,max=200" example:"Ada Lovelace"`
	Department string `json:"department" binding:"omitempty,max=200" example:"Computer Engineering"`
	StudentID  string `json:"studentId" binding:"omitempty,max=50" example:"20261234"`
	Email      string `json:"email" binding:"omitempty,email,max=255" example:"ada@uni.edu.tr"`
	Phone      string `json:"phone" binding:"omitempty,max=50"`
	// Role is only honored on direct adds
	Role string `json:"role" binding:"omitempty,max=100" example:"Member"`
}

// UpdateMembershipRequest approves a membership (status=active) or patches it
type UpdateMembershipRequest struct {
	ID          int64   `json:"id" binding:"required,gt=0" example:"12"`
	Status      *string `json:"status" binding:"omitempty,oneof=active" example:"active"`
	Role        *string `json:"role" binding:"omitempty,max=100" example:"Captain"`
	Department  *string `json:"department" binding:"omitempty,max=200"`
	IsFeatured  *bool   `json:"isFeatured"`
	CustomTitle *string `json:"customTitle" binding:"omitempty,max=200"`
	CustomImage *string `json:"customImage" binding:"omitempty,max=2048"`
}

// IsApproval reports whether the request asks to activate the membership
func (r *UpdateMembershipRequest) IsApproval() bool {
	return r.Status != nil && *r.Status == string(models.MembershipActive)
}

// Patch extracts the editable fields
func (r *UpdateMembershipRequest) Patch() models.MembershipPatch {
	return models.MembershipPatch{
		Role:        r.Role,
		Department:  r.Department,
		IsFeatured:  r.IsFeatured,
		CustomTitle: r.CustomTitle,
		CustomImage: r.CustomImage,
	}
}

// EventRequest creates an event
type EventRequest struct {
	ClubID      int64               `json:"clubId" binding:"required,gt=0" example:"1"`
	Title       string              `json:"title" binding:"required,max=200" example:"Robot Wars"`
	Description string              `json:"description" example:"Annual robot tournament"`
	StartsAt    time.Time           `json:"startsAt" binding:"required" example:"2026-11-02T18:00:00Z"`
	Location    string              `json:"location" binding:"omitempty,max=255" example:"Hall B"`
	Capacity    *models.Capacity    `json:"capacity" swaggertype:"integer" example:"50"`
	Details     models.EventDetails `json:"details"`
}

// ToModel converts the request into an event; a missing capacity is unlimited
func (r *EventRequest) ToModel() *models.Event {
	event := &models.Event{
		ClubID:      r.ClubID,
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		Location:    r.Location,
		Capacity:    models.Unlimited(),
		Details:     r.Details,
	}
	if r.Capacity != nil {
		event.Capacity = *r.Capacity
	}
	return event
}

// UpdateEventRequest patches an event. Attendees only change through join and leave.
type UpdateEventRequest struct {
	Title       *string              `json:"title" binding:"omitempty,max=200"`
	Description *string              `json:"description"`
	StartsAt    *time.Time           `json:"startsAt"`
	Location    *string              `json:"location" binding:"omitempty,max=255"`
	Capacity    *models.Capacity     `json:"capacity" swaggertype:"integer"`
	Details     *models.EventDetails `json:"details"`
}

// Patch extracts the editable fields
func (r *UpdateEventRequest) Patch() models.EventPatch {
	return models.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Details:     r.Details,
	}
}

// AttendRequest joins or leaves an event as the caller
type AttendRequest struct {
	EventID int64 `json:"eventId" form:"eventId" binding:"required,gt=0" example:"7"`
}

// AttendResponse reports the attendance counter after a join or leave
type AttendResponse struct {
	EventID   int64  `json:"eventId" example:"7"`
	Attendees int    `json:"attendees" example:"12"`
	Capacity  int64  `json:"capacity" example:"50"`
	Status    string `json:"status" example:"joined"`
}

// HasJoinedResponse answers the attendance check
type HasJoinedResponse struct {
	EventID   int64 `json:"eventId"`
	UserID    int64 `json:"userId"`
	HasJoined bool  `json:"hasJoined"`
}

// CreateMessageRequest opens a support ticket
type CreateMessageRequest struct {
	ClubID  int64  `json:"clubId" binding:"required,gt=0" example:"1"`
	Subject string `json:"subject" binding:"required,max=255" example:"Membership fee"`
	Topic   string `json:"topic" binding:"omitempty,max=100" example:"Soru"`
	Content string `json:"content" binding:"required,max=5000" example:"Is there a membership fee?"`
}

// UpdateMessageRequest carries one or more admin actions on a ticket. They
// are applied in the order note, priority, response, status.
type UpdateMessageRequest struct {
	ID       int64   `json:"id" binding:"required,gt=0" example:"3"`
	Status   *string `json:"status" binding:"omitempty,oneof=sent read in_progress resolved closed replied" example:"in_progress"`
	Priority *string `json:"priority" binding:"omitempty,oneof=low medium high" example:"high"`
	Response *string `json:"response" binding:"omitempty,min=1,max=5000"`
	Note     *string `json:"note" binding:"omitempty,min=1,max=2000"`
}

// Empty reports whether the request asks for nothing
func (r *UpdateMessageRequest) Empty() bool {
	return r.Status == nil && r.Priority == nil && r.Response == nil && r.Note == nil
}
