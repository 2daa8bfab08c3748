package models

import "time"

// Club is the scoping root for memberships, events and messages
type Club struct {
	ID        int64      `json:"id" db:"id" example:"1"`
	Slug      string     `json:"slug" db:"slug" example:"robotics"`
	Name      string     `json:"name" db:"name" example:"Robotics Club"`
	Category  string     `json:"category" db:"category" example:"technology"`
	Roles     []ClubRole `json:"roles" db:"roles"` // label definitions, stored as jsonb
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// ClubRole is a display label a club may hand out to members. It has no behavior.
type ClubRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Priority int    `json:"priority"`
}
