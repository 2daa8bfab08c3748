package models

import (
	"strconv"
	"strings"
	"time"
)

// DefaultMemberRole is the label given to members without a more specific one
const DefaultMemberRole = "Member"

// MembershipStatus is the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipPending MembershipStatus = "pending"
	MembershipActive  MembershipStatus = "active"
)

// Valid reports whether s is a known status
func (s MembershipStatus) Valid() bool {
	return s == MembershipPending || s == MembershipActive
}

// Membership links a person to a club. Person fields are captured at
// application time and are not references to a user account.
type Membership struct {
	ID          int64            `json:"id" db:"id"`
	ClubID      int64            `json:"clubId" db:"club_id"`
	UserID      *int64           `json:"userId,omitempty" db:"user_id"`
	Name        string           `json:"name" db:"name"`
	Department  string           `json:"department" db:"department"`
	StudentID   string           `json:"studentId" db:"student_id"`
	Email       string           `json:"email" db:"email"`
	Phone       string           `json:"phone" db:"phone"`
	Role        string           `json:"role" db:"role"`
	Status      MembershipStatus `json:"status" db:"status"`
	JoinedAt    string           `json:"joinedAt" db:"joined_at"` // year, e.g. "2026"
	IsFeatured  bool             `json:"isFeatured" db:"is_featured"`
	CustomTitle *string          `json:"customTitle,omitempty" db:"custom_title"`
	CustomImage *string          `json:"customImage,omitempty" db:"custom_image"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// MembershipPatch holds the admin-editable fields. Status and club only
// change through approve and remove.
type MembershipPatch struct {
	Role        *string
	Department  *string
	IsFeatured  *bool
	CustomTitle *string
	CustomImage *string
}

// Empty reports whether the patch changes nothing
func (p MembershipPatch) Empty() bool {
	return p.Role == nil && p.Department == nil && p.IsFeatured == nil &&
		p.CustomTitle == nil && p.CustomImage == nil
}

// Apply copies the patch onto m
func (p MembershipPatch) Apply(m *Membership) {
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Department != nil {
		m.Department = *p.Department
	}
	if p.IsFeatured != nil {
		m.IsFeatured = *p.IsFeatured
	}
	if p.CustomTitle != nil {
		m.CustomTitle = p.CustomTitle
	}
	if p.CustomImage != nil {
		m.CustomImage = p.CustomImage
	}
}

// Occupies reports whether m blocks another application for the same identity
func (m *Membership) Occupies() bool {
	return m.Status == MembershipPending || m.Status == MembershipActive
}

// NormalizeEmail lowercases and trims an address for identity comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdentityMatches reports whether a and b describe the same person. A stable
// account id wins when both sides carry one; otherwise the legacy studentId or
// email fallback applies. Empty values never match.
func IdentityMatches(a, b *Membership) bool {
	if a.UserID != nil && b.UserID != nil {
		if *a.UserID == *b.UserID {
			return true
		}
	}
	return legacyIdentityMatches(a, b)
}

func legacyIdentityMatches(a, b *Membership) bool {
	if sa, sb := strings.TrimSpace(a.StudentID), strings.TrimSpace(b.StudentID); sa != "" && sa == sb {
		return true
	}
	if ea, eb := NormalizeEmail(a.Email), NormalizeEmail(b.Email); ea != "" && ea == eb {
		return true
	}
	return false
}

// JoinYear renders t as the year string stored in JoinedAt
func JoinYear(t time.Time) string {
	return strconv.Itoa(t.Year())
}
