package models

// Role is the portal-wide role carried by an authenticated principal
type Role string

const (
	RoleUser       Role = "user"
	RoleClubAdmin  Role = "club_admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleClubAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Principal is the identity supplied by the external auth service.
// ClubID is only meaningful for club admins.
type Principal struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	ClubID *int64 `json:"clubId,omitempty"`
}

// IsAdminOf reports whether the principal administers clubID
func (p *Principal) IsAdminOf(clubID int64) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleClubAdmin:
		return p.ClubID != nil && *p.ClubID == clubID
	}
	return false
}
