package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

var _ repositories.MembershipRepository = (*MembershipRepository)(nil)

// MembershipRepository is the in-memory membership table
type MembershipRepository struct {
	s *Store
}

// Create rejects an application when the same identity already occupies the
// club, then inserts, under one lock
func (r *MembershipRepository) Create(_ context.Context, m *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m.StudentID = strings.TrimSpace(m.StudentID)
	m.Email = strings.TrimSpace(m.Email)
	for _, existing := range r.s.memberships {
		if existing.ClubID == m.ClubID && existing.Occupies() && models.IdentityMatches(existing, m) {
			return apperrors.ErrDuplicateMembership
		}
	}

	now := r.s.now()
	m.ID = r.s.nextID("memberships")
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.memberships[m.ID] = cloneMembership(m)
	return nil
}

func (r *MembershipRepository) GetByID(_ context.Context, id int64) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneMembership(m), nil
}

func (r *MembershipRepository) ListByClub(_ context.Context, clubID int64, filter repositories.MembershipFilter) ([]*models.Membership, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*models.Membership
	for _, m := range r.s.memberships {
		if m.ClubID != clubID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneMembership(m))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].IsFeatured != matched[j].IsFeatured {
			return matched[i].IsFeatured
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := pageWindow(len(matched), filter.Page, filter.PageSize)
	return append([]*models.Membership{}, matched[start:end]...), int64(len(matched)), nil
}

func (r *MembershipRepository) ListByIdentity(_ context.Context, userID int64, email string) ([]*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = models.NormalizeEmail(email)
	out := []*models.Membership{}
	for _, m := range r.s.memberships {
		byAccount := m.UserID != nil && *m.UserID == userID
		byLegacyEmail := m.UserID == nil && email != "" && models.NormalizeEmail(m.Email) == email
		if byAccount || byLegacyEmail {
			out = append(out, cloneMembership(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MembershipRepository) Activate(_ context.Context, id int64, role *string) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if m.Status == models.MembershipPending {
		m.Status = models.MembershipActive
		switch {
		case role != nil:
			m.Role = *role
		case m.Role == "":
			m.Role = models.DefaultMemberRole
		}
		m.UpdatedAt = r.s.now()
	}
	return cloneMembership(m), nil
}

func (r *MembershipRepository) Update(_ context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.memberships[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if !patch.Empty() {
		patch.Apply(m)
		m.UpdatedAt = r.s.now()
	}
	return cloneMembership(m), nil
}

func (r *MembershipRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.memberships[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.memberships, id)
	return nil
}
