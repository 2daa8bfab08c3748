package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

var _ repositories.ClubRepository = (*ClubRepository)(nil)

// ClubRepository is the in-memory club table
type ClubRepository struct {
	s *Store
}

func (r *ClubRepository) slugTaken(slug string, exceptID int64) bool {
	for id, c := range r.s.clubs {
		if id != exceptID && c.Slug == slug {
			return true
		}
	}
	return false
}

func (r *ClubRepository) Create(_ context.Context, club *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(club.Slug, 0) {
		return apperrors.NewConflictError(fmt.Sprintf("a club with slug %q already exists", club.Slug))
	}
	now := r.s.now()
	club.ID = r.s.nextID("clubs")
	club.CreatedAt, club.UpdatedAt = now, now
	r.s.clubs[club.ID] = cloneClub(club)
	return nil
}

func (r *ClubRepository) GetByID(_ context.Context, id int64) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clubs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneClub(c), nil
}

func (r *ClubRepository) GetBySlug(_ context.Context, slug string) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.clubs {
		if c.Slug == slug {
			return cloneClub(c), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ClubRepository) List(_ context.Context, category string) ([]*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clubs := []*models.Club{}
	for _, c := range r.s.clubs {
		if category == "" || c.Category == category {
			clubs = append(clubs, cloneClub(c))
		}
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs, nil
}

func (r *ClubRepository) Update(_ context.Context, club *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.clubs[club.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.slugTaken(club.Slug, club.ID) {
		return apperrors.NewConflictError(fmt.Sprintf("a club with slug %q already exists", club.Slug))
	}
	club.CreatedAt = existing.CreatedAt
	club.UpdatedAt = r.s.now()
	r.s.clubs[club.ID] = cloneClub(club)
	return nil
}

// Delete removes the club together with everything it owns
func (r *ClubRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clubs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.clubs, id)
	for mid, m := range r.s.memberships {
		if m.ClubID == id {
			delete(r.s.memberships, mid)
		}
	}
	for eid, e := range r.s.events {
		if e.ClubID == id {
			delete(r.s.events, eid)
			delete(r.s.attendance, eid)
		}
	}
	for mid, m := range r.s.messages {
		if m.ClubID == id {
			delete(r.s.messages, mid)
		}
	}
	return nil
}
