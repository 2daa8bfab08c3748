package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/denokazs/thku-sub000/internal/app/auth"
	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/events"
	"github.com/denokazs/thku-sub000/internal/pkg/helpers"
	"github.com/denokazs/thku-sub000/internal/pkg/validation"
)

// MembershipService defines the interface for membership operations
type MembershipService interface {
	SubmitApplication(ctx context.Context, principal *models.Principal, req *dto.MemberInfoRequest) (*models.Membership, error)
	AddDirect(ctx context.Context, principal *models.Principal, req *dto.MemberInfoRequest) (*models.Membership, error)
	Approve(ctx context.Context, principal *models.Principal, id int64, role *string) (*models.Membership, error)
	Update(ctx context.Context, principal *models.Principal, id int64, patch models.MembershipPatch) (*models.Membership, error)
	Remove(ctx context.Context, principal *models.Principal, id int64) error
	ListByClub(ctx context.Context, principal *models.Principal, clubID int64, status *models.MembershipStatus, page, pageSize int) ([]*models.Membership, dto.PaginationInfo, error)
	ListMine(ctx context.Context, principal *models.Principal) ([]*models.Membership, error)
}

type membershipServiceImpl struct {
	membershipRepo repositories.MembershipRepository
	clubRepo       repositories.ClubRepository
	authz          *auth.AuthorizationService
	publisher      publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	membershipRepo repositories.MembershipRepository,
	clubRepo repositories.ClubRepository,
	authz *auth.AuthorizationService,
	eventPublisher events.Publisher,
	logger zerolog.Logger,
) MembershipService {
	return &membershipServiceImpl{
		membershipRepo: membershipRepo,
		clubRepo:       clubRepo,
		authz:          authz,
		publisher:      publisher{Publisher: eventPublisher, logger: logger},
		logger:         logger,
		now:            time.Now,
	}
}

// validateMemberInfo enforces the fields an identity needs: a name and at
// least one of studentId and email
func validateMemberInfo(req *dto.MemberInfoRequest) error {
	if !validation.IsValidName(req.Name) {
		return apperrors.NewValidationError("name", "Name is required")
	}
	studentID := strings.TrimSpace(req.StudentID)
	email := strings.TrimSpace(req.Email)
	if studentID == "" && email == "" {
		return apperrors.NewValidationError("studentId", "Either studentId or email is required")
	}
	if email != "" && !validation.IsValidEmail(email) {
		return apperrors.NewValidationError("email", "Email format is invalid")
	}
	return nil
}

func (s *membershipServiceImpl) ensureClubExists(ctx context.Context, clubID int64) error {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("clubID", clubID).Msg("Failed to load club")
		}
		return translateError(err, "Club")
	}
	return nil
}

func (s *membershipServiceImpl) create(ctx context.Context, m *models.Membership) error {
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("clubID", m.ClubID).Msg("Failed to create membership")
		}
		return translateError(err, "Membership")
	}
	return nil
}

// SubmitApplication records a pending membership for the caller
func (s *membershipServiceImpl) SubmitApplication(ctx context.Context, principal *models.Principal, req *dto.MemberInfoRequest) (*models.Membership, error) {
	s.logger.Debug().Int64("clubID", req.ClubID).Msg("Submitting membership application")

	if err := s.authz.Authorize(principal, req.ClubID, auth.ActionSubmitApplication); err != nil {
		return nil, err
	}
	if err := validateMemberInfo(req); err != nil {
		return nil, err
	}
	if err := s.ensureClubExists(ctx, req.ClubID); err != nil {
		return nil, err
	}

	userID := principal.ID
	m := &models.Membership{
		ClubID:     req.ClubID,
		UserID:     &userID,
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		StudentID:  strings.TrimSpace(req.StudentID),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Role:       models.DefaultMemberRole,
		Status:     models.MembershipPending,
		JoinedAt:   models.JoinYear(s.now()),
	}
	if err := s.create(ctx, m); err != nil {
		return nil, err
	}

	s.publisher.emit(ctx, events.New(events.MembershipSubmitted, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// AddDirect creates an already-active membership on an admin's behalf
func (s *membershipServiceImpl) AddDirect(ctx context.Context, principal *models.Principal, req *dto.MemberInfoRequest) (*models.Membership, error) {
	s.logger.Debug().Int64("clubID", req.ClubID).Msg("Adding member directly")

	if err := s.authz.Authorize(principal, req.ClubID, auth.ActionAddMember); err != nil {
		return nil, err
	}
	if err := validateMemberInfo(req); err != nil {
		return nil, err
	}
	if err := s.ensureClubExists(ctx, req.ClubID); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.DefaultMemberRole
	}
	m := &models.Membership{
		ClubID:     req.ClubID,
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		StudentID:  strings.TrimSpace(req.StudentID),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Role:       role,
		Status:     models.MembershipActive,
		JoinedAt:   models.JoinYear(s.now()),
	}
	if err := s.create(ctx, m); err != nil {
		return nil, err
	}

	s.publisher.emit(ctx, events.New(events.MembershipAdded, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// loadForAdmin runs the role precheck, loads the membership and then checks
// club scope, so a caller without admin rights never learns whether id exists
func (s *membershipServiceImpl) loadForAdmin(ctx context.Context, principal *models.Principal, id int64, action auth.Action) (*models.Membership, error) {
	if err := s.authz.AuthorizeAction(principal, action); err != nil {
		return nil, err
	}

	m, err := s.membershipRepo.GetByID(ctx, id)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("membershipID", id).Msg("Failed to load membership")
		}
		return nil, translateError(err, "Membership")
	}

	if err := s.authz.Authorize(principal, m.ClubID, action); err != nil {
		return nil, err
	}
	return m, nil
}

// Approve activates a pending membership. Approving an active one succeeds
// without changes.
func (s *membershipServiceImpl) Approve(ctx context.Context, principal *models.Principal, id int64, role *string) (*models.Membership, error) {
	s.logger.Debug().Int64("membershipID", id).Msg("Approving membership")

	existing, err := s.loadForAdmin(ctx, principal, id, auth.ActionApproveMembership)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.MembershipActive {
		return existing, nil
	}

	if role != nil {
		trimmed := strings.TrimSpace(*role)
		role = &trimmed
		if trimmed == "" {
			role = nil
		}
	}

	m, err := s.membershipRepo.Activate(ctx, id, role)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("membershipID", id).Msg("Failed to approve membership")
		}
		return nil, translateError(err, "Membership")
	}

	s.publisher.emit(ctx, events.New(events.MembershipApproved, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// Update patches the showcase and label fields of a membership
func (s *membershipServiceImpl) Update(ctx context.Context, principal *models.Principal, id int64, patch models.MembershipPatch) (*models.Membership, error) {
	s.logger.Debug().Int64("membershipID", id).Msg("Updating membership")

	if _, err := s.loadForAdmin(ctx, principal, id, auth.ActionUpdateMembership); err != nil {
		return nil, err
	}

	m, err := s.membershipRepo.Update(ctx, id, patch)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("membershipID", id).Msg("Failed to update membership")
		}
		return nil, translateError(err, "Membership")
	}

	if !patch.Empty() {
		s.publisher.emit(ctx, events.New(events.MembershipUpdated, m.ClubID, m.ID, principal.ID, nil))
	}
	return m, nil
}

// Remove hard-deletes a membership
func (s *membershipServiceImpl) Remove(ctx context.Context, principal *models.Principal, id int64) error {
	s.logger.Debug().Int64("membershipID", id).Msg("Removing membership")

	m, err := s.loadForAdmin(ctx, principal, id, auth.ActionRemoveMembership)
	if err != nil {
		return err
	}

	if err := s.membershipRepo.Delete(ctx, id); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("membershipID", id).Msg("Failed to remove membership")
		}
		return translateError(err, "Membership")
	}

	s.publisher.emit(ctx, events.New(events.MembershipRemoved, m.ClubID, m.ID, principal.ID, nil))
	return nil
}

// ListByClub lists a club roster page
func (s *membershipServiceImpl) ListByClub(ctx context.Context, principal *models.Principal, clubID int64, status *models.MembershipStatus, page, pageSize int) ([]*models.Membership, dto.PaginationInfo, error) {
	s.logger.Debug().Int64("clubID", clubID).Msg("Listing club memberships")

	if err := s.authz.Authorize(principal, clubID, auth.ActionListMembers); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	if status != nil && !status.Valid() {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("status", "Status must be pending or active")
	}

	page, pageSize = helpers.NormalizePage(page, pageSize)
	memberships, total, err := s.membershipRepo.ListByClub(ctx, clubID, repositories.MembershipFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("clubID", clubID).Msg("Failed to list memberships")
		return nil, dto.PaginationInfo{}, err
	}
	return memberships, helpers.NewPaginationInfo(total, page, pageSize), nil
}

// ListMine lists the caller's own memberships across clubs
func (s *membershipServiceImpl) ListMine(ctx context.Context, principal *models.Principal) ([]*models.Membership, error) {
	if err := s.authz.AuthorizeAction(principal, auth.ActionReadOwnMemberships); err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListByIdentity(ctx, principal.ID, principal.Email)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", principal.ID).Msg("Failed to list own memberships")
		return nil, err
	}
	return memberships, nil
}
