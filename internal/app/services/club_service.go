package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/denokazs/thku-sub000/internal/app/auth"
	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/events"
	"github.com/denokazs/thku-sub000/internal/pkg/validation"
)

// ClubService defines the interface for club operations
type ClubService interface {
	ListClubs(ctx context.Context, category string) ([]*models.Club, error)
	GetClubByID(ctx context.Context, id int64) (*models.Club, error)
	GetClubBySlug(ctx context.Context, slug string) (*models.Club, error)
	CreateClub(ctx context.Context, principal *models.Principal, req *dto.ClubRequest) (*models.Club, error)
	UpdateClub(ctx context.Context, principal *models.Principal, id int64, req *dto.ClubRequest) (*models.Club, error)
	DeleteClub(ctx context.Context, principal *models.Principal, id int64) error
}

type clubServiceImpl struct {
	clubRepo  repositories.ClubRepository
	authz     *auth.AuthorizationService
	publisher publisher
	logger    zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(
	clubRepo repositories.ClubRepository,
	authz *auth.AuthorizationService,
	eventPublisher events.Publisher,
	logger zerolog.Logger,
) ClubService {
	return &clubServiceImpl{
		clubRepo:  clubRepo,
		authz:     authz,
		publisher: publisher{Publisher: eventPublisher, logger: logger},
		logger:    logger,
	}
}

// ListClubs lists clubs, optionally by category
func (s *clubServiceImpl) ListClubs(ctx context.Context, category string) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("Failed to list clubs")
		return nil, err
	}
	return clubs, nil
}

// GetClubByID retrieves a club by id
func (s *clubServiceImpl) GetClubByID(ctx context.Context, id int64) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, "Club")
	}
	return club, nil
}

// GetClubBySlug retrieves a club by its slug
func (s *clubServiceImpl) GetClubBySlug(ctx context.Context, slug string) (*models.Club, error) {
	club, err := s.clubRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, translateError(err, "Club")
	}
	return club, nil
}

func validateClub(req *dto.ClubRequest) error {
	if !validation.IsValidSlug(req.Slug) {
		return apperrors.NewValidationError("slug", "Slug must be lowercase letters and digits separated by single hyphens")
	}
	if !validation.IsValidName(req.Name) {
		return apperrors.NewValidationError("name", "Club name is required")
	}
	return nil
}

// CreateClub creates a club. Super admins only.
func (s *clubServiceImpl) CreateClub(ctx context.Context, principal *models.Principal, req *dto.ClubRequest) (*models.Club, error) {
	s.logger.Debug().Str("slug", req.Slug).Msg("Creating club")

	if err := s.authz.AuthorizeAction(principal, auth.ActionManageClubs); err != nil {
		return nil, err
	}
	if err := validateClub(req); err != nil {
		return nil, err
	}

	club := req.ToModel()
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Str("slug", req.Slug).Msg("Failed to create club")
		}
		return nil, err
	}

	s.publisher.emit(ctx, events.New(events.ClubCreated, club.ID, club.ID, principal.ID, club))
	return club, nil
}

// UpdateClub replaces a club's editable fields. Super admins only.
func (s *clubServiceImpl) UpdateClub(ctx context.Context, principal *models.Principal, id int64, req *dto.ClubRequest) (*models.Club, error) {
	s.logger.Debug().Int64("clubID", id).Msg("Updating club")

	if err := s.authz.AuthorizeAction(principal, auth.ActionManageClubs); err != nil {
		return nil, err
	}
	if err := validateClub(req); err != nil {
		return nil, err
	}

	club := req.ToModel()
	club.ID = id
	if err := s.clubRepo.Update(ctx, club); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("clubID", id).Msg("Failed to update club")
		}
		return nil, translateError(err, "Club")
	}

	updated, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, "Club")
	}

	s.publisher.emit(ctx, events.New(events.ClubUpdated, updated.ID, updated.ID, principal.ID, updated))
	return updated, nil
}

// DeleteClub removes a club and everything it owns. Super admins only.
func (s *clubServiceImpl) DeleteClub(ctx context.Context, principal *models.Principal, id int64) error {
	s.logger.Debug().Int64("clubID", id).Msg("Deleting club")

	if err := s.authz.AuthorizeAction(principal, auth.ActionManageClubs); err != nil {
		return err
	}

	if err := s.clubRepo.Delete(ctx, id); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("clubID", id).Msg("Failed to delete club")
		}
		return translateError(err, "Club")
	}

	s.publisher.emit(ctx, events.New(events.ClubDeleted, id, id, principal.ID, nil))
	return nil
}
