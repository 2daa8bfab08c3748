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
)

// EventService defines the interface for event and attendance operations
type EventService interface {
	CreateEvent(ctx context.Context, principal *models.Principal, req *dto.EventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListClubEvents(ctx context.Context, clubID int64, upcomingOnly bool) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, principal *models.Principal, id int64, patch models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, principal *models.Principal, id int64) error
	JoinEvent(ctx context.Context, principal *models.Principal, eventID int64) (*models.Event, error)
	LeaveEvent(ctx context.Context, principal *models.Principal, eventID int64) (*models.Event, error)
	HasJoined(ctx context.Context, eventID, userID int64) (bool, error)
	ListAttendees(ctx context.Context, principal *models.Principal, eventID int64) ([]*models.Attendance, error)
}

type eventServiceImpl struct {
	eventRepo repositories.EventRepository
	clubRepo  repositories.ClubRepository
	authz     *auth.AuthorizationService
	publisher publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repositories.EventRepository,
	clubRepo repositories.ClubRepository,
	authz *auth.AuthorizationService,
	eventPublisher events.Publisher,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		clubRepo:  clubRepo,
		authz:     authz,
		publisher: publisher{Publisher: eventPublisher, logger: logger},
		logger:    logger,
		now:       time.Now,
	}
}

type attendancePayload struct {
	UserID    int64 `json:"userId"`
	Attendees int   `json:"attendees"`
}

func (s *eventServiceImpl) loadEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("eventID", id).Msg("Failed to load event")
		}
		return nil, translateError(err, "Event")
	}
	return event, nil
}

// loadForAdmin runs the role precheck before loading, then checks club scope
func (s *eventServiceImpl) loadForAdmin(ctx context.Context, principal *models.Principal, id int64, action auth.Action) (*models.Event, error) {
	if err := s.authz.AuthorizeAction(principal, action); err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(principal, event.ClubID, action); err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent schedules an event for a club
func (s *eventServiceImpl) CreateEvent(ctx context.Context, principal *models.Principal, req *dto.EventRequest) (*models.Event, error) {
	s.logger.Debug().Int64("clubID", req.ClubID).Str("title", req.Title).Msg("Creating event")

	if err := s.authz.Authorize(principal, req.ClubID, auth.ActionManageEvents); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if req.StartsAt.IsZero() {
		return nil, apperrors.NewValidationError("startsAt", "Start time is required")
	}
	if _, err := s.clubRepo.GetByID(ctx, req.ClubID); err != nil {
		return nil, translateError(err, "Club")
	}

	event := req.ToModel()
	event.Title = strings.TrimSpace(event.Title)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("clubID", req.ClubID).Msg("Failed to create event")
		return nil, err
	}

	s.publisher.emit(ctx, events.New(events.EventCreated, event.ClubID, event.ID, principal.ID, nil))
	return event, nil
}

// GetEvent retrieves an event
func (s *eventServiceImpl) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.loadEvent(ctx, id)
}

// ListClubEvents lists a club's events, optionally only those not yet started
func (s *eventServiceImpl) ListClubEvents(ctx context.Context, clubID int64, upcomingOnly bool) ([]*models.Event, error) {
	var startsAfter *time.Time
	if upcomingOnly {
		now := s.now()
		startsAfter = &now
	}

	list, err := s.eventRepo.ListByClub(ctx, clubID, startsAfter)
	if err != nil {
		s.logger.Error().Err(err).Int64("clubID", clubID).Msg("Failed to list events")
		return nil, err
	}
	return list, nil
}

// UpdateEvent patches an event. The attendance counter and roster are never
// touched; lowering capacity below the current count keeps existing attendees.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, principal *models.Principal, id int64, patch models.EventPatch) (*models.Event, error) {
	s.logger.Debug().Int64("eventID", id).Msg("Updating event")

	if _, err := s.loadForAdmin(ctx, principal, id, auth.ActionManageEvents); err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.NewValidationError("title", "Title cannot be empty")
	}

	event, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("eventID", id).Msg("Failed to update event")
		}
		return nil, translateError(err, "Event")
	}

	if patch.Capacity != nil {
		if limit, limited := event.Capacity.Limit(); limited && event.Attendees > int(limit) {
			s.logger.Info().
				Int64("eventID", id).
				Int("attendees", event.Attendees).
				Str("capacity", event.Capacity.String()).
				Msg("Capacity lowered below current attendance; existing attendees kept")
		}
	}

	s.publisher.emit(ctx, events.New(events.EventUpdated, event.ClubID, event.ID, principal.ID, nil))
	return event, nil
}

// DeleteEvent removes an event and its roster
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, principal *models.Principal, id int64) error {
	s.logger.Debug().Int64("eventID", id).Msg("Deleting event")

	event, err := s.loadForAdmin(ctx, principal, id, auth.ActionManageEvents)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("eventID", id).Msg("Failed to delete event")
		}
		return translateError(err, "Event")
	}

	s.publisher.emit(ctx, events.New(events.EventDeleted, event.ClubID, event.ID, principal.ID, nil))
	return nil
}

// JoinEvent adds the caller to the event roster. Existence, duplicate and
// capacity checks happen atomically in the repository.
func (s *eventServiceImpl) JoinEvent(ctx context.Context, principal *models.Principal, eventID int64) (*models.Event, error) {
	if principal == nil {
		return nil, apperrors.NewForbiddenError("Authentication required to join events")
	}
	s.logger.Debug().Int64("eventID", eventID).Int64("userID", principal.ID).Msg("Joining event")

	existing, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(principal, existing.ClubID, auth.ActionJoinEvent); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Join(ctx, eventID, principal.ID)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to join event")
		}
		return nil, translateError(err, "Event")
	}

	s.publisher.emit(ctx, events.New(events.EventJoined, event.ClubID, event.ID, principal.ID,
		attendancePayload{UserID: principal.ID, Attendees: event.Attendees}))
	return event, nil
}

// LeaveEvent removes the caller from the event roster
func (s *eventServiceImpl) LeaveEvent(ctx context.Context, principal *models.Principal, eventID int64) (*models.Event, error) {
	if principal == nil {
		return nil, apperrors.NewForbiddenError("Authentication required to leave events")
	}
	s.logger.Debug().Int64("eventID", eventID).Int64("userID", principal.ID).Msg("Leaving event")

	existing, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(principal, existing.ClubID, auth.ActionLeaveEvent); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Leave(ctx, eventID, principal.ID)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to leave event")
		}
		return nil, translateError(err, "Attendance")
	}

	s.publisher.emit(ctx, events.New(events.EventLeft, event.ClubID, event.ID, principal.ID,
		attendancePayload{UserID: principal.ID, Attendees: event.Attendees}))
	return event, nil
}

// HasJoined reports whether userID attends eventID
func (s *eventServiceImpl) HasJoined(ctx context.Context, eventID, userID int64) (bool, error) {
	joined, err := s.eventRepo.HasJoined(ctx, eventID, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to check attendance")
		return false, err
	}
	return joined, nil
}

// ListAttendees returns the roster of an event
func (s *eventServiceImpl) ListAttendees(ctx context.Context, principal *models.Principal, eventID int64) ([]*models.Attendance, error) {
	if _, err := s.loadForAdmin(ctx, principal, eventID, auth.ActionListAttendees); err != nil {
		return nil, err
	}

	roster, err := s.eventRepo.ListAttendees(ctx, eventID)
	if err != nil {
		s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to list attendees")
		return nil, err
	}
	return roster, nil
}
