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
)

// MessageService defines the interface for support ticket operations
type MessageService interface {
	CreateMessage(ctx context.Context, principal *models.Principal, req *dto.CreateMessageRequest) (*models.Message, error)
	// OpenMessage returns a ticket to an admin and marks it read
	OpenMessage(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error)
	ListClubMessages(ctx context.Context, principal *models.Principal, clubID int64, status *models.MessageStatus, page, pageSize int) ([]*models.Message, dto.PaginationInfo, error)
	ListMyMessages(ctx context.Context, principal *models.Principal) ([]*models.Message, error)
	MarkRead(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error)
	// SetStatusUnchecked overrides the status regardless of the lifecycle
	SetStatusUnchecked(ctx context.Context, principal *models.Principal, id int64, status models.MessageStatus) (*models.Message, error)
	Close(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error)
	Respond(ctx context.Context, principal *models.Principal, id int64, response string) (*models.Message, error)
	AddNote(ctx context.Context, principal *models.Principal, id int64, note string) (*models.Message, error)
	SetPriority(ctx context.Context, principal *models.Principal, id int64, priority models.MessagePriority) (*models.Message, error)
}

type messageServiceImpl struct {
	messageRepo repositories.MessageRepository
	clubRepo    repositories.ClubRepository
	authz       *auth.AuthorizationService
	publisher   publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repositories.MessageRepository,
	clubRepo repositories.ClubRepository,
	authz *auth.AuthorizationService,
	eventPublisher events.Publisher,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		clubRepo:    clubRepo,
		authz:       authz,
		publisher:   publisher{Publisher: eventPublisher, logger: logger},
		logger:      logger,
		now:         time.Now,
	}
}

type statusPayload struct {
	From models.MessageStatus `json:"from"`
	To   models.MessageStatus `json:"to"`
}

// CreateMessage opens a ticket from the caller to a club
func (s *messageServiceImpl) CreateMessage(ctx context.Context, principal *models.Principal, req *dto.CreateMessageRequest) (*models.Message, error) {
	s.logger.Debug().Int64("clubID", req.ClubID).Msg("Creating message")

	if err := s.authz.Authorize(principal, req.ClubID, auth.ActionCreateMessage); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, apperrors.NewValidationError("subject", "Subject is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("content", "Content is required")
	}
	if _, err := s.clubRepo.GetByID(ctx, req.ClubID); err != nil {
		return nil, translateError(err, "Club")
	}

	m := &models.Message{
		ClubID:        req.ClubID,
		UserID:        principal.ID,
		SenderName:    principal.Name,
		Subject:       strings.TrimSpace(req.Subject),
		Topic:         strings.TrimSpace(req.Topic),
		Content:       strings.TrimSpace(req.Content),
		Priority:      models.PriorityMedium,
		Status:        models.MessageSent,
		InternalNotes: []models.InternalNote{},
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		s.logger.Error().Err(err).Int64("clubID", req.ClubID).Msg("Failed to create message")
		return nil, err
	}

	s.publisher.emit(ctx, events.New(events.MessageCreated, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// loadForAdmin runs the role precheck before loading, then checks club scope
func (s *messageServiceImpl) loadForAdmin(ctx context.Context, principal *models.Principal, id int64, action auth.Action) (*models.Message, error) {
	if err := s.authz.AuthorizeAction(principal, action); err != nil {
		return nil, err
	}

	m, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("messageID", id).Msg("Failed to load message")
		}
		return nil, translateError(err, "Message")
	}

	if err := s.authz.Authorize(principal, m.ClubID, action); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *messageServiceImpl) failed(err error, id int64, what string) error {
	if !isDomainError(err) {
		s.logger.Error().Err(err).Int64("messageID", id).Msg(what)
	}
	return translateError(err, "Message")
}

// OpenMessage returns the ticket and, when it was unread, marks it read
func (s *messageServiceImpl) OpenMessage(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error) {
	return s.MarkRead(ctx, principal, id)
}

// MarkRead moves sent to read and leaves every other status alone
func (s *messageServiceImpl) MarkRead(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error) {
	existing, err := s.loadForAdmin(ctx, principal, id, auth.ActionReadMessages)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.MessageSent {
		return existing, nil
	}

	m, err := s.messageRepo.UpdateStatus(ctx, id, models.MessageRead, models.MessageSent)
	if err != nil {
		return nil, s.failed(err, id, "Failed to mark message read")
	}

	if m.Status == models.MessageRead {
		s.publisher.emit(ctx, events.New(events.MessageRead, m.ClubID, m.ID, principal.ID, nil))
	}
	return m, nil
}

// SetStatusUnchecked is the admin override. Moves against the lifecycle are
// allowed and logged.
func (s *messageServiceImpl) SetStatusUnchecked(ctx context.Context, principal *models.Principal, id int64, status models.MessageStatus) (*models.Message, error) {
	s.logger.Debug().Int64("messageID", id).Str("status", string(status)).Msg("Setting message status")

	existing, err := s.loadForAdmin(ctx, principal, id, auth.ActionSetMessageStatus)
	if err != nil {
		return nil, err
	}
	if _, err := models.ParseMessageStatus(string(status)); err != nil {
		return nil, apperrors.NewValidationError("status", err.Error())
	}

	if status.IsBackwardFrom(existing.Status) {
		s.logger.Warn().
			Int64("messageID", id).
			Int64("adminID", principal.ID).
			Str("from", string(existing.Status)).
			Str("to", string(status)).
			Msg("Message status moved backwards by admin override")
	}

	m, err := s.messageRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.failed(err, id, "Failed to set message status")
	}

	s.publisher.emit(ctx, events.New(events.MessageStatusChanged, m.ClubID, m.ID, principal.ID,
		statusPayload{From: existing.Status, To: m.Status}))
	return m, nil
}

// Close closes any ticket that is not resolved
func (s *messageServiceImpl) Close(ctx context.Context, principal *models.Principal, id int64) (*models.Message, error) {
	existing, err := s.loadForAdmin(ctx, principal, id, auth.ActionSetMessageStatus)
	if err != nil {
		return nil, err
	}

	m, err := s.messageRepo.UpdateStatus(ctx, id, models.MessageClosed,
		models.MessageSent, models.MessageRead, models.MessageInProgress)
	if err != nil {
		return nil, s.failed(err, id, "Failed to close message")
	}

	if m.Status != existing.Status {
		s.publisher.emit(ctx, events.New(events.MessageStatusChanged, m.ClubID, m.ID, principal.ID,
			statusPayload{From: existing.Status, To: m.Status}))
	}
	return m, nil
}

// Respond answers a ticket once; the answer, its timestamp and the resolved
// status are written together
func (s *messageServiceImpl) Respond(ctx context.Context, principal *models.Principal, id int64, response string) (*models.Message, error) {
	s.logger.Debug().Int64("messageID", id).Msg("Responding to message")

	if _, err := s.loadForAdmin(ctx, principal, id, auth.ActionRespondMessage); err != nil {
		return nil, err
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperrors.NewValidationError("response", "Response cannot be empty")
	}

	m, err := s.messageRepo.Respond(ctx, id, response, s.now().UTC())
	if err != nil {
		return nil, s.failed(err, id, "Failed to respond to message")
	}

	s.publisher.emit(ctx, events.New(events.MessageResponded, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// AddNote appends an admin-only note signed with the caller's name
func (s *messageServiceImpl) AddNote(ctx context.Context, principal *models.Principal, id int64, note string) (*models.Message, error) {
	if _, err := s.loadForAdmin(ctx, principal, id, auth.ActionAddNote); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("note", "Note cannot be empty")
	}

	m, err := s.messageRepo.AddNote(ctx, id, models.InternalNote{
		Note:  note,
		Admin: principal.Name,
		Date:  s.now().UTC(),
	})
	if err != nil {
		return nil, s.failed(err, id, "Failed to add note")
	}

	s.publisher.emit(ctx, events.New(events.MessageNoteAdded, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// SetPriority changes the ticket priority
func (s *messageServiceImpl) SetPriority(ctx context.Context, principal *models.Principal, id int64, priority models.MessagePriority) (*models.Message, error) {
	if _, err := s.loadForAdmin(ctx, principal, id, auth.ActionSetPriority); err != nil {
		return nil, err
	}
	if _, err := models.ParseMessagePriority(string(priority)); err != nil {
		return nil, apperrors.NewValidationError("priority", err.Error())
	}

	m, err := s.messageRepo.SetPriority(ctx, id, priority)
	if err != nil {
		return nil, s.failed(err, id, "Failed to set priority")
	}

	s.publisher.emit(ctx, events.New(events.MessagePrioritySet, m.ClubID, m.ID, principal.ID, nil))
	return m, nil
}

// ListClubMessages lists a club inbox page
func (s *messageServiceImpl) ListClubMessages(ctx context.Context, principal *models.Principal, clubID int64, status *models.MessageStatus, page, pageSize int) ([]*models.Message, dto.PaginationInfo, error) {
	if err := s.authz.Authorize(principal, clubID, auth.ActionReadMessages); err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	page, pageSize = helpers.NormalizePage(page, pageSize)
	list, total, err := s.messageRepo.ListByClub(ctx, clubID, repositories.MessageFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("clubID", clubID).Msg("Failed to list messages")
		return nil, dto.PaginationInfo{}, err
	}
	return list, helpers.NewPaginationInfo(total, page, pageSize), nil
}

// ListMyMessages lists the tickets the caller sent
func (s *messageServiceImpl) ListMyMessages(ctx context.Context, principal *models.Principal) ([]*models.Message, error) {
	if err := s.authz.AuthorizeAction(principal, auth.ActionReadOwnMessages); err != nil {
		return nil, err
	}

	list, err := s.messageRepo.ListBySender(ctx, principal.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", principal.ID).Msg("Failed to list own messages")
		return nil, err
	}
	return list, nil
}
