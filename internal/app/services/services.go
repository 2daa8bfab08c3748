// Package services holds the membership, event, message and club business
// logic. Every operation authorizes the principal before touching state.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/denokazs/thku-sub000/internal/app/auth"
	"github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/events"
)

// Services bundles the application services
type Services struct {
	ClubService       ClubService
	MembershipService MembershipService
	EventService      EventService
	MessageService    MessageService
}

// NewServices wires every service to the same repositories, guard and publisher
func NewServices(repos *repositories.Repositories, authz *auth.AuthorizationService, publisher events.Publisher, logger zerolog.Logger) *Services {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Services{
		ClubService:       NewClubService(repos.ClubRepository, authz, publisher, logger.With().Str("service", "club").Logger()),
		MembershipService: NewMembershipService(repos.MembershipRepository, repos.ClubRepository, authz, publisher, logger.With().Str("service", "membership").Logger()),
		EventService:      NewEventService(repos.EventRepository, repos.ClubRepository, authz, publisher, logger.With().Str("service", "event").Logger()),
		MessageService:    NewMessageService(repos.MessageRepository, repos.ClubRepository, authz, publisher, logger.With().Str("service", "message").Logger()),
	}
}

// User-facing messages for the lifecycle conflicts
const (
	msgDuplicateMembership = "You already have a pending or active membership in this club"
	msgAlreadyJoined       = "You have already joined this event"
	msgEventFull           = "This event is full"
	msgAlreadyResponded    = "This message has already been answered"
)

// translateError attaches a user-facing message to repository errors that
// carry none. Infrastructure errors pass through unchanged.
func translateError(err error, resource string) error {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return err
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found", resource))
	case errors.Is(err, apperrors.ErrDuplicateMembership):
		return apperrors.NewCustomError(err, msgDuplicateMembership)
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		return apperrors.NewCustomError(err, msgAlreadyJoined)
	case errors.Is(err, apperrors.ErrEventFull):
		return apperrors.NewCustomError(err, msgEventFull)
	case errors.Is(err, apperrors.ErrAlreadyResponded):
		return apperrors.NewCustomError(err, msgAlreadyResponded)
	}
	return err
}

// isDomainError reports whether err is an expected outcome rather than an
// infrastructure failure
func isDomainError(err error) bool {
	return apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrConflict,
		apperrors.ErrPermissionDenied,
		apperrors.ErrValidationFailed,
		apperrors.ErrDuplicateMembership,
		apperrors.ErrAlreadyJoined,
		apperrors.ErrEventFull,
		apperrors.ErrAlreadyResponded,
	)
}

// publisher publishes domain events without letting a broker outage fail the
// request that already committed
type publisher struct {
	events.Publisher
	logger zerolog.Logger
}

func (p publisher) emit(ctx context.Context, event events.Event) {
	// the request may be cancelled right after the commit
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		p.logger.Warn().Err(err).
			Str("eventType", string(event.Type)).
			Int64("entityID", event.EntityID).
			Msg("Failed to publish domain event")
	}
}
