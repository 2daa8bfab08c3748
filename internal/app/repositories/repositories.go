package repositories

import (
	"context"
	"time"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/db"
)

// ClubRepository persists clubs
type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int64) (*models.Club, error)
	GetBySlug(ctx context.Context, slug string) (*models.Club, error)
	List(ctx context.Context, category string) ([]*models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id int64) error
}

// MembershipFilter narrows a club roster listing
type MembershipFilter struct {
	Status   *models.MembershipStatus
	Page     int
	PageSize int
}

// MembershipRepository persists memberships. Create performs the duplicate
// check and the insert as one atomic unit.
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id int64) (*models.Membership, error)
	ListByClub(ctx context.Context, clubID int64, filter MembershipFilter) ([]*models.Membership, int64, error)
	ListByIdentity(ctx context.Context, userID int64, email string) ([]*models.Membership, error)
	// Activate moves a pending membership to active. An active membership is
	// returned unchanged. A nil role keeps the stored label.
	Activate(ctx context.Context, id int64, role *string) (*models.Membership, error)
	Update(ctx context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error)
	Delete(ctx context.Context, id int64) error
}

// EventRepository persists events and their attendance roster. Join and Leave
// are the only writers of Event.Attendees.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ListByClub(ctx context.Context, clubID int64, startsAfter *time.Time) ([]*models.Event, error)
	Update(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	Join(ctx context.Context, eventID, userID int64) (*models.Event, error)
	Leave(ctx context.Context, eventID, userID int64) (*models.Event, error)
	HasJoined(ctx context.Context, eventID, userID int64) (bool, error)
	ListAttendees(ctx context.Context, eventID int64) ([]*models.Attendance, error)
}

// MessageFilter narrows a club inbox listing
type MessageFilter struct {
	Status   *models.MessageStatus
	Page     int
	PageSize int
}

// MessageRepository persists support tickets
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListByClub(ctx context.Context, clubID int64, filter MessageFilter) ([]*models.Message, int64, error)
	ListBySender(ctx context.Context, userID int64) ([]*models.Message, error)
	// UpdateStatus sets status to `to`. When onlyFrom is non-empty the write
	// happens only if the current status is one of them. The current message
	// is returned either way.
	UpdateStatus(ctx context.Context, id int64, to models.MessageStatus, onlyFrom ...models.MessageStatus) (*models.Message, error)
	// Respond stores the answer, answeredAt and status=resolved at once, or
	// fails with ErrAlreadyResponded.
	Respond(ctx context.Context, id int64, response string, answeredAt time.Time) (*models.Message, error)
	AddNote(ctx context.Context, id int64, note models.InternalNote) (*models.Message, error)
	SetPriority(ctx context.Context, id int64, priority models.MessagePriority) (*models.Message, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	ClubRepository       ClubRepository
	MembershipRepository MembershipRepository
	EventRepository      EventRepository
	MessageRepository    MessageRepository
}

// NewRepositories initializes the PostgreSQL-backed repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		ClubRepository:       NewClubRepository(database),
		MembershipRepository: NewMembershipRepository(database),
		EventRepository:      NewEventRepository(database),
		MessageRepository:    NewMessageRepository(database),
	}
}

// pageBounds converts a 1-based page into LIMIT/OFFSET
func pageBounds(page, pageSize int) (limit, offset uint64) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	return uint64(pageSize), uint64((page - 1) * pageSize)
}
