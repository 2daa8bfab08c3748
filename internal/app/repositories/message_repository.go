package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/db"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

var messageColumns = []string{
	"id", "club_id", "user_id", "sender_name", "subject", "topic", "content",
	"priority", "status", "response", "answered_at", "internal_notes",
	"created_at", "updated_at",
}

// MessageRepositoryImpl handles support ticket database operations
type MessageRepositoryImpl struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepositoryImpl
func NewMessageRepository(database *db.PostgresDB) *MessageRepositoryImpl {
	return &MessageRepositoryImpl{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanMessage(row pgx.Row, extra ...interface{}) (*models.Message, error) {
	m := &models.Message{}
	var notes []byte
	dest := []interface{}{
		&m.ID, &m.ClubID, &m.UserID, &m.SenderName, &m.Subject, &m.Topic, &m.Content,
		&m.Priority, &m.Status, &m.Response, &m.AnsweredAt, &notes,
		&m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m.InternalNotes = []models.InternalNote{}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &m.InternalNotes); err != nil {
			return nil, fmt.Errorf("error decoding internal notes: %w", err)
		}
	}
	return m, nil
}

func returningMessage() string {
	return "RETURNING " + strings.Join(messageColumns, ", ")
}

// Create inserts a message
func (r *MessageRepositoryImpl) Create(ctx context.Context, m *models.Message) error {
	sql, args, err := r.sb.Insert("messages").
		Columns("club_id", "user_id", "sender_name", "subject", "topic", "content", "priority", "status").
		Values(m.ClubID, m.UserID, m.SenderName, m.Subject, m.Topic, m.Content, m.Priority, m.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	if m.InternalNotes == nil {
		m.InternalNotes = []models.InternalNote{}
	}
	return nil
}

// GetByID retrieves a message by id
func (r *MessageRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	sql, args, err := r.sb.Select(messageColumns...).From("messages").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get message query: %w", err)
	}

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting message: %w", err)
	}
	return m, nil
}

// ListByClub returns one page of a club inbox, newest first
func (r *MessageRepositoryImpl) ListByClub(ctx context.Context, clubID int64, filter MessageFilter) ([]*models.Message, int64, error) {
	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := r.sb.Select(append(messageColumns, "COUNT(*) OVER() AS total_count")...).
		From("messages").
		Where(squirrel.Eq{"club_id": clubID}).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset)
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var total int64
	messages := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, total, nil
}

// ListBySender returns the tickets a user sent, newest first
func (r *MessageRepositoryImpl) ListBySender(ctx context.Context, userID int64) ([]*models.Message, error) {
	sql, args, err := r.sb.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// updateReturning runs a single-row UPDATE ... RETURNING and maps no rows to nil
func (r *MessageRepositoryImpl) updateReturning(ctx context.Context, query squirrel.UpdateBuilder) (*models.Message, error) {
	sql, args, err := query.Suffix(returningMessage()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update message query: %w", err)
	}

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating message: %w", err)
	}
	return m, nil
}

// UpdateStatus sets the status, conditionally on the current one when
// onlyFrom is given
func (r *MessageRepositoryImpl) UpdateStatus(ctx context.Context, id int64, to models.MessageStatus, onlyFrom ...models.MessageStatus) (*models.Message, error) {
	where := squirrel.Eq{"id": id}
	if len(onlyFrom) > 0 {
		where["status"] = onlyFrom
	}

	m, err := r.updateReturning(ctx, r.sb.Update("messages").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(where))
	if err != nil {
		return nil, err
	}
	if m == nil {
		// condition not met, or the message does not exist
		return r.GetByID(ctx, id)
	}
	return m, nil
}

// Respond stores the first and only response in one conditional update
func (r *MessageRepositoryImpl) Respond(ctx context.Context, id int64, response string, answeredAt time.Time) (*models.Message, error) {
	m, err := r.updateReturning(ctx, r.sb.Update("messages").
		Set("response", response).
		Set("answered_at", answeredAt).
		Set("status", models.MessageResolved).
		Set("updated_at", answeredAt).
		Where(squirrel.Eq{"id": id, "response": nil}))
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, apperrors.ErrAlreadyResponded
}

// AddNote appends to internal_notes without reading the array first
func (r *MessageRepositoryImpl) AddNote(ctx context.Context, id int64, note models.InternalNote) (*models.Message, error) {
	encoded, err := json.Marshal([]models.InternalNote{note})
	if err != nil {
		return nil, fmt.Errorf("error encoding internal note: %w", err)
	}

	m, err := r.updateReturning(ctx, r.sb.Update("messages").
		Set("internal_notes", squirrel.Expr("internal_notes || ?::jsonb", string(encoded))).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// SetPriority sets the ticket priority
func (r *MessageRepositoryImpl) SetPriority(ctx context.Context, id int64, priority models.MessagePriority) (*models.Message, error) {
	m, err := r.updateReturning(ctx, r.sb.Update("messages").
		Set("priority", priority).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}
