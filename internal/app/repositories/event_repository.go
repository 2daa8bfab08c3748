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

var eventColumns = []string{
	"id", "club_id", "title", "description", "starts_at", "location",
	"capacity", "attendees", "details", "created_at", "updated_at",
}

// EventRepositoryImpl handles event and attendance database operations
type EventRepositoryImpl struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepositoryImpl
func NewEventRepository(database *db.PostgresDB) *EventRepositoryImpl {
	return &EventRepositoryImpl{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	var capacity int64
	var details []byte
	err := row.Scan(&e.ID, &e.ClubID, &e.Title, &e.Description, &e.StartsAt, &e.Location,
		&capacity, &e.Attendees, &details, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Capacity, err = models.CapacityFromInt(capacity); err != nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, err)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("error decoding event details: %w", err)
		}
	}
	return e, nil
}

// Create inserts an event with zero attendees
func (r *EventRepositoryImpl) Create(ctx context.Context, e *models.Event) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("error encoding event details: %w", err)
	}

	sql, args, err := r.sb.Insert("events").
		Columns("club_id", "title", "description", "starts_at", "location", "capacity", "attendees", "details").
		Values(e.ClubID, e.Title, e.Description, e.StartsAt, e.Location, e.Capacity.Int64(), 0, details).
		Suffix("RETURNING id, attendees, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.Attendees, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by id
func (r *EventRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := r.sb.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	e, err := scanEvent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return e, nil
}

// ListByClub returns a club's events by start time, optionally only those
// starting after startsAfter
func (r *EventRepositoryImpl) ListByClub(ctx context.Context, clubID int64, startsAfter *time.Time) ([]*models.Event, error) {
	query := r.sb.Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"club_id": clubID}).
		OrderBy("starts_at ASC")
	if startsAfter != nil {
		query = query.Where(squirrel.GtOrEq{"starts_at": *startsAfter})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update writes the patchable fields. attendees is never part of the SET list.
func (r *EventRepositoryImpl) Update(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	set := map[string]interface{}{"updated_at": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.StartsAt != nil {
		set["starts_at"] = *patch.StartsAt
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Capacity != nil {
		set["capacity"] = patch.Capacity.Int64()
	}
	if patch.Details != nil {
		details, err := json.Marshal(patch.Details)
		if err != nil {
			return nil, fmt.Errorf("error encoding event details: %w", err)
		}
		set["details"] = details
	}

	sql, args, err := r.sb.Update("events").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(eventColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update event query: %w", err)
	}

	e, err := scanEvent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating event: %w", err)
	}
	return e, nil
}

// Delete removes an event and, by cascade, its attendance roster
func (r *EventRepositoryImpl) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// lockEvent takes the row lock that serializes all joins and leaves of one event
func lockEvent(ctx context.Context, tx pgx.Tx, eventID int64) (models.Capacity, int, error) {
	var capacity int64
	var attendees int
	err := tx.QueryRow(ctx, `SELECT capacity, attendees FROM events WHERE id = $1 FOR UPDATE`, eventID).
		Scan(&capacity, &attendees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Capacity{}, 0, ErrNotFound
		}
		return models.Capacity{}, 0, fmt.Errorf("error locking event: %w", err)
	}
	c, err := models.CapacityFromInt(capacity)
	if err != nil {
		return models.Capacity{}, 0, err
	}
	return c, attendees, nil
}

// Join checks existence, prior attendance and capacity, then records the
// attendance and increments the counter, all under the event row lock
func (r *EventRepositoryImpl) Join(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	var event *models.Event
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		capacity, attendees, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		var joined bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
			eventID, userID).Scan(&joined)
		if err != nil {
			return fmt.Errorf("error checking attendance: %w", err)
		}
		if joined {
			return apperrors.ErrAlreadyJoined
		}
		if !capacity.HasRoomFor(attendees) {
			return apperrors.ErrEventFull
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO event_attendees (event_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			eventID, userID, time.Now()); err != nil {
			return fmt.Errorf("error inserting attendance: %w", err)
		}

		event, err = scanEvent(tx.QueryRow(ctx,
			`UPDATE events SET attendees = attendees + 1, updated_at = NOW() WHERE id = $1 RETURNING `+
				strings.Join(eventColumns, ", "), eventID))
		if err != nil {
			return fmt.Errorf("error incrementing attendees: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Leave deletes the attendance and decrements the counter, floored at zero
func (r *EventRepositoryImpl) Leave(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	var event *models.Event
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, _, err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
		if err != nil {
			return fmt.Errorf("error deleting attendance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		event, err = scanEvent(tx.QueryRow(ctx,
			`UPDATE events SET attendees = GREATEST(attendees - 1, 0), updated_at = NOW() WHERE id = $1 RETURNING `+
				strings.Join(eventColumns, ", "), eventID))
		if err != nil {
			return fmt.Errorf("error decrementing attendees: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// HasJoined reports whether userID holds an attendance for eventID
func (r *EventRepositoryImpl) HasJoined(ctx context.Context, eventID, userID int64) (bool, error) {
	var joined bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&joined)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return joined, nil
}

// ListAttendees returns the attendance roster in join order
func (r *EventRepositoryImpl) ListAttendees(ctx context.Context, eventID int64) ([]*models.Attendance, error) {
	sql, args, err := r.sb.Select("event_id", "user_id", "joined_at").
		From("event_attendees").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("joined_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendees query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	attendees := []*models.Attendance{}
	for rows.Next() {
		a := &models.Attendance{}
		if err := rows.Scan(&a.EventID, &a.UserID, &a.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
