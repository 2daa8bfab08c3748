package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/db"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/dberrors"
	"github.com/denokazs/thku-sub000/internal/pkg/logger"
)

// ErrNotFound is shared by all repositories when a row does not exist
var ErrNotFound = apperrors.ErrResourceNotFound

var clubColumns = []string{"id", "slug", "name", "category", "roles", "created_at", "updated_at"}

// ClubRepositoryImpl handles club database operations
type ClubRepositoryImpl struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewClubRepository creates a new ClubRepositoryImpl
func NewClubRepository(database *db.PostgresDB) *ClubRepositoryImpl {
	return &ClubRepositoryImpl{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanClub(row pgx.Row) (*models.Club, error) {
	club := &models.Club{}
	var roles []byte
	if err := row.Scan(&club.ID, &club.Slug, &club.Name, &club.Category, &roles, &club.CreatedAt, &club.UpdatedAt); err != nil {
		return nil, err
	}
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &club.Roles); err != nil {
			return nil, fmt.Errorf("error decoding club roles: %w", err)
		}
	}
	return club, nil
}

func encodeRoles(roles []models.ClubRole) ([]byte, error) {
	if roles == nil {
		roles = []models.ClubRole{}
	}
	return json.Marshal(roles)
}

// Create inserts a club and fills its id and timestamps
func (r *ClubRepositoryImpl) Create(ctx context.Context, club *models.Club) error {
	roles, err := encodeRoles(club.Roles)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Insert("clubs").
		Columns("slug", "name", "category", "roles").
		Values(club.Slug, club.Name, club.Category, roles).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create club query: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err) {
			return apperrors.NewConflictError(fmt.Sprintf("a club with slug %q already exists", club.Slug))
		}
		logger.Error().Err(err).Str("slug", club.Slug).Msg("Error executing create club query")
		return fmt.Errorf("error creating club: %w", err)
	}
	return nil
}

func (r *ClubRepositoryImpl) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Club, error) {
	sql, args, err := r.sb.Select(clubColumns...).From("clubs").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get club query: %w", err)
	}

	club, err := scanClub(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting club: %w", err)
	}
	return club, nil
}

// GetByID retrieves a club by id
func (r *ClubRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetBySlug retrieves a club by its URL slug
func (r *ClubRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*models.Club, error) {
	return r.getOne(ctx, squirrel.Eq{"slug": slug})
}

// List returns all clubs, optionally restricted to a category
func (r *ClubRepositoryImpl) List(ctx context.Context, category string) ([]*models.Club, error) {
	query := r.sb.Select(clubColumns...).From("clubs").OrderBy("name ASC")
	if category != "" {
		query = query.Where(squirrel.Eq{"category": category})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list clubs query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	clubs := []*models.Club{}
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning club row: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club rows: %w", err)
	}
	return clubs, nil
}

// Update overwrites the editable club fields
func (r *ClubRepositoryImpl) Update(ctx context.Context, club *models.Club) error {
	roles, err := encodeRoles(club.Roles)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Update("clubs").
		SetMap(map[string]interface{}{
			"slug":       club.Slug,
			"name":       club.Name,
			"category":   club.Category,
			"roles":      roles,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": club.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update club query: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&club.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if dberrors.IsDuplicateConstraintError(err) {
			return apperrors.NewConflictError(fmt.Sprintf("a club with slug %q already exists", club.Slug))
		}
		return fmt.Errorf("error updating club: %w", err)
	}
	return nil
}

// Delete removes a club; memberships, events and messages cascade
func (r *ClubRepositoryImpl) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("clubs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete club query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting club: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
