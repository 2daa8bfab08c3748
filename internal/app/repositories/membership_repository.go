package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/db"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/dberrors"
	"github.com/denokazs/thku-sub000/internal/pkg/logger"
)

// Partial unique indexes backing the one-membership-per-identity rule
const (
	membershipUserIndex    = "memberships_club_user_uniq"
	membershipStudentIndex = "memberships_club_student_uniq"
	membershipEmailIndex   = "memberships_club_email_uniq"
)

var membershipColumns = []string{
	"id", "club_id", "user_id", "name", "department", "student_id", "email", "phone",
	"role", "status", "joined_at", "is_featured", "custom_title", "custom_image",
	"created_at", "updated_at",
}

// MembershipRepositoryImpl handles membership database operations
type MembershipRepositoryImpl struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewMembershipRepository creates a new MembershipRepositoryImpl
func NewMembershipRepository(database *db.PostgresDB) *MembershipRepositoryImpl {
	return &MembershipRepositoryImpl{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanMembership(row pgx.Row, extra ...interface{}) (*models.Membership, error) {
	m := &models.Membership{}
	dest := []interface{}{
		&m.ID, &m.ClubID, &m.UserID, &m.Name, &m.Department, &m.StudentID, &m.Email, &m.Phone,
		&m.Role, &m.Status, &m.JoinedAt, &m.IsFeatured, &m.CustomTitle, &m.CustomImage,
		&m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a membership. The partial unique indexes make the duplicate
// check and the insert a single atomic write.
func (r *MembershipRepositoryImpl) Create(ctx context.Context, m *models.Membership) error {
	sql, args, err := r.sb.Insert("memberships").
		Columns("club_id", "user_id", "name", "department", "student_id", "email", "phone",
			"role", "status", "joined_at", "is_featured", "custom_title", "custom_image").
		Values(m.ClubID, m.UserID, m.Name, m.Department, strings.TrimSpace(m.StudentID), strings.TrimSpace(m.Email), m.Phone,
			m.Role, m.Status, m.JoinedAt, m.IsFeatured, m.CustomTitle, m.CustomImage).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create membership query: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, membershipUserIndex, membershipStudentIndex, membershipEmailIndex) {
			return apperrors.ErrDuplicateMembership
		}
		logger.Error().Err(err).Int64("clubID", m.ClubID).Msg("Error executing create membership query")
		return fmt.Errorf("error creating membership: %w", err)
	}
	return nil
}

// GetByID retrieves a membership by id
func (r *MembershipRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	sql, args, err := r.sb.Select(membershipColumns...).
		From("memberships").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get membership query: %w", err)
	}

	m, err := scanMembership(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting membership: %w", err)
	}
	return m, nil
}

// ListByClub returns one page of a club roster and the total row count
func (r *MembershipRepositoryImpl) ListByClub(ctx context.Context, clubID int64, filter MembershipFilter) ([]*models.Membership, int64, error) {
	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := r.sb.Select(append(membershipColumns, "COUNT(*) OVER() AS total_count")...).
		From("memberships").
		Where(squirrel.Eq{"club_id": clubID}).
		OrderBy("is_featured DESC", "created_at ASC").
		Limit(limit).
		Offset(offset)
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list memberships query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var total int64
	memberships := []*models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, total, nil
}

// ListByIdentity returns memberships held by an account id or, for legacy
// records without one, by email
func (r *MembershipRepositoryImpl) ListByIdentity(ctx context.Context, userID int64, email string) ([]*models.Membership, error) {
	identity := squirrel.Or{squirrel.Eq{"user_id": userID}}
	if normalized := models.NormalizeEmail(email); normalized != "" {
		identity = append(identity, squirrel.Expr("(user_id IS NULL AND lower(email) = ?)", normalized))
	}

	sql, args, err := r.sb.Select(membershipColumns...).
		From("memberships").
		Where(identity).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list memberships query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	memberships := []*models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// Activate flips a pending membership to active in one conditional update
func (r *MembershipRepositoryImpl) Activate(ctx context.Context, id int64, role *string) (*models.Membership, error) {
	sql, args, err := r.sb.Update("memberships").
		Set("status", models.MembershipActive).
		Set("role", squirrel.Expr("COALESCE(?::varchar, NULLIF(role, ''), ?)", role, models.DefaultMemberRole)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": models.MembershipPending}).
		Suffix("RETURNING " + strings.Join(membershipColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activate membership query: %w", err)
	}

	m, err := scanMembership(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// already active, or gone
			return r.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("error activating membership: %w", err)
	}
	return m, nil
}

// Update writes the patchable fields. Status and club are never written here.
func (r *MembershipRepositoryImpl) Update(ctx context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	set := map[string]interface{}{"updated_at": time.Now()}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.Department != nil {
		set["department"] = *patch.Department
	}
	if patch.IsFeatured != nil {
		set["is_featured"] = *patch.IsFeatured
	}
	if patch.CustomTitle != nil {
		set["custom_title"] = *patch.CustomTitle
	}
	if patch.CustomImage != nil {
		set["custom_image"] = *patch.CustomImage
	}

	sql, args, err := r.sb.Update("memberships").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(membershipColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update membership query: %w", err)
	}

	m, err := scanMembership(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating membership: %w", err)
	}
	return m, nil
}

// Delete hard-deletes a membership
func (r *MembershipRepositoryImpl) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("memberships").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete membership query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
