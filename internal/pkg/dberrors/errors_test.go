package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "memberships_club_student_uniq"})

	assert.True(t, IsDuplicateConstraintError(dup))
	assert.True(t, IsDuplicateConstraintError(dup, "memberships_club_email_uniq", "memberships_club_student_uniq"))
	assert.False(t, IsDuplicateConstraintError(dup, "clubs_slug_key"))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "memberships_club_id_fkey"}
	assert.False(t, IsDuplicateConstraintError(fk))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain")))
}
