package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denokazs/thku-sub000/internal/app/repositories/memstore"
)

func TestCreateDefaultDataIsRepeatable(t *testing.T) {
	ctx := context.Background()
	repos := memstore.New().Repositories()

	require.NoError(t, CreateDefaultData(ctx, repos.ClubRepository, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos.ClubRepository, zerolog.Nop()))

	clubs, err := repos.ClubRepository.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, clubs, len(DefaultClubs))

	robotics, err := repos.ClubRepository.GetBySlug(ctx, "robotics")
	require.NoError(t, err)
	assert.Len(t, robotics.Roles, 2)
}
