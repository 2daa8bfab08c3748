package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/denokazs/thku-sub000/internal/app/models"
	appRepos "github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
)

// DefaultClubs are created on first start in development
var DefaultClubs = []appModels.Club{
	{
		Slug:     "robotics",
		Name:     "Robotics Club",
		Category: "technology",
		Roles: []appModels.ClubRole{
			{ID: "captain", Name: "Captain", Color: "#e11d48", Priority: 1},
			{ID: "member", Name: appModels.DefaultMemberRole, Priority: 10},
		},
	},
	{
		Slug:     "photography",
		Name:     "Photography Club",
		Category: "arts",
	},
	{
		Slug:     "debate",
		Name:     "Debate Society",
		Category: "academic",
	},
}

// CreateDefaultData creates the default clubs that don't exist yet. Failures
// are collected so one bad row does not stop the rest.
func CreateDefaultData(ctx context.Context, clubRepo appRepos.ClubRepository, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Clubs)...")
	var finalErr error

	for _, template := range DefaultClubs {
		_, err := clubRepo.GetBySlug(ctx, template.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("slug", template.Slug).Msg("Error looking up default club")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		club := template
		club.Roles = append([]appModels.ClubRole{}, template.Roles...)
		if err := clubRepo.Create(ctx, &club); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("slug", template.Slug).Msg("Error creating default club")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("slug", club.Slug).Int64("clubID", club.ID).Msg("Default club created")
	}

	return finalErr
}
