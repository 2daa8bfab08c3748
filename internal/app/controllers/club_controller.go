package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/middleware"
)

// ClubController handles club related operations
type ClubController struct {
	clubService services.ClubService
}

// NewClubController creates a new ClubController
func NewClubController(clubService services.ClubService) *ClubController {
	return &ClubController{
		clubService: clubService,
	}
}

// ListClubs handles listing clubs
// @Summary List clubs
// @Description Lists every club, optionally filtered by category
// @Tags clubs
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} dto.APIResponse{data=[]models.Club} "Clubs retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /clubs [get]
func (c *ClubController) ListClubs(ctx *gin.Context) {
	clubs, err := c.clubService.ListClubs(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(clubs, "Clubs retrieved successfully"))
}

// GetClubBySlug handles retrieving a club by slug
// @Summary Get club by slug
// @Tags clubs
// @Produce json
// @Param slug path string true "Club slug"
// @Success 200 {object} dto.APIResponse{data=models.Club} "Club retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /clubs/{slug} [get]
func (c *ClubController) GetClubBySlug(ctx *gin.Context) {
	club, err := c.clubService.GetClubBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(club, "Club retrieved successfully"))
}

// CreateClub handles creating a club
// @Summary Create a club
// @Description Creates a club. Super admins only.
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClubRequest true "Club"
// @Success 201 {object} dto.APIResponse{data=models.Club} "Club created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Slug already taken"
// @Router /clubs [post]
func (c *ClubController) CreateClub(ctx *gin.Context) {
	var req dto.ClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	club, err := c.clubService.CreateClub(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(club, "Club created successfully"))
}

// UpdateClub handles replacing a club
// @Summary Update a club
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param request body dto.ClubRequest true "Club"
// @Success 200 {object} dto.APIResponse{data=models.Club} "Club updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Failure 409 {object} dto.ErrorResponse "Slug already taken"
// @Router /clubs/{id} [put]
func (c *ClubController) UpdateClub(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.ClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	club, err := c.clubService.UpdateClub(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(club, "Club updated successfully"))
}

// DeleteClub handles deleting a club with its memberships, events and messages
// @Summary Delete a club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse "Club deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /clubs/{id} [delete]
func (c *ClubController) DeleteClub(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.clubService.DeleteClub(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Club deleted successfully"))
}
