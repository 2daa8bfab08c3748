package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/middleware"
	"github.com/denokazs/thku-sub000/internal/pkg/helpers"
)

// MembershipController handles membership applications and rosters
type MembershipController struct {
	membershipService services.MembershipService
}

// NewMembershipController creates a new MembershipController
func NewMembershipController(membershipService services.MembershipService) *MembershipController {
	return &MembershipController{
		membershipService: membershipService,
	}
}

// SubmitApplication handles a membership application by the caller
// @Summary Apply for membership
// @Description Records a pending membership. Fails when the same person already has a pending or active membership in the club.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MemberInfoRequest true "Applicant"
// @Success 200 {object} dto.APIResponse{data=models.Membership} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate membership"
// @Router /members [post]
func (c *MembershipController) SubmitApplication(ctx *gin.Context) {
	var req dto.MemberInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	membership, err := c.membershipService.SubmitApplication(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(membership, "Application submitted"))
}

// AddDirect handles adding an active member without an application
// @Summary Add member directly
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MemberInfoRequest true "Member"
// @Success 201 {object} dto.APIResponse{data=models.Membership} "Member added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Duplicate membership"
// @Router /members/direct [post]
func (c *MembershipController) AddDirect(ctx *gin.Context) {
	var req dto.MemberInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	membership, err := c.membershipService.AddDirect(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(membership, "Member added"))
}

// UpdateMembership approves a membership when status=active is sent and
// patches the remaining fields
// @Summary Approve or update a membership
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateMembershipRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=models.Membership} "Membership updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Router /members [put]
func (c *MembershipController) UpdateMembership(ctx *gin.Context) {
	var req dto.UpdateMembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	principal := middleware.CurrentPrincipal(ctx)
	patch := req.Patch()

	var (
		membership *models.Membership
		err        error
	)
	if req.IsApproval() {
		membership, err = c.membershipService.Approve(ctx.Request.Context(), principal, req.ID, req.Role)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		// the role was consumed by the approval
		patch.Role = nil
		if patch.Empty() {
			ctx.JSON(http.StatusOK, dto.NewSuccessResponse(membership, "Membership approved"))
			return
		}
	}

	membership, err = c.membershipService.Update(ctx.Request.Context(), principal, req.ID, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(membership, "Membership updated"))
}

// RemoveMembership handles deleting a membership
// @Summary Remove a membership
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id query int true "Membership ID"
// @Success 200 {object} dto.APIResponse "Membership removed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Router /members [delete]
func (c *MembershipController) RemoveMembership(ctx *gin.Context) {
	id, ok := queryID(ctx, "id")
	if !ok {
		return
	}

	if err := c.membershipService.Remove(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Membership removed"))
}

// ListClubMembers handles listing a club roster
// @Summary List club members
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param clubId query int true "Club ID"
// @Param status query string false "pending or active"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Members retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /members [get]
func (c *MembershipController) ListClubMembers(ctx *gin.Context) {
	clubID, ok := queryID(ctx, "clubId")
	if !ok {
		return
	}

	var status *models.MembershipStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.MembershipStatus(raw)
		status = &s
	}
	page, size := helpers.ParsePaginationParams(ctx)

	memberships, pagination, err := c.membershipService.ListByClub(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), clubID, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paginated(memberships, pagination), "Members retrieved"))
}

// ListMine handles listing the caller's memberships
// @Summary My memberships
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Membership} "Memberships retrieved"
// @Router /members/mine [get]
func (c *MembershipController) ListMine(ctx *gin.Context) {
	memberships, err := c.membershipService.ListMine(ctx.Request.Context(), middleware.CurrentPrincipal(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(memberships, "Memberships retrieved"))
}
