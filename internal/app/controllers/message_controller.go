package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/middleware"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/helpers"
)

// MessageController handles support tickets
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// CreateMessage handles sending a ticket to a club
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.UserMessageView} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /messages [post]
func (c *MessageController) CreateMessage(ctx *gin.Context) {
	var req dto.CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	message, err := c.messageService.CreateMessage(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserMessageView(message), "Message sent"))
}

// ListClubMessages handles listing a club inbox
// @Summary List club messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param clubId query int true "Club ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Messages retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /messages [get]
func (c *MessageController) ListClubMessages(ctx *gin.Context) {
	clubID, ok := queryID(ctx, "clubId")
	if !ok {
		return
	}

	var status *models.MessageStatus
	if raw := ctx.Query("status"); raw != "" {
		parsed, err := models.ParseMessageStatus(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("status", err.Error()))
			return
		}
		status = &parsed
	}
	page, size := helpers.ParsePaginationParams(ctx)

	messages, pagination, err := c.messageService.ListClubMessages(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), clubID, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paginated(messages, pagination), "Messages retrieved"))
}

// ListMyMessages handles listing the caller's own tickets without internal notes
// @Summary My messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserMessageView} "Messages retrieved"
// @Router /messages/mine [get]
func (c *MessageController) ListMyMessages(ctx *gin.Context) {
	messages, err := c.messageService.ListMyMessages(ctx.Request.Context(), middleware.CurrentPrincipal(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserMessageViews(messages), "Messages retrieved"))
}

// OpenMessage handles an admin opening a ticket, which marks it read
// @Summary Open message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=models.Message} "Message retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /messages/{id} [get]
func (c *MessageController) OpenMessage(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	message, err := c.messageService.OpenMessage(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(message, "Message retrieved"))
}

// UpdateMessage applies the requested admin actions in the order note,
// priority, response, status. Actions already applied stay applied when a
// later one fails.
// @Summary Update message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateMessageRequest true "Actions"
// @Success 200 {object} dto.APIResponse{data=models.Message} "Message updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Failure 409 {object} dto.ErrorResponse "Already answered"
// @Router /messages [put]
func (c *MessageController) UpdateMessage(ctx *gin.Context) {
	var req dto.UpdateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	if req.Empty() {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("status", "Nothing to update"))
		return
	}

	message, err := c.applyUpdate(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(message, "Message updated"))
}

func (c *MessageController) applyUpdate(ctx context.Context, principal *models.Principal, req *dto.UpdateMessageRequest) (*models.Message, error) {
	var (
		message *models.Message
		err     error
	)

	if req.Note != nil {
		if message, err = c.messageService.AddNote(ctx, principal, req.ID, *req.Note); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if message, err = c.messageService.SetPriority(ctx, principal, req.ID, models.MessagePriority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.Response != nil {
		if message, err = c.messageService.Respond(ctx, principal, req.ID, *req.Response); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		status, err := models.ParseMessageStatus(*req.Status)
		if err != nil {
			return nil, apperrors.NewValidationError("status", err.Error())
		}
		if message, err = c.messageService.SetStatusUnchecked(ctx, principal, req.ID, status); err != nil {
			return nil, err
		}
	}
	return message, nil
}

// CloseMessage handles closing a ticket without answering it
// @Summary Close message
// @Description Closes any ticket that is not resolved; resolved tickets are returned unchanged.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=models.Message} "Message closed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /messages/{id}/close [post]
func (c *MessageController) CloseMessage(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	message, err := c.messageService.Close(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(message, "Message closed"))
}
