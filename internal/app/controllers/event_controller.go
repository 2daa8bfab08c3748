package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/middleware"
)

// EventController handles events and attendance
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

// ListEvents handles listing a club's events
// @Summary List club events
// @Tags events
// @Produce json
// @Param clubId query int true "Club ID"
// @Param upcoming query bool false "Only events that have not started"
// @Success 200 {object} dto.APIResponse{data=[]models.Event} "Events retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid club ID"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	clubID, ok := queryID(ctx, "clubId")
	if !ok {
		return
	}

	list, err := c.eventService.ListClubEvents(ctx.Request.Context(), clubID, ctx.Query("upcoming") == "true")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, "Events retrieved"))
}

// GetEvent handles retrieving an event
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event retrieved"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	event, err := c.eventService.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Event retrieved"))
}

// CreateEvent handles scheduling an event
// @Summary Create event
// @Description Capacity is a positive integer or -1 for unlimited. Omitted means unlimited.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event, "Event created"))
}

// UpdateEvent handles patching an event
// @Summary Update event
// @Description Attendance is never changed by an update. Lowering capacity below the current count keeps existing attendees.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id, req.Patch())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Event updated"))
}

// DeleteEvent handles deleting an event and its roster
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Event deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Event deleted"))
}

func attendResponse(event *models.Event, status string) dto.AttendResponse {
	return dto.AttendResponse{
		EventID:   event.ID,
		Attendees: event.Attendees,
		Capacity:  event.Capacity.Int64(),
		Status:    status,
	}
}

// JoinEvent handles the caller joining an event
// @Summary Join event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AttendRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=dto.AttendResponse} "Joined"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Event full or already joined"
// @Router /events/attend [post]
func (c *EventController) JoinEvent(ctx *gin.Context) {
	var req dto.AttendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	event, err := c.eventService.JoinEvent(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), req.EventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(attendResponse(event, "joined"), "Joined event"))
}

// LeaveEvent handles the caller leaving an event
// @Summary Leave event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId query int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.AttendResponse} "Left"
// @Failure 404 {object} dto.ErrorResponse "Not attending"
// @Router /events/attend [delete]
func (c *EventController) LeaveEvent(ctx *gin.Context) {
	eventID, ok := queryID(ctx, "eventId")
	if !ok {
		return
	}

	event, err := c.eventService.LeaveEvent(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(attendResponse(event, "left"), "Left event"))
}

// HasJoined handles the attendance check. userId defaults to the caller.
// @Summary Check attendance
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId query int true "Event ID"
// @Param userId query int false "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.HasJoinedResponse} "Attendance checked"
// @Router /events/attend [get]
func (c *EventController) HasJoined(ctx *gin.Context) {
	eventID, ok := queryID(ctx, "eventId")
	if !ok {
		return
	}

	var userID int64
	if ctx.Query("userId") != "" {
		if userID, ok = queryID(ctx, "userId"); !ok {
			return
		}
	} else if principal := middleware.CurrentPrincipal(ctx); principal != nil {
		userID = principal.ID
	}

	joined, err := c.eventService.HasJoined(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HasJoinedResponse{
		EventID:   eventID,
		UserID:    userID,
		HasJoined: joined,
	}, "Attendance checked"))
}

// ListAttendees handles listing an event roster
// @Summary List attendees
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance} "Attendees retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/attendees [get]
func (c *EventController) ListAttendees(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	roster, err := c.eventService.ListAttendees(ctx.Request.Context(), middleware.CurrentPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(roster, "Attendees retrieved"))
}
