package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/controllers"
	"github.com/denokazs/thku-sub000/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Club       *controllers.ClubController
	Membership *controllers.MembershipController
	Event      *controllers.EventController
	Message    *controllers.MessageController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", ctrl.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	// --- Public read routes ---
	clubs := v1.Group("/clubs")
	{
		clubs.GET("", ctrl.Club.ListClubs)
		clubs.GET("/:slug", ctrl.Club.GetClubBySlug)
	}

	events := v1.Group("/events")
	{
		events.GET("", ctrl.Event.ListEvents)
		events.GET("/:id", ctrl.Event.GetEvent)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	clubsProtected := authenticated.Group("/clubs")
	{
		clubsProtected.POST("", ctrl.Club.CreateClub)
		clubsProtected.PUT("/:id", ctrl.Club.UpdateClub)
		clubsProtected.DELETE("/:id", ctrl.Club.DeleteClub)
	}

	members := authenticated.Group("/members")
	{
		members.POST("", ctrl.Membership.SubmitApplication)
		members.POST("/direct", ctrl.Membership.AddDirect)
		members.PUT("", ctrl.Membership.UpdateMembership)
		members.DELETE("", ctrl.Membership.RemoveMembership)
		members.GET("", ctrl.Membership.ListClubMembers)
		members.GET("/mine", ctrl.Membership.ListMine)
	}

	eventsProtected := authenticated.Group("/events")
	{
		eventsProtected.POST("", ctrl.Event.CreateEvent)
		eventsProtected.PUT("/:id", ctrl.Event.UpdateEvent)
		eventsProtected.DELETE("/:id", ctrl.Event.DeleteEvent)
		eventsProtected.GET("/:id/attendees", ctrl.Event.ListAttendees)

		eventsProtected.POST("/attend", ctrl.Event.JoinEvent)
		eventsProtected.DELETE("/attend", ctrl.Event.LeaveEvent)
		eventsProtected.GET("/attend", ctrl.Event.HasJoined)
	}

	messages := authenticated.Group("/messages")
	{
		messages.POST("", ctrl.Message.CreateMessage)
		messages.GET("", ctrl.Message.ListClubMessages)
		messages.PUT("", ctrl.Message.UpdateMessage)
		messages.GET("/mine", ctrl.Message.ListMyMessages)
		messages.GET("/:id", ctrl.Message.OpenMessage)
		messages.POST("/:id/close", ctrl.Message.CloseMessage)
	}
}
