package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denokazs/thku-sub000/internal/app/auth"
	"github.com/denokazs/thku-sub000/internal/app/controllers"
	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/app/repositories/memstore"
	"github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/middleware"
	pkgAuth "github.com/denokazs/thku-sub000/internal/pkg/auth"
	"github.com/denokazs/thku-sub000/internal/pkg/events"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	jwt    *pkgAuth.JWTService
	clubID int64
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memstore.New().Repositories()
	club := &models.Club{Slug: "robotics", Name: "Robotics Club"}
	require.NoError(t, repos.ClubRepository.Create(context.Background(), club))

	svc := services.NewServices(repos, auth.NewAuthorizationService(), events.NewLogPublisher(zerolog.Nop()), zerolog.Nop())
	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "test"})

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	SetupRouter(router, Controllers{
		Club:       controllers.NewClubController(svc.ClubService),
		Membership: controllers.NewMembershipController(svc.MembershipService),
		Event:      controllers.NewEventController(svc.EventService),
		Message:    controllers.NewMessageController(svc.MessageService),
		Health:     controllers.NewHealthController("memory", nil),
	}, middleware.NewAuthMiddleware(jwtService))

	return &testAPI{t: t, router: router, jwt: jwtService, clubID: club.ID}
}

func (a *testAPI) token(p *models.Principal) string {
	a.t.Helper()
	token, err := a.jwt.GenerateToken(p)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path string, principal *models.Principal, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(principal))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func student(id int64) *models.Principal {
	return &models.Principal{ID: id, Name: fmt.Sprintf("Student %d", id), Email: fmt.Sprintf("s%d@uni.edu", id), Role: models.RoleUser}
}

func (a *testAPI) admin() *models.Principal {
	clubID := a.clubID
	return &models.Principal{ID: 900, Name: "Club Admin", Role: models.RoleClubAdmin, ClubID: &clubID}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status, env := api.do(http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	health := decode[dto.HealthResponse](t, env.Data)
	assert.Equal(t, "ok", health.Status)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMembershipFlow(t *testing.T) {
	api := newTestAPI(t)
	application := dto.MemberInfoRequest{ClubID: api.clubID, Name: "Ada Lovelace", StudentID: "S100"}

	status, _ := api.do(http.MethodPost, "/api/v1/members", nil, application)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := api.do(http.MethodPost, "/api/v1/members", student(1), application)
	require.Equal(t, http.StatusOK, status)
	membership := decode[models.Membership](t, env.Data)
	assert.Equal(t, models.MembershipPending, membership.Status)

	status, env = api.do(http.MethodPost, "/api/v1/members", student(1), application)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeDuplicateMembership, env.Error.Code)
	assert.Contains(t, env.Error.Message, "pending or active membership")

	status, _ = api.do(http.MethodPut, "/api/v1/members", student(2), map[string]interface{}{"id": membership.ID, "status": "active"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(http.MethodPut, "/api/v1/members", api.admin(), map[string]interface{}{
		"id": membership.ID, "status": "active", "role": "Captain", "isFeatured": true,
	})
	require.Equal(t, http.StatusOK, status)
	approved := decode[models.Membership](t, env.Data)
	assert.Equal(t, models.MembershipActive, approved.Status)
	assert.Equal(t, "Captain", approved.Role)
	assert.True(t, approved.IsFeatured)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/members?clubId=%d&status=active", api.clubID), api.admin(), nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[struct {
		Items      []models.Membership `json:"items"`
		Pagination dto.PaginationInfo  `json:"pagination"`
	}](t, env.Data)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Pagination.TotalItems)

	status, env = api.do(http.MethodGet, "/api/v1/members/mine", student(1), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Membership](t, env.Data), 1)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/members?id=%d", membership.ID), api.admin(), nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/members?id=%d", membership.ID), api.admin(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)
}

func TestMembershipValidation(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodPost, "/api/v1/members", student(1), map[string]interface{}{"clubId": api.clubID})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Equal(t, "name", env.Error.Field)

	status, env = api.do(http.MethodPost, "/api/v1/members", student(1), map[string]interface{}{"clubId": api.clubID, "name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "studentId", env.Error.Field)

	status, _ = api.do(http.MethodDelete, "/api/v1/members?id=abc", api.admin(), nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestEventAttendanceFlow(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodPost, "/api/v1/events", api.admin(), map[string]interface{}{
		"clubId": api.clubID, "title": "Robot Wars", "startsAt": "2030-01-01T18:00:00Z", "capacity": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	event := decode[models.Event](t, env.Data)
	limit, limited := event.Capacity.Limit()
	assert.True(t, limited)
	assert.Equal(t, uint32(1), limit)

	status, env = api.do(http.MethodPost, "/api/v1/events/attend", student(1), dto.AttendRequest{EventID: event.ID})
	require.Equal(t, http.StatusOK, status)
	attend := decode[dto.AttendResponse](t, env.Data)
	assert.Equal(t, 1, attend.Attendees)
	assert.Equal(t, int64(1), attend.Capacity)

	status, env = api.do(http.MethodPost, "/api/v1/events/attend", student(1), dto.AttendRequest{EventID: event.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeAlreadyJoined, env.Error.Code)

	status, env = api.do(http.MethodPost, "/api/v1/events/attend", student(2), dto.AttendRequest{EventID: event.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeEventFull, env.Error.Code)
	assert.Equal(t, "This event is full", env.Error.Message)
	assert.Equal(t, dto.ErrorSeverityInfo, env.Error.Severity)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/events/attend?eventId=%d", event.ID), student(1), nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.HasJoinedResponse](t, env.Data).HasJoined)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/events/attend?eventId=%d", event.ID), student(2), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/events/attend?eventId=%d", event.ID), student(1), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[dto.AttendResponse](t, env.Data).Attendees)

	status, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/attendees", event.ID), student(1), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/events?clubId=%d", api.clubID), nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Event](t, env.Data), 1)
}

func TestEventCapacityValidation(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(http.MethodPost, "/api/v1/events", api.admin(), map[string]interface{}{
		"clubId": api.clubID, "title": "Bad", "startsAt": "2030-01-01T18:00:00Z", "capacity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := api.do(http.MethodPost, "/api/v1/events", api.admin(), map[string]interface{}{
		"clubId": api.clubID, "title": "Open Day", "startsAt": "2030-01-01T18:00:00Z", "capacity": -1,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, decode[models.Event](t, env.Data).Capacity.IsUnlimited())
}

func TestMessageFlow(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodPost, "/api/v1/messages", student(1), dto.CreateMessageRequest{
		ClubID: api.clubID, Subject: "Fee", Topic: models.TopicQuestion, Content: "Is there a fee?",
	})
	require.Equal(t, http.StatusOK, status)
	sent := decode[dto.UserMessageView](t, env.Data)
	assert.Equal(t, models.MessageSent, sent.Status)

	status, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", sent.ID), student(1), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", sent.ID), api.admin(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.MessageRead, decode[models.Message](t, env.Data).Status)

	status, env = api.do(http.MethodPut, "/api/v1/messages", api.admin(), map[string]interface{}{
		"id": sent.ID, "note": "checked with treasurer", "priority": "high", "response": "No fee",
	})
	require.Equal(t, http.StatusOK, status)
	answered := decode[models.Message](t, env.Data)
	assert.Equal(t, models.MessageResolved, answered.Status)
	assert.Equal(t, models.PriorityHigh, answered.Priority)
	assert.Len(t, answered.InternalNotes, 1)

	status, env = api.do(http.MethodPut, "/api/v1/messages", api.admin(), map[string]interface{}{"id": sent.ID, "response": "again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeAlreadyResponded, env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/v1/messages/mine", student(1), nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "internalNotes")
	mine := decode[[]dto.UserMessageView](t, env.Data)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Response)
	assert.Equal(t, "No fee", *mine[0].Response)
}

func TestClubRoutes(t *testing.T) {
	api := newTestAPI(t)
	root := &models.Principal{ID: 1, Name: "Root", Role: models.RoleSuperAdmin}

	status, _ := api.do(http.MethodPost, "/api/v1/clubs", api.admin(), dto.ClubRequest{Slug: "chess", Name: "Chess Club"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := api.do(http.MethodPost, "/api/v1/clubs", root, dto.ClubRequest{Slug: "chess", Name: "Chess Club"})
	require.Equal(t, http.StatusCreated, status)
	club := decode[models.Club](t, env.Data)

	status, env = api.do(http.MethodPost, "/api/v1/clubs", root, dto.ClubRequest{Slug: "chess", Name: "Chess Again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeConflict, env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/v1/clubs/chess", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, club.ID, decode[models.Club](t, env.Data).ID)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/clubs/%d", club.ID), root, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/api/v1/clubs/chess", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
