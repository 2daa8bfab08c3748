package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denokazs/thku-sub000/internal/app/models"
	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorDetailFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.NewResourceNotFoundError("Event not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"duplicate membership", apperrors.ErrDuplicateMembership, http.StatusConflict, dto.ErrorCodeDuplicateMembership},
		{"already joined", apperrors.NewCustomError(apperrors.ErrAlreadyJoined, "joined"), http.StatusConflict, dto.ErrorCodeAlreadyJoined},
		{"event full", apperrors.ErrEventFull, http.StatusConflict, dto.ErrorCodeEventFull},
		{"already responded", apperrors.ErrAlreadyResponded, http.StatusConflict, dto.ErrorCodeAlreadyResponded},
		{"conflict", apperrors.NewConflictError("slug taken"), http.StatusConflict, dto.ErrorCodeConflict},
		{"validation", apperrors.NewValidationError("email", "bad email"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := errorDetailFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestErrorDetailForKeepsUserMessage(t *testing.T) {
	_, detail := errorDetailFor(apperrors.NewCustomError(apperrors.ErrEventFull, "This event is full"))
	assert.Equal(t, "This event is full", detail.Message)

	_, detail = errorDetailFor(apperrors.NewValidationError("email", "bad email"))
	assert.Equal(t, "email", detail.Field)

	_, detail = errorDetailFor(errors.New("pq: password authentication failed"))
	assert.NotContains(t, detail.Message, "password")
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "club-portal"})
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentPrincipal(c))
	})
	return router, jwtService
}

func TestJWTAuth(t *testing.T) {
	router, jwtService := newAuthRouter(t)
	clubID := int64(5)
	token, err := jwtService.GenerateToken(&models.Principal{ID: 9, Name: "Ada", Role: models.RoleClubAdmin, ClubID: &clubID})
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var principal models.Principal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
		assert.Equal(t, int64(9), principal.ID)
		assert.Equal(t, models.RoleClubAdmin, principal.Role)
		require.NotNil(t, principal.ClubID)
		assert.Equal(t, int64(5), *principal.ClubID)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", TokenIssuer: "club-portal"})
		forged, err := other.GenerateToken(&models.Principal{ID: 9, Role: models.RoleSuperAdmin})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, dto.ErrorCodeInvalidToken, body.Error.Code)
	})
}

func TestRequestIDIsPropagated(t *testing.T) {
	router, _ := newAuthRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
