package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models/dto"
	"github.com/denokazs/thku-sub000/internal/pkg/apperrors"
	"github.com/denokazs/thku-sub000/internal/pkg/logger"
)

// HandleAPIError renders err with the status and code of its kind. Lifecycle
// conflicts are 409s carrying the user-facing message; anything unrecognised
// is logged and hidden behind a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("requestID", RequestID(c)).
			Msg("Unhandled error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	msg := func(fallback string) string {
		return apperrors.UserMessage(err, fallback)
	}
	conflict := func(code dto.ErrorCode, fallback string) (int, *dto.ErrorDetail) {
		return http.StatusConflict, dto.NewErrorDetail(code, msg(fallback)).WithSeverity(dto.ErrorSeverityInfo)
	}

	switch {
	case errors.Is(err, apperrors.ErrDuplicateMembership):
		return conflict(dto.ErrorCodeDuplicateMembership, "Membership already exists")
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		return conflict(dto.ErrorCodeAlreadyJoined, "Already joined")
	case errors.Is(err, apperrors.ErrEventFull):
		return conflict(dto.ErrorCodeEventFull, "Event is full")
	case errors.Is(err, apperrors.ErrAlreadyResponded):
		return conflict(dto.ErrorCodeAlreadyResponded, "Message already answered")
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, msg("Resource already exists"))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, msg("Resource not found"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, msg("Permission denied"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, msg("Validation failed"))
		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if field, ok := custom.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
		}
		return http.StatusBadRequest, detail
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "An unexpected error occurred")
	}
}
