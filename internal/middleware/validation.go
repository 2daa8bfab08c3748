package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/denokazs/thku-sub000/internal/app/models/dto"
)

// HandleValidationError renders a binding failure. Field-level validator
// errors are listed one per field; anything else is a malformed body.
func HandleValidationError(c *gin.Context, err error) {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	collected := dto.NewValidationErrors()
	for _, fe := range fieldErrors {
		collected.AddError(jsonFieldName(fe), formatValidationError(fe))
	}

	first := collected.Errors[0]
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, first.Message).WithField(first.Field)
	errorDetail = errorDetail.WithDetails(collected.Errors)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// jsonFieldName lowercases the first letter of the struct field, which is how
// the request structs name their JSON keys
func jsonFieldName(e validator.FieldError) string {
	name := e.Field()
	if name == "" {
		return name
	}
	if name == "ID" {
		return "id"
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
