package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models/dto"
)

// parseID reads a positive int64 and renders a 400 naming the parameter when
// it is missing or malformed
func parseID(ctx *gin.Context, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fmt.Sprintf("Invalid %s", name)).WithField(name)
		errorDetail = errorDetail.WithDetails(fmt.Sprintf("%s must be a positive number", name))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func pathID(ctx *gin.Context) (int64, bool) {
	return parseID(ctx, ctx.Param("id"), "id")
}

func queryID(ctx *gin.Context, name string) (int64, bool) {
	return parseID(ctx, ctx.Query(name), name)
}

func paginated(items interface{}, page dto.PaginationInfo) dto.PaginatedResponse {
	return dto.PaginatedResponse{Items: items, Pagination: page}
}
