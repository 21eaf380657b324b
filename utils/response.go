package utils

import (
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// RespondWithAppError maps any error onto its AppError status and body.
func RespondWithAppError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
