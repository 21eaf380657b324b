package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"want-salon-backend/utils"
)

// pathID parses an int64 path parameter. On failure it writes a 400 and
// returns false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithAppError(c, utils.InvalidInput("Invalid "+name+": "+c.Param(name)))
		return 0, false
	}
	return id, true
}

// optionalMasterID reads the master_id query parameter, which may be absent.
func optionalMasterID(c *gin.Context, raw string) (*int64, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithAppError(c, utils.InvalidInput("Invalid master_id: "+raw))
		return nil, false
	}
	return &id, true
}

// bindingError maps validator failures to a 422 listing the offending fields
// and anything else (malformed JSON, wrong types) to a 400.
func bindingError(err error) *utils.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return utils.Validation("Invalid input", map[string]any{"fields": fields})
	}
	return utils.InvalidInput("Invalid input: " + err.Error())
}
