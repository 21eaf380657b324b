package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"want-salon-backend/services"
	"want-salon-backend/utils"
)

type StatsRangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	MasterID  string `form:"master_id"`
}

type StatsController struct {
	Stats *services.StatsAggregator
}

// Get returns totals over every appointment.
func (sc *StatsController) Get(c *gin.Context) {
	stats, err := sc.Stats.Compute(c.Request.Context(), services.StatsFilter{})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (sc *StatsController) Range(c *gin.Context) {
	var q StatsRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}
	masterID, ok := optionalMasterID(c, q.MasterID)
	if !ok {
		return
	}
	stats, err := sc.Stats.Compute(c.Request.Context(), services.StatsFilter{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		MasterID:  masterID,
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
