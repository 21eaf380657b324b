package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"want-salon-backend/services"
	"want-salon-backend/utils"
)

// BotController serves the read-only views the Telegram bot renders.
type BotController struct {
	Ledger   *services.AppointmentLedger
	Stats    *services.StatsAggregator
	Location *time.Location
}

func (bc *BotController) MasterAppointments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	master, list, err := bc.Ledger.MasterSchedule(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"master":       masterResponse(master),
		"appointments": appointmentResponses(list, paymentNull),
	})
}

// CashRegister summarises completed appointments for ?date=, default today.
func (bc *BotController) CashRegister(c *gin.Context) {
	date := c.DefaultQuery("date", utils.Today(bc.Location))
	reg, err := bc.Stats.CashRegister(c.Request.Context(), date)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}
