package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"want-salon-backend/models"
	"want-salon-backend/services"
	"want-salon-backend/utils"
)

type CreateAppointmentInput struct {
	Date       string `json:"date" binding:"required,isodate"`
	Time       string `json:"time" binding:"required"`
	Duration   int    `json:"duration" binding:"omitempty,gt=0"`
	ClientName string `json:"clientName" binding:"required"`
	Comment    string `json:"comment"`
}

// UpdateAppointmentInput is a partial update; omitted fields stay unchanged.
type UpdateAppointmentInput struct {
	Date       *string         `json:"date"`
	Time       *string         `json:"time"`
	Duration   *int            `json:"duration"`
	ClientName *string         `json:"clientName"`
	Comment    *string         `json:"comment"`
	Status     *string         `json:"status"`
	Payment    *models.Payment `json:"payment"`
}

type CompleteAppointmentInput struct {
	Payment *models.Payment `json:"payment" binding:"required"`
}

type RangeQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	MasterID  string `form:"master_id"`
}

type AppointmentController struct {
	Ledger *services.AppointmentLedger
}

// ListAll returns {"<masterId>": [appointments]} for every master.
func (ac *AppointmentController) ListAll(c *gin.Context) {
	masterID, ok := optionalMasterID(c, c.Query("master_id"))
	if !ok {
		return
	}
	grouped, err := ac.Ledger.ListAll(c.Request.Context(), c.Query("date"), masterID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	out := make(map[string][]AppointmentResponse, len(grouped))
	for id, list := range grouped {
		out[strconv.FormatInt(id, 10)] = appointmentResponses(list, paymentNull)
	}
	c.JSON(http.StatusOK, out)
}

// ListRange returns {"YYYY-MM-DD": [appointments]} for dates in the range.
func (ac *AppointmentController) ListRange(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}
	masterID, ok := optionalMasterID(c, q.MasterID)
	if !ok {
		return
	}
	grouped, err := ac.Ledger.ListInRange(c.Request.Context(), q.StartDate, q.EndDate, masterID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	out := make(map[string][]AppointmentResponse, len(grouped))
	for date, list := range grouped {
		out[date] = appointmentResponses(list, paymentNull)
	}
	c.JSON(http.StatusOK, out)
}

func (ac *AppointmentController) Create(c *gin.Context) {
	masterID, ok := pathID(c, "masterId")
	if !ok {
		return
	}
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}

	a, err := ac.Ledger.Create(c.Request.Context(), masterID, services.NewAppointment{
		Date:       input.Date,
		Time:       input.Time,
		Duration:   input.Duration,
		ClientName: input.ClientName,
		Comment:    input.Comment,
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointmentResponse(a, paymentNull))
}

func (ac *AppointmentController) Update(c *gin.Context) {
	masterID, ok := pathID(c, "masterId")
	if !ok {
		return
	}
	id, ok := pathID(c, "appointmentId")
	if !ok {
		return
	}
	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}

	patch := services.AppointmentPatch{
		Date:       input.Date,
		Time:       input.Time,
		Duration:   input.Duration,
		ClientName: input.ClientName,
		Comment:    input.Comment,
		Payment:    input.Payment,
	}
	if input.Status != nil {
		status := models.AppointmentStatus(*input.Status)
		patch.Status = &status
	}

	result, err := ac.Ledger.Update(c.Request.Context(), masterID, id, patch)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(result.Appointment, paymentNull))
}

func (ac *AppointmentController) Complete(c *gin.Context) {
	masterID, ok := pathID(c, "masterId")
	if !ok {
		return
	}
	id, ok := pathID(c, "appointmentId")
	if !ok {
		return
	}
	var input CompleteAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}

	a, err := ac.Ledger.Complete(c.Request.Context(), masterID, id, *input.Payment)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(a, paymentNull))
}

func (ac *AppointmentController) Cancel(c *gin.Context) {
	masterID, ok := pathID(c, "masterId")
	if !ok {
		return
	}
	id, ok := pathID(c, "appointmentId")
	if !ok {
		return
	}
	a, err := ac.Ledger.Cancel(c.Request.Context(), masterID, id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(a, paymentNull))
}

func (ac *AppointmentController) Delete(c *gin.Context) {
	masterID, ok := pathID(c, "masterId")
	if !ok {
		return
	}
	id, ok := pathID(c, "appointmentId")
	if !ok {
		return
	}
	if err := ac.Ledger.Delete(c.Request.Context(), masterID, id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}
