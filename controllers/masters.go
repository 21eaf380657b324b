package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"want-salon-backend/services"
	"want-salon-backend/utils"
)

type RegisterMasterInput struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Name       string `json:"name"`
}

type UpdateNameInput struct {
	Name string `json:"name" binding:"required"`
}

type UpdateAvatarInput struct {
	Avatar *string `json:"avatar"`
}

type MasterController struct {
	Registry *services.MasterRegistry
	Ledger   *services.AppointmentLedger
	Tokens   *utils.TokenIssuer
	Log      *zap.Logger
}

func (mc *MasterController) List(c *gin.Context) {
	masters, err := mc.Registry.List(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	out := make([]MasterResponse, 0, len(masters))
	for i := range masters {
		out = append(out, masterResponse(&masters[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (mc *MasterController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := mc.Registry.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, masterResponse(m))
}

// Register links a Telegram account to a master and returns a session token.
func (mc *MasterController) Register(c *gin.Context) {
	var input RegisterMasterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}

	m, created, err := mc.Registry.RegisterOrFetch(c.Request.Context(), input.TelegramID, input.Name)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	token, err := mc.Tokens.Generate(m.ID, input.TelegramID)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to generate token", err))
		return
	}

	if created {
		mc.Log.Info("new master signed up", zap.Int64("master_id", m.ID))
	}
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"master": masterResponse(m),
	})
}

func (mc *MasterController) UpdateName(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input UpdateNameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}
	m, err := mc.Registry.UpdateName(c.Request.Context(), id, input.Name)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, masterResponse(m))
}

func (mc *MasterController) UpdateAvatar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input UpdateAvatarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, bindingError(err))
		return
	}
	m, err := mc.Registry.UpdateAvatar(c.Request.Context(), id, input.Avatar)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, masterResponse(m))
}

// Appointments lists one master's appointments. Non-completed entries carry
// an empty payment object here, unlike every other listing.
func (mc *MasterController) Appointments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := mc.Ledger.ListForMaster(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponses(list, paymentEmptyObject))
}
