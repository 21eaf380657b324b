package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"want-salon-backend/config"
	"want-salon-backend/controllers"
	"want-salon-backend/services"
	"want-salon-backend/utils"
)

// Deps is everything the router needs, built once in main.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Registry *services.MasterRegistry
	Ledger   *services.AppointmentLedger
	Stats    *services.StatsAggregator
	Tokens   *utils.TokenIssuer
	Limiter  *utils.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", config.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", config.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(d.Log))

	masterController := &controllers.MasterController{
		Registry: d.Registry,
		Ledger:   d.Ledger,
		Tokens:   d.Tokens,
		Log:      d.Log,
	}
	appointmentController := &controllers.AppointmentController{Ledger: d.Ledger}
	statsController := &controllers.StatsController{Stats: d.Stats}
	botController := &controllers.BotController{
		Ledger:   d.Ledger,
		Stats:    d.Stats,
		Location: d.Config.Location(),
	}

	// auth and self are no-ops when AUTH_REQUIRED is off
	var auth, self gin.HandlerFunc = passThrough, passThrough
	if d.Config.AuthRequired {
		auth = utils.AuthMiddleware(d.Tokens, d.Registry)
		self = utils.RequireSelf("id")
	}

	api := r.Group("/api")
	{
		api.GET("/health", controllers.Health)

		colors := api.Group("/colors")
		{
			colors.GET("", controllers.ListColors)
			colors.GET("/:name", controllers.GetColor)
		}

		masters := api.Group("/masters")
		{
			masters.GET("", masterController.List)
			masters.POST("/register", utils.RateLimit(d.Limiter), masterController.Register)
			masters.GET("/:id", masterController.Get)
			masters.GET("/:id/appointments", masterController.Appointments)
			masters.PUT("/:id/name", auth, self, masterController.UpdateName)
			masters.PUT("/:id/avatar", auth, self, masterController.UpdateAvatar)
		}

		appointments := api.Group("/appointments", auth)
		{
			appointments.GET("", appointmentController.ListAll)
			appointments.GET("/range", appointmentController.ListRange)
			appointments.POST("/:masterId", appointmentController.Create)
			appointments.PUT("/:masterId/:appointmentId", appointmentController.Update)
			appointments.DELETE("/:masterId/:appointmentId", appointmentController.Delete)
			appointments.POST("/:masterId/:appointmentId/complete", appointmentController.Complete)
			appointments.POST("/:masterId/:appointmentId/cancel", appointmentController.Cancel)
		}

		stats := api.Group("/stats", auth)
		{
			stats.GET("", statsController.Get)
			stats.GET("/range", statsController.Range)
		}

		bot := api.Group("/bot")
		{
			bot.GET("/masters/:id/appointments", botController.MasterAppointments)
			bot.GET("/cash-register", botController.CashRegister)
		}
	}

	return r
}

func passThrough(c *gin.Context) { c.Next() }
