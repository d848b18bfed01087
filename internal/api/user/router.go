package user

import (
	"github.com/edukita/gametrack/internal/api"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/config"
	"github.com/edukita/gametrack/internal/pubsub"
	"github.com/edukita/gametrack/internal/scoring"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewUserRouter creates and configures the player-facing Gin engine.
func NewUserRouter(
	cfg *config.Config,
	db *gorm.DB,
	ledger *scoring.Ledger,
	broker *pubsub.Broker,
	trail *audit.Trail) *gin.Engine {

	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, ledger, broker, trail)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", h.login)

		// Websocket live score feed, token passed as query parameter
		v1.GET("/ws/games/:id/scores", h.handleGameScoreWs)

		authed := v1.Group("/")
		authed.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
		{
			profile := authed.Group("/user")
			{
				profile.GET("/profile", h.getProfile)
				profile.PATCH("/profile", h.updateProfile)
			}

			authed.GET("/games", h.listGames)

			levels := authed.Group("/levels")
			{
				levels.POST("/init", h.initLevel)
				levels.POST("/find", h.getLevel)
				levels.PUT("", h.advanceLevel)
			}

			authed.POST("/records", h.createRecord)
			authed.POST("/scores/:recordID", h.recordScore)
			authed.POST("/leaderboard", h.getLeaderboard)
		}
	}

	return r
}
