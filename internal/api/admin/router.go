package admin

import (
	"github.com/edukita/gametrack/internal/api"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/config"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewAdminRouter creates and configures the admin Gin engine.
func NewAdminRouter(cfg *config.Config, db *gorm.DB, trail *audit.Trail) *gin.Engine {
	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, trail)

	v1 := r.Group("/api/v1/admin")
	{
		v1.POST("/auth/login", h.login)

		authed := v1.Group("/")
		authed.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
		authed.Use(api.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		{
			schools := authed.Group("/schools")
			{
				schools.POST("", h.createSchool)
				schools.PUT("", h.editSchool)
				schools.POST("/find", h.listSchools)
				schools.DELETE("", h.deleteSchool)
			}

			students := authed.Group("/students")
			{
				students.POST("", h.addStudent)
				students.PUT("", h.editStudent)
				students.POST("/find", h.listStudents)
				students.GET("/:id", h.detailStudent)
				students.DELETE("", h.deleteStudent)
			}

			games := authed.Group("/games")
			{
				games.POST("", h.createGame)
				games.PUT("", h.editGame)
				games.POST("/find", h.listGames)
				games.DELETE("", h.deleteGame)
			}

			authed.POST("/logs/find", h.listAuditLogs)
		}
	}

	return r
}
