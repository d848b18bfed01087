package admin

import (
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/config"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the admin API handlers.
type Handler struct {
	cfg   *config.Config
	db    *gorm.DB
	trail *audit.Trail
}

func NewHandler(cfg *config.Config, db *gorm.DB, trail *audit.Trail) *Handler {
	return &Handler{cfg: cfg, db: db, trail: trail}
}

// actorID adapts the requesting admin's ID for an audit entry.
func actorID(id string) *string {
	return &id
}
