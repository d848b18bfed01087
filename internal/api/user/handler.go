package user

import (
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/config"
	"github.com/edukita/gametrack/internal/pubsub"
	"github.com/edukita/gametrack/internal/scoring"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the player-facing API handlers.
type Handler struct {
	cfg    *config.Config
	db     *gorm.DB
	ledger *scoring.Ledger
	broker *pubsub.Broker
	trail  *audit.Trail
}

func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	ledger *scoring.Ledger,
	broker *pubsub.Broker,
	trail *audit.Trail,
) *Handler {
	return &Handler{
		cfg:    cfg,
		db:     db,
		ledger: ledger,
		broker: broker,
		trail:  trail,
	}
}
