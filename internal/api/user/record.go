package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// createRecord stores the telemetry of one completed play-through. The score
// is not computed here; the client calls the score endpoint with the record
// ID afterwards.
func (h *Handler) createRecord(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		GameID   string `json:"game_id" binding:"required"`
		Level    int    `json:"level" binding:"required"`
		Count    int    `json:"count" binding:"required"`
		LiveLeft int    `json:"live_left"`
		Time     []int  `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	game, err := database.GetGameByID(h.db, req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "game not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	if req.Level < 1 || req.Level > game.MaxLevel {
		util.Error(c, http.StatusBadRequest, fmt.Errorf("level must be within [1, %d]", game.MaxLevel))
		return
	}
	if req.Count < 1 || req.Count > game.MaxRetry {
		util.Error(c, http.StatusBadRequest, fmt.Errorf("count must be within [1, %d]", game.MaxRetry))
		return
	}
	if req.LiveLeft < 0 {
		util.Error(c, http.StatusBadRequest, "live_left must not be negative")
		return
	}

	rec := models.Record{
		ID:       uuid.NewString(),
		UserID:   userID,
		GameID:   game.ID,
		Level:    req.Level,
		Count:    req.Count,
		LiveLeft: req.LiveLeft,
		Time:     models.IntSlice(req.Time),
	}
	if err := database.CreateRecord(h.db, &rec); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, gin.H{"record_id": rec.ID}, "Record created")
}
