package user

import (
	"errors"
	"net/http"

	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type levelRequest struct {
	GameID string `json:"game_id" binding:"required"`
}

// initLevel starts the caller's level progress for a game at level 1.
// Calling it again for the same game returns the existing progress.
func (h *Handler) initLevel(c *gin.Context) {
	userID := c.GetString("userID")

	var req levelRequest
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

	level, err := database.InitUserLevel(h.db, userID, game.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, level, "Level initialized")
}

func (h *Handler) getLevel(c *gin.Context) {
	userID := c.GetString("userID")

	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	level, err := database.GetUserLevel(h.db, userID, req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "level progress not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, level, "Level retrieved")
}

// advanceLevel moves the caller's progress up one level, capped at the game's
// top level.
func (h *Handler) advanceLevel(c *gin.Context) {
	userID := c.GetString("userID")

	var req levelRequest
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

	level, err := database.AdvanceUserLevel(h.db, userID, game.ID, game.MaxLevel)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "level progress not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, level, "Level updated")
}
