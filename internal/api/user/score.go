package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edukita/gametrack/internal/api"
	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) recordScore(c *gin.Context) {
	userID := c.GetString("userID")
	recordID := c.Param("recordID")

	rec, err := database.GetRecordByID(h.db, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "record not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	if rec.UserID != userID {
		util.Error(c, http.StatusForbidden, fmt.Errorf("you can only score your own attempts"))
		return
	}

	score, err := h.ledger.RecordScore(c.Request.Context(), recordID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	util.Success(c, score, "Score recorded")
}

func (h *Handler) getLeaderboard(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		GameID string `json:"game_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	board, err := h.ledger.Leaderboard(c.Request.Context(), req.GameID, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	util.Success(c, board, "Leaderboard retrieved")
}
