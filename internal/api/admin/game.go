package admin

import (
	"fmt"
	"net/http"

	"github.com/edukita/gametrack/internal/api"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pipeline"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) createGame(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Category    string `json:"category"`
		MaxLevel    int    `json:"max_level" binding:"required"`
		MaxRetry    int    `json:"max_retry" binding:"required"`
		MaxTime     int    `json:"max_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if req.MaxLevel < 1 || req.MaxRetry < 1 || req.MaxTime <= 0 {
		util.Error(c, http.StatusBadRequest, "max_level, max_retry and max_time must be positive")
		return
	}

	game := models.Game{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Author:      req.Author,
		Description: req.Description,
		Category:    req.Category,
		MaxLevel:    req.MaxLevel,
		MaxRetry:    req.MaxRetry,
		MaxTime:     req.MaxTime,
		AddedByID:   actorID(admin.ID),
	}
	if err := database.CreateGame(h.db, &game); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetGame,
		Description: fmt.Sprintf("%s created game %s", admin.Name, game.Name),
		Success:     true,
		Summary:     game.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, game, "Game created")
}

func (h *Handler) editGame(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		ID          string  `json:"id" binding:"required"`
		Name        *string `json:"name"`
		Author      *string `json:"author"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		MaxLevel    *int    `json:"max_level"`
		MaxRetry    *int    `json:"max_retry"`
		MaxTime     *int    `json:"max_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	game, err := database.GetGameByID(h.db, req.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	if req.Name != nil {
		game.Name = *req.Name
	}
	if req.Author != nil {
		game.Author = *req.Author
	}
	if req.Description != nil {
		game.Description = *req.Description
	}
	if req.Category != nil {
		game.Category = *req.Category
	}
	if req.MaxLevel != nil {
		if *req.MaxLevel < 1 {
			util.Error(c, http.StatusBadRequest, "max_level must be at least 1")
			return
		}
		game.MaxLevel = *req.MaxLevel
	}
	if req.MaxRetry != nil {
		if *req.MaxRetry < 1 {
			util.Error(c, http.StatusBadRequest, "max_retry must be at least 1")
			return
		}
		game.MaxRetry = *req.MaxRetry
	}
	if req.MaxTime != nil {
		if *req.MaxTime <= 0 {
			util.Error(c, http.StatusBadRequest, "max_time must be positive")
			return
		}
		game.MaxTime = *req.MaxTime
	}

	if err := database.UpdateGame(h.db, game); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetGame,
		Description: fmt.Sprintf("%s edited game %s", admin.Name, game.Name),
		Success:     true,
		Summary:     game.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, game, "Game updated")
}

func (h *Handler) listGames(c *gin.Context) {
	var req struct {
		Search  string `json:"search"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 10
	}

	view, err := pipeline.GameView(req.Search)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var games []models.Game
	if err := view.Page(h.db, req.Page, req.PerPage, &games); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	total, err := view.Count(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	util.Paged(c, view.Render(games), util.Paging{
		TotalData:   total,
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
		TotalPage:   util.TotalPages(total, req.PerPage),
	}, "Games retrieved")
}

func (h *Handler) deleteGame(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	game, err := database.GetGameByID(h.db, req.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	if _, err := database.SoftDelete(h.db, &models.Game{}, game.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	if err := database.CascadeDeleteGame(h.db, game.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetGame,
		Description: fmt.Sprintf("%s deleted game %s", admin.Name, game.Name),
		Success:     true,
		Summary:     game.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, nil, "Game deleted")
}
