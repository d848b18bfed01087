package user

import (
	"net/http"
	"strconv"

	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pipeline"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listGames(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	view, err := pipeline.GameView(search)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var games []models.Game
	if err := view.Page(h.db, page, perPage, &games); err != nil {
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
		PerPage:     perPage,
		CurrentPage: page,
		TotalPage:   util.TotalPages(total, perPage),
	}, "Games retrieved")
}
