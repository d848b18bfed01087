package admin

import (
	"net/http"

	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pipeline"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listAuditLogs(c *gin.Context) {
	var req struct {
		Target  string `json:"target"`
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

	view, err := pipeline.AuditLogView(req.Target)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var logs []models.AuditLog
	if err := view.Page(h.db, req.Page, req.PerPage, &logs); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	total, err := view.Count(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	util.Paged(c, view.Render(logs), util.Paging{
		TotalData:   total,
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
		TotalPage:   util.TotalPages(total, req.PerPage),
	}, "Audit logs retrieved")
}
