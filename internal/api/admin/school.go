package admin

import (
	"errors"
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
	"gorm.io/gorm"
)

func (h *Handler) createSchool(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	school := models.School{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Address: req.Address,
	}
	if err := database.CreateSchool(h.db, &school); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "school name already exists")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetSchool,
		Description: fmt.Sprintf("%s created school %s", admin.Name, school.Name),
		Success:     true,
		Summary:     school.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, school, "School created")
}

func (h *Handler) editSchool(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		ID      string  `json:"id" binding:"required"`
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	school, err := database.GetSchoolByID(h.db, req.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.Address != nil {
		school.Address = *req.Address
	}
	if err := database.UpdateSchool(h.db, school); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetSchool,
		Description: fmt.Sprintf("%s edited school %s", admin.Name, school.Name),
		Success:     true,
		Summary:     school.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, school, "School updated")
}

func (h *Handler) listSchools(c *gin.Context) {
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

	view, err := pipeline.SchoolView(req.Search)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var schools []models.School
	if err := view.Page(h.db, req.Page, req.PerPage, &schools); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	total, err := view.Count(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	util.Paged(c, view.Render(schools), util.Paging{
		TotalData:   total,
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
		TotalPage:   util.TotalPages(total, req.PerPage),
	}, "Schools retrieved")
}

func (h *Handler) deleteSchool(c *gin.Context) {
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

	school, err := database.GetSchoolByID(h.db, req.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	if _, err := database.SoftDelete(h.db, &models.School{}, school.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetSchool,
		Description: fmt.Sprintf("%s deleted school %s", admin.Name, school.Name),
		Success:     true,
		Summary:     school.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, nil, "School deleted")
}
