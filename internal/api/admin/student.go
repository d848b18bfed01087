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

// requester loads the calling admin. ADMIN-role callers are scoped to their
// own school; SUPER_ADMIN sees everything.
func (h *Handler) requester(c *gin.Context) (*models.User, error) {
	return database.GetUserByID(h.db, c.GetString("userID"))
}

func (h *Handler) addStudent(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
		SchoolID    *string `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	schoolID := req.SchoolID
	if schoolID == nil {
		schoolID = admin.SchoolID
	}
	if schoolID == nil {
		util.Error(c, http.StatusBadRequest, "school_id is required")
		return
	}
	school, err := database.GetSchoolByID(h.db, *schoolID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var existing models.User
	err = h.db.Where("role = ? AND name = ? AND school_id = ? AND deleted_at IS NULL",
		models.RoleUser, req.Name, school.ID).First(&existing).Error
	if err == nil {
		util.Error(c, http.StatusBadRequest, "student already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	student := models.User{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleUser,
		SchoolID:    &school.ID,
	}
	if err := database.CreateUser(h.db, &student); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	if err := database.AdjustStudentCount(h.db, school.ID, 1); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetStudent,
		Description: fmt.Sprintf("%s added student %s", admin.Name, student.Name),
		Success:     true,
		Summary:     student.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, student, "Student added")
}

func (h *Handler) editStudent(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		ID          string  `json:"id" binding:"required"`
		Name        *string `json:"name"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
		SchoolID    *string `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	student, err := database.GetUserByID(h.db, req.ID)
	if err != nil || student.Role != models.RoleUser {
		util.Error(c, http.StatusNotFound, "student not found")
		return
	}
	if admin.Role == models.RoleAdmin && admin.SchoolID != nil &&
		(student.SchoolID == nil || *student.SchoolID != *admin.SchoolID) {
		util.Error(c, http.StatusMethodNotAllowed, "you can't edit a student from another school")
		return
	}

	if req.Name != nil {
		var dup models.User
		err = h.db.Where("role = ? AND name = ? AND school_id = ? AND id <> ? AND deleted_at IS NULL",
			models.RoleUser, *req.Name, student.SchoolID, student.ID).First(&dup).Error
		if err == nil {
			util.Error(c, http.StatusBadRequest, "student name already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusInternalServerError, err)
			return
		}
		student.Name = *req.Name
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	if req.PhoneNumber != nil {
		student.PhoneNumber = req.PhoneNumber
	}
	if req.SchoolID != nil && (student.SchoolID == nil || *req.SchoolID != *student.SchoolID) {
		school, err := database.GetSchoolByID(h.db, *req.SchoolID)
		if err != nil {
			api.Fail(c, err)
			return
		}
		if student.SchoolID != nil {
			if err := database.AdjustStudentCount(h.db, *student.SchoolID, -1); err != nil {
				util.Error(c, http.StatusInternalServerError, err)
				return
			}
		}
		if err := database.AdjustStudentCount(h.db, school.ID, 1); err != nil {
			util.Error(c, http.StatusInternalServerError, err)
			return
		}
		student.SchoolID = &school.ID
	}

	if err := database.UpdateUser(h.db, student); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetStudent,
		Description: fmt.Sprintf("%s edited student %s", admin.Name, student.Name),
		Success:     true,
		Summary:     student.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, student, "Student updated")
}

func (h *Handler) listStudents(c *gin.Context) {
	admin, err := h.requester(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

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

	// ADMIN-role callers only see their own school's students.
	var schoolScope *string
	if admin.Role == models.RoleAdmin {
		schoolScope = admin.SchoolID
	}

	view, err := pipeline.StudentView(req.Search, schoolScope)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var students []models.User
	if err := view.Page(h.db, req.Page, req.PerPage, &students); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	total, err := view.Count(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetStudent,
		Description: fmt.Sprintf("%s listed students", admin.Name),
		Success:     true,
		Summary:     req.Search,
		ActorID:     actorID(admin.ID),
	})
	util.Paged(c, view.Render(students), util.Paging{
		TotalData:   total,
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
		TotalPage:   util.TotalPages(total, req.PerPage),
	}, "Students retrieved")
}

func (h *Handler) detailStudent(c *gin.Context) {
	studentID := c.Param("id")

	var student models.User
	err := h.db.Preload("School", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("deleted_at IS NULL")
	}).Where("id = ? AND role = ? AND deleted_at IS NULL", studentID, models.RoleUser).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "student not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, student, "Student retrieved")
}

func (h *Handler) deleteStudent(c *gin.Context) {
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

	student, err := database.GetUserByID(h.db, req.ID)
	if err != nil || student.Role != models.RoleUser {
		util.Error(c, http.StatusNotFound, "student not found")
		return
	}
	if admin.Role == models.RoleAdmin && admin.SchoolID != nil &&
		(student.SchoolID == nil || *student.SchoolID != *admin.SchoolID) {
		util.Error(c, http.StatusMethodNotAllowed, "you can't delete a student from another school")
		return
	}

	deleted, err := database.SoftDelete(h.db, &models.User{}, student.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	// The counter only moves when this call actually performed the delete,
	// so replays cannot drive it negative.
	if deleted && student.SchoolID != nil {
		if err := database.AdjustStudentCount(h.db, *student.SchoolID, -1); err != nil {
			util.Error(c, http.StatusInternalServerError, err)
			return
		}
	}
	if err := database.CascadeDeleteUser(h.db, student.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetStudent,
		Description: fmt.Sprintf("%s deleted student %s", admin.Name, student.Name),
		Success:     true,
		Summary:     student.ID,
		ActorID:     actorID(admin.ID),
	})
	util.Success(c, nil, "Student deleted")
}
