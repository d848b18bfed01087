package user

import (
	"net/http"

	"github.com/edukita/gametrack/internal/api"
	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
)

func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetString("userID")
	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if user.SchoolID != nil {
		if school, err := database.GetSchoolByID(h.db, *user.SchoolID); err == nil {
			user.School = school
		}
	}
	util.Success(c, user, "Profile retrieved")
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}

	if err := database.UpdateUser(h.db, user); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, user, "Profile updated")
}
