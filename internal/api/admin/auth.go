package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/auth"
	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	user, err := database.GetUserByName(h.db, req.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, "invalid name or password")
		} else {
			util.Error(c, http.StatusInternalServerError, "database error")
		}
		return
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleSuperAdmin {
		util.Error(c, http.StatusForbidden, "not an admin account")
		return
	}

	if user.PasswordHash == "" || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, "invalid name or password")
		return
	}

	jwtToken, err := auth.GenerateJWT(user.ID, user.Role, h.cfg.Auth.JWT.Secret, h.cfg.Auth.JWT.ExpireHours)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to generate JWT")
		return
	}

	h.trail.Log(audit.Entry{
		Target:      audit.TargetAuth,
		Description: fmt.Sprintf("%s logged in to the admin panel", user.Name),
		Success:     true,
		Summary:     user.ID,
		ActorID:     actorID(user.ID),
	})
	util.Success(c, gin.H{"token": jwtToken, "role": user.Role}, "Login successful")
}
