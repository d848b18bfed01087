// Package audit writes the audit trail. Writes are fire-and-forget: a failed
// write is logged and dropped, it never fails the operation being audited.
package audit

import (
	"time"

	"github.com/edukita/gametrack/internal/database/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	TargetScore   = "SCORE"
	TargetStudent = "STUDENT"
	TargetSchool  = "SCHOOL"
	TargetGame    = "GAME"
	TargetAuth    = "AUTH"
)

type Entry struct {
	Target      string
	Description string
	Success     bool
	Summary     string
	ActorID     *string
}

type Trail struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Trail {
	return &Trail{db: db}
}

// Log persists an entry asynchronously.
func (t *Trail) Log(e Entry) {
	row := models.AuditLog{
		ID:          uuid.NewString(),
		Target:      e.Target,
		Description: e.Description,
		Success:     e.Success,
		Summary:     e.Summary,
		ActorID:     e.ActorID,
		CreatedAt:   time.Now(),
	}
	go func() {
		if err := t.db.Create(&row).Error; err != nil {
			zap.S().Warnf("audit write failed for target %s: %v", e.Target, err)
		}
	}()
}
