package database

import (
	"errors"
	"time"

	"github.com/edukita/gametrack/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reads here exclude soft-deleted rows explicitly; listing endpoints go
// through the pipeline composer instead, which injects the same filter as a
// mandatory first stage.

// User CRUD
func CreateUser(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ? AND deleted_at IS NULL", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByName(db *gorm.DB, name string) (*models.User, error) {
	var user models.User
	if err := db.Where("name = ? AND deleted_at IS NULL", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUser(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

// School CRUD
func CreateSchool(db *gorm.DB, school *models.School) error {
	return db.Create(school).Error
}

func GetSchoolByID(db *gorm.DB, id string) (*models.School, error) {
	var school models.School
	if err := db.Where("id = ? AND deleted_at IS NULL", id).First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func UpdateSchool(db *gorm.DB, school *models.School) error {
	return db.Save(school).Error
}

// AdjustStudentCount moves a school's denormalized student counter by delta
// as a database-level atomic increment, never a read-modify-write.
func AdjustStudentCount(db *gorm.DB, schoolID string, delta int) error {
	return db.Model(&models.School{}).Where("id = ?", schoolID).
		UpdateColumn("students_count", gorm.Expr("students_count + ?", delta)).Error
}

func AdjustAdminCount(db *gorm.DB, schoolID string, delta int) error {
	return db.Model(&models.School{}).Where("id = ?", schoolID).
		UpdateColumn("admins_count", gorm.Expr("admins_count + ?", delta)).Error
}

// Game CRUD
func CreateGame(db *gorm.DB, game *models.Game) error {
	return db.Create(game).Error
}

func GetGameByID(db *gorm.DB, id string) (*models.Game, error) {
	var game models.Game
	if err := db.Where("id = ? AND deleted_at IS NULL", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func UpdateGame(db *gorm.DB, game *models.Game) error {
	return db.Save(game).Error
}

// Record CRUD
func CreateRecord(db *gorm.DB, rec *models.Record) error {
	return db.Create(rec).Error
}

func GetRecordByID(db *gorm.DB, id string) (*models.Record, error) {
	var rec models.Record
	if err := db.Preload("Game").Where("id = ? AND deleted_at IS NULL", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Level progress

// InitUserLevel starts a user's level progress for a game at level 1. An
// already-initialized progress row is returned untouched, so replays of the
// init call are harmless.
func InitUserLevel(db *gorm.DB, userID, gameID string) (*models.UserLevel, error) {
	existing, err := GetUserLevel(db, userID, gameID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	level := models.UserLevel{
		ID:           uuid.NewString(),
		UserID:       userID,
		GameID:       gameID,
		CurrentLevel: 1,
	}
	if err := db.Create(&level).Error; err != nil {
		// Another writer may have initialized the row first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return GetUserLevel(db, userID, gameID)
		}
		return nil, err
	}
	return &level, nil
}

func GetUserLevel(db *gorm.DB, userID, gameID string) (*models.UserLevel, error) {
	var level models.UserLevel
	err := db.Where("user_id = ? AND game_id = ? AND deleted_at IS NULL", userID, gameID).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// AdvanceUserLevel moves a user's progress up one level, capped at the game's
// top level. Advancing at the cap returns the row unchanged.
func AdvanceUserLevel(db *gorm.DB, userID, gameID string, maxLevel int) (*models.UserLevel, error) {
	level, err := GetUserLevel(db, userID, gameID)
	if err != nil {
		return nil, err
	}
	if level.CurrentLevel >= maxLevel {
		return level, nil
	}
	level.CurrentLevel++
	if err := db.Save(level).Error; err != nil {
		return nil, err
	}
	return level, nil
}

// Soft delete and cascade

// SoftDelete marks one row deleted and reports whether the row transitioned.
// Already-deleted rows are untouched, so repeating a delete is a no-op and
// callers can gate counter updates on the returned flag.
func SoftDelete(db *gorm.DB, model interface{}, id string) (bool, error) {
	now := time.Now()
	res := db.Model(model).Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("deleted_at", &now)
	return res.RowsAffected > 0, res.Error
}

// CascadeDeleteUser soft-deletes a user's dependent documents: records,
// scores, level progress and audit entries. Each table is one guarded UPDATE, so a crashed
// cascade can simply be re-run; re-marking already-deleted rows changes
// nothing.
func CascadeDeleteUser(db *gorm.DB, userID string) error {
	now := time.Now()
	if err := db.Model(&models.Record{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		UpdateColumn("deleted_at", &now).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Score{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		UpdateColumn("deleted_at", &now).Error; err != nil {
		return err
	}
	if err := db.Model(&models.UserLevel{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		UpdateColumn("deleted_at", &now).Error; err != nil {
		return err
	}
	return db.Model(&models.AuditLog{}).
		Where("actor_id = ? AND deleted_at IS NULL", userID).
		UpdateColumn("deleted_at", &now).Error
}

// CascadeDeleteGame soft-deletes a game's records, scores and level progress.
func CascadeDeleteGame(db *gorm.DB, gameID string) error {
	now := time.Now()
	if err := db.Model(&models.Record{}).
		Where("game_id = ? AND deleted_at IS NULL", gameID).
		UpdateColumn("deleted_at", &now).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Score{}).
		Where("game_id = ? AND deleted_at IS NULL", gameID).
		UpdateColumn("deleted_at", &now).Error; err != nil {
		return err
	}
	return db.Model(&models.UserLevel{}).
		Where("game_id = ? AND deleted_at IS NULL", gameID).
		UpdateColumn("deleted_at", &now).Error
}
