package database

import (
	"fmt"
	"testing"

	"github.com/edukita/gametrack/internal/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Game{},
		&models.Record{},
		&models.Score{},
		&models.UserLevel{},
		&models.AuditLog{},
	))
	return db
}

func TestSoftDeleteReportsTransition(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{ID: uuid.NewString(), Name: "dewi", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, user))

	transitioned, err := SoftDelete(db, &models.User{}, user.ID)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// A repeated delete touches nothing.
	transitioned, err = SoftDelete(db, &models.User{}, user.ID)
	require.NoError(t, err)
	assert.False(t, transitioned)

	_, err = GetUserByID(db, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSoftDeleteMissingRow(t *testing.T) {
	db := newTestDB(t)
	transitioned, err := SoftDelete(db, &models.User{}, "no-such-id")
	require.NoError(t, err)
	assert.False(t, transitioned)
}

func TestCascadeDeleteUserIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{ID: uuid.NewString(), Name: "putra", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, user))
	game := &models.Game{ID: uuid.NewString(), Name: "maze", MaxLevel: 3, MaxRetry: 3, MaxTime: 60}
	require.NoError(t, CreateGame(db, game))

	rec := &models.Record{
		ID: uuid.NewString(), UserID: user.ID, GameID: game.ID,
		Level: 1, Count: 1, Time: models.IntSlice{10},
	}
	require.NoError(t, CreateRecord(db, rec))
	require.NoError(t, db.Create(&models.Score{
		ID: uuid.NewString(), RecordID: rec.ID, UserID: user.ID,
		GameID: game.ID, Level: 1, Value: 500, GamePlayed: 1,
	}).Error)
	require.NoError(t, db.Create(&models.AuditLog{
		ID: uuid.NewString(), Target: "SCORE", ActorID: &user.ID, Success: true,
	}).Error)
	_, err := InitUserLevel(db, user.ID, game.ID)
	require.NoError(t, err)

	// A bystander's record must survive the cascade.
	other := &models.User{ID: uuid.NewString(), Name: "bystander", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, other))
	require.NoError(t, CreateRecord(db, &models.Record{
		ID: uuid.NewString(), UserID: other.ID, GameID: game.ID,
		Level: 1, Count: 1, Time: models.IntSlice{20},
	}))

	require.NoError(t, CascadeDeleteUser(db, user.ID))
	require.NoError(t, CascadeDeleteUser(db, user.ID))

	countDeleted := func(model interface{}, where string) int64 {
		var n int64
		require.NoError(t, db.Model(model).
			Where(where+" AND deleted_at IS NOT NULL", user.ID).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, countDeleted(&models.Record{}, "user_id = ?"))
	assert.EqualValues(t, 1, countDeleted(&models.Score{}, "user_id = ?"))
	assert.EqualValues(t, 1, countDeleted(&models.UserLevel{}, "user_id = ?"))
	assert.EqualValues(t, 1, countDeleted(&models.AuditLog{}, "actor_id = ?"))

	var live int64
	require.NoError(t, db.Model(&models.Record{}).
		Where("user_id = ? AND deleted_at IS NULL", other.ID).Count(&live).Error)
	assert.EqualValues(t, 1, live)
}

func TestCascadeDeleteGame(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{ID: uuid.NewString(), Name: "sari", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, user))
	game := &models.Game{ID: uuid.NewString(), Name: "runner", MaxLevel: 3, MaxRetry: 3, MaxTime: 60}
	require.NoError(t, CreateGame(db, game))

	rec := &models.Record{
		ID: uuid.NewString(), UserID: user.ID, GameID: game.ID,
		Level: 1, Count: 1, Time: models.IntSlice{10},
	}
	require.NoError(t, CreateRecord(db, rec))
	require.NoError(t, db.Create(&models.Score{
		ID: uuid.NewString(), RecordID: rec.ID, UserID: user.ID,
		GameID: game.ID, Level: 1, Value: 400, GamePlayed: 1,
	}).Error)
	_, err := InitUserLevel(db, user.ID, game.ID)
	require.NoError(t, err)

	require.NoError(t, CascadeDeleteGame(db, game.ID))

	_, err = GetRecordByID(db, rec.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var liveScores int64
	require.NoError(t, db.Model(&models.Score{}).
		Where("game_id = ? AND deleted_at IS NULL", game.ID).Count(&liveScores).Error)
	assert.Zero(t, liveScores)

	_, err = GetUserLevel(db, user.ID, game.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInitUserLevelIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{ID: uuid.NewString(), Name: "indra", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, user))
	game := &models.Game{ID: uuid.NewString(), Name: "climber", MaxLevel: 4, MaxRetry: 3, MaxTime: 60}
	require.NoError(t, CreateGame(db, game))

	first, err := InitUserLevel(db, user.ID, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentLevel)

	again, err := InitUserLevel(db, user.ID, game.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserLevel{}).
		Where("user_id = ? AND game_id = ?", user.ID, game.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetUserLevelBeforeInit(t *testing.T) {
	db := newTestDB(t)
	_, err := GetUserLevel(db, "no-user", "no-game")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdvanceUserLevelCapsAtMaxLevel(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{ID: uuid.NewString(), Name: "lestari", Role: models.RoleUser}
	require.NoError(t, CreateUser(db, user))
	game := &models.Game{ID: uuid.NewString(), Name: "tower", MaxLevel: 3, MaxRetry: 3, MaxTime: 60}
	require.NoError(t, CreateGame(db, game))

	_, err := InitUserLevel(db, user.ID, game.ID)
	require.NoError(t, err)

	for want := 2; want <= game.MaxLevel; want++ {
		level, err := AdvanceUserLevel(db, user.ID, game.ID, game.MaxLevel)
		require.NoError(t, err)
		assert.Equal(t, want, level.CurrentLevel)
	}

	// Advancing at the top level changes nothing.
	level, err := AdvanceUserLevel(db, user.ID, game.ID, game.MaxLevel)
	require.NoError(t, err)
	assert.Equal(t, game.MaxLevel, level.CurrentLevel)
}

func TestAdvanceUserLevelBeforeInit(t *testing.T) {
	db := newTestDB(t)
	_, err := AdvanceUserLevel(db, "no-user", "no-game", 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdjustStudentCount(t *testing.T) {
	db := newTestDB(t)
	school := &models.School{ID: uuid.NewString(), Name: "Counting School"}
	require.NoError(t, CreateSchool(db, school))

	require.NoError(t, AdjustStudentCount(db, school.ID, 1))
	require.NoError(t, AdjustStudentCount(db, school.ID, 1))
	require.NoError(t, AdjustStudentCount(db, school.ID, -1))
	require.NoError(t, AdjustAdminCount(db, school.ID, 1))

	got, err := GetSchoolByID(db, school.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StudentsCount)
	assert.Equal(t, 1, got.AdminsCount)
}
