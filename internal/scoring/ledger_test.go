package scoring

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edukita/gametrack/internal/apperr"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pubsub"
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

	// One connection keeps sqlite's table locking out of concurrent tests.
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

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewLedger(db, audit.New(db), pubsub.New(), 0), db
}

func seedAttempt(t *testing.T, db *gorm.DB, userID string, game *models.Game, level int, samples []int) *models.Record {
	t.Helper()
	rec := &models.Record{
		ID:       uuid.NewString(),
		UserID:   userID,
		GameID:   game.ID,
		Level:    level,
		Count:    1,
		LiveLeft: 2,
		Time:     models.IntSlice(samples),
	}
	require.NoError(t, db.Create(rec).Error)
	return rec
}

func seedGame(t *testing.T, db *gorm.DB) *models.Game {
	t.Helper()
	game := &models.Game{
		ID:       uuid.NewString(),
		Name:     "maze-runner-" + uuid.NewString(),
		MaxLevel: 5,
		MaxRetry: 3,
		MaxTime:  60,
	}
	require.NoError(t, db.Create(game).Error)
	return game
}

func seedUser(t *testing.T, db *gorm.DB, schoolID *string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.NewString(),
		Name:     "player-" + uuid.NewString(),
		Role:     models.RoleUser,
		SchoolID: schoolID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRecordScorePersistsDerivedScore(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)
	rec := seedAttempt(t, db, user.ID, game, 2, []int{15, 25, 40})

	score, err := ledger.RecordScore(context.Background(), rec.ID)
	require.NoError(t, err)

	// Only the last sample counts.
	want, err := Calculate(game, Attempt{TimeInSeconds: 40, Level: 2, TryCount: 1, LifeLeftBonus: 2})
	require.NoError(t, err)
	assert.Equal(t, want, score.Value)
	assert.Equal(t, 1, score.GamePlayed)
	assert.Equal(t, rec.ID, score.RecordID)
}

func TestRecordScoreMissingRecord(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.RecordScore(context.Background(), "no-such-record")
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRecordScoreSoftDeletedRecord(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)
	rec := seedAttempt(t, db, user.ID, game, 1, []int{10})

	now := time.Now()
	require.NoError(t, db.Model(&models.Record{}).Where("id = ?", rec.ID).
		UpdateColumn("deleted_at", &now).Error)

	_, err := ledger.RecordScore(context.Background(), rec.ID)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRecordScoreEmptyTimeSamples(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)
	rec := seedAttempt(t, db, user.ID, game, 1, []int{})

	_, err := ledger.RecordScore(context.Background(), rec.ID)
	var invalid *apperr.ValidationError
	require.ErrorAs(t, err, &invalid)

	var count int64
	require.NoError(t, ledger.db.Model(&models.Score{}).Count(&count).Error)
	assert.Zero(t, count, "no score may be persisted for an invalid attempt")
}

func TestRecordScoreIdempotentForSameAttempt(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)
	rec := seedAttempt(t, db, user.ID, game, 1, []int{10})

	first, err := ledger.RecordScore(context.Background(), rec.ID)
	require.NoError(t, err)
	second, err := ledger.RecordScore(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Score{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordScoreSequencesPerKey(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)

	for want := 1; want <= 4; want++ {
		rec := seedAttempt(t, db, user.ID, game, 3, []int{10 + want})
		score, err := ledger.RecordScore(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, want, score.GamePlayed)
	}

	// A different level starts its own sequence.
	rec := seedAttempt(t, db, user.ID, game, 4, []int{12})
	score, err := ledger.RecordScore(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, score.GamePlayed)
}

func TestRecordScoreConcurrentSameRecord(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)
	rec := seedAttempt(t, db, user.ID, game, 1, []int{15})

	const n = 16
	var wg sync.WaitGroup
	results := make(chan *models.Score, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			score, err := ledger.RecordScore(context.Background(), rec.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- score
		}()
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		t.Fatalf("concurrent RecordScore of one record failed: %v", err)
	}

	// Every caller must see the one persisted score.
	var firstID string
	for score := range results {
		if firstID == "" {
			firstID = score.ID
		}
		assert.Equal(t, firstID, score.ID)
	}

	var count int64
	require.NoError(t, db.Model(&models.Score{}).
		Where("record_id = ?", rec.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordScoreConcurrentAssignsDenseSequence(t *testing.T) {
	ledger, db := newTestLedger(t)
	game := seedGame(t, db)
	user := seedUser(t, db, nil)

	const n = 10
	records := make([]*models.Record, n)
	for i := range records {
		records[i] = seedAttempt(t, db, user.ID, game, 2, []int{20 + i})
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, rec := range records {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := ledger.RecordScore(context.Background(), id); err != nil {
				errs <- err
			}
		}(rec.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent RecordScore failed: %v", err)
	}

	var scores []models.Score
	require.NoError(t, db.Where("user_id = ? AND game_id = ? AND level = ?", user.ID, game.ID, 2).
		Order("game_played asc").Find(&scores).Error)
	require.Len(t, scores, n)
	for i, s := range scores {
		assert.Equal(t, i+1, s.GamePlayed, "gamePlayed values must be dense with no gaps or duplicates")
	}
}
