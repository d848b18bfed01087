package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edukita/gametrack/internal/apperr"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pubsub"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultMaxRetries = 3

// Ledger persists one score per attempt and assigns the per-(user, game,
// level) gamePlayed sequence. The count-then-create sequence is serialized
// per key by a process-scoped mutex; the unique index on
// (user_id, game_id, level, game_played) is the cross-process backstop, with
// a bounded retry on collision.
type Ledger struct {
	db         *gorm.DB
	trail      *audit.Trail
	broker     *pubsub.Broker
	maxRetries int
	seq        *keyedMutex
}

func NewLedger(db *gorm.DB, trail *audit.Trail, broker *pubsub.Broker, maxRetries int) *Ledger {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Ledger{
		db:         db,
		trail:      trail,
		broker:     broker,
		maxRetries: maxRetries,
		seq:        newKeyedMutex(),
	}
}

// RecordScore computes and persists the score of one completed attempt.
// Recording the same attempt twice returns the already-persisted score.
func (l *Ledger) RecordScore(ctx context.Context, recordID string) (*models.Score, error) {
	db := l.db.WithContext(ctx)

	var rec models.Record
	err := db.Preload("Game").Where("id = ? AND deleted_at IS NULL", recordID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("record", recordID)
		}
		return nil, err
	}
	if rec.Game == nil || rec.Game.DeletedAt != nil {
		return nil, apperr.NotFound("game", rec.GameID)
	}

	if len(rec.Time) == 0 {
		return nil, apperr.Invalid("time", "attempt has no time samples")
	}

	// The last sample is the authoritative completion time; earlier
	// elements are intermediate checkpoints.
	value, err := Calculate(rec.Game, Attempt{
		TimeInSeconds: rec.Time[len(rec.Time)-1],
		Level:         rec.Level,
		TryCount:      rec.Count,
		LifeLeftBonus: rec.LiveLeft,
	})
	if err != nil {
		l.trail.Log(audit.Entry{
			Target:      audit.TargetScore,
			Description: "failed to calculate score",
			Success:     false,
			Summary:     recordID,
			ActorID:     &rec.UserID,
		})
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%d", rec.UserID, rec.GameID, rec.Level)
	unlock := l.seq.Lock(key)
	defer unlock()

	// Retries of an already-recorded attempt are a no-op. Checked under the
	// key's lock so two in-flight submissions of the same record cannot both
	// miss it.
	var existing models.Score
	err = db.Where("record_id = ? AND deleted_at IS NULL", recordID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var score *models.Score
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		score, err = l.insertScore(db, &rec, value, attempt > 0)
		if err == nil {
			break
		}
		if !isDuplicate(err) {
			return nil, err
		}
		// The collision may be this record's own score, written by another
		// process between our existence check and the insert. Return that
		// row instead of burning retries on the sequence.
		var winner models.Score
		qerr := db.Where("record_id = ? AND deleted_at IS NULL", recordID).First(&winner).Error
		if qerr == nil {
			return &winner, nil
		}
		if !errors.Is(qerr, gorm.ErrRecordNotFound) {
			return nil, qerr
		}
		// A writer in another process took the gamePlayed slot; re-derive
		// and retry.
	}
	if err != nil {
		return nil, apperr.Conflict(key)
	}

	l.trail.Log(audit.Entry{
		Target:      audit.TargetScore,
		Description: "score calculated",
		Success:     true,
		Summary:     recordID,
		ActorID:     &rec.UserID,
	})
	l.broker.PublishScore(pubsub.ScoreEvent{
		GameID:     rec.GameID,
		UserID:     rec.UserID,
		Level:      rec.Level,
		Value:      score.Value,
		GamePlayed: score.GamePlayed,
	})
	return score, nil
}

// insertScore counts the key's existing scores and creates the next one in a
// single transaction. After a collision the sequence is re-derived from the
// highest persisted gamePlayed, soft-deleted rows included, because the
// unique index still holds their slots.
func (l *Ledger) insertScore(db *gorm.DB, rec *models.Record, value int, afterConflict bool) (*models.Score, error) {
	var created models.Score
	err := db.Transaction(func(tx *gorm.DB) error {
		var next int
		if afterConflict {
			var max int
			if err := tx.Model(&models.Score{}).
				Select("COALESCE(MAX(game_played), 0)").
				Where("user_id = ? AND game_id = ? AND level = ?", rec.UserID, rec.GameID, rec.Level).
				Scan(&max).Error; err != nil {
				return err
			}
			next = max + 1
		} else {
			var prior int64
			if err := tx.Model(&models.Score{}).
				Where("user_id = ? AND game_id = ? AND level = ? AND deleted_at IS NULL", rec.UserID, rec.GameID, rec.Level).
				Count(&prior).Error; err != nil {
				return err
			}
			next = int(prior) + 1
		}

		created = models.Score{
			ID:         uuid.NewString(),
			RecordID:   rec.ID,
			UserID:     rec.UserID,
			GameID:     rec.GameID,
			Level:      rec.Level,
			Value:      value,
			GamePlayed: next,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
