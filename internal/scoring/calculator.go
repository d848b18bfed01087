package scoring

import (
	"math"

	"github.com/edukita/gametrack/internal/apperr"
	"github.com/edukita/gametrack/internal/database/models"
)

// ScoreMax is the highest score any attempt can earn.
const ScoreMax = 1000

// Weighting of the three attempt metrics. The weights sum to ScoreMax so a
// perfect run at the game's top level scores exactly ScoreMax.
const (
	timeWeight  = 600.0
	retryWeight = 250.0
	lifeWeight  = 150.0

	// Lives beyond this many earn no extra bonus.
	lifeBonusCap = 5
)

// Attempt carries the metrics of one completed play-through.
type Attempt struct {
	TimeInSeconds int
	Level         int
	TryCount      int
	LifeLeftBonus int
}

// Calculate maps an attempt's metrics plus the game's configured limits to a
// bounded score. It is pure: identical inputs always produce the identical
// output.
//
// The time share decays linearly from full at 0s to nothing at the game's
// time limit. The retry share decays linearly with retries used. The life
// bonus is linear and saturates at lifeBonusCap lives. The sum is scaled by
// level/maxLevel, so higher levels dominate lower ones.
func Calculate(game *models.Game, att Attempt) (int, error) {
	if game.MaxLevel < 1 || game.MaxRetry < 1 || game.MaxTime <= 0 {
		return 0, apperr.Invalid("game", "limits must be positive")
	}
	if att.TimeInSeconds < 0 {
		return 0, apperr.Invalid("timeInSeconds", "must not be negative")
	}
	if att.Level < 1 || att.Level > game.MaxLevel {
		return 0, apperr.Invalid("level", "outside [1, maxLevel]")
	}
	if att.TryCount < 1 || att.TryCount > game.MaxRetry {
		return 0, apperr.Invalid("tryCount", "outside [1, maxRetry]")
	}
	if att.LifeLeftBonus < 0 {
		return 0, apperr.Invalid("lifeLeftBonus", "must not be negative")
	}

	timeShare := float64(game.MaxTime-att.TimeInSeconds) / float64(game.MaxTime)
	if timeShare < 0 {
		timeShare = 0
	}

	retryShare := float64(game.MaxRetry-att.TryCount+1) / float64(game.MaxRetry)

	lives := att.LifeLeftBonus
	if lives > lifeBonusCap {
		lives = lifeBonusCap
	}
	lifeShare := float64(lives) / float64(lifeBonusCap)

	levelWeight := float64(att.Level) / float64(game.MaxLevel)

	raw := levelWeight * (timeWeight*timeShare + retryWeight*retryShare + lifeWeight*lifeShare)
	return int(math.Round(raw)), nil
}
