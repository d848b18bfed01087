package scoring

import (
	"context"
	"errors"
	"sort"

	"github.com/edukita/gametrack/internal/apperr"
	"github.com/edukita/gametrack/internal/database/models"
	"github.com/edukita/gametrack/internal/pipeline"
	"gorm.io/gorm"
)

// LeaderboardEntry is one ranked row of a school's leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Value         int    `json:"value"`
	Level         int    `json:"level"`
	GamePlayed    int    `json:"game_played"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// Leaderboard is the full within-school ranking for one game, no pagination.
type Leaderboard struct {
	Game    *models.Game       `json:"game"`
	Entries []LeaderboardEntry `json:"entries"`
}

// Leaderboard ranks the requesting user's schoolmates by their best single
// score on the game, ties broken by earliest gamePlayed then user ID. The
// requester's own entry, if any, is flagged IsCurrentUser.
func (l *Ledger) Leaderboard(ctx context.Context, gameID, requestingUserID string) (*Leaderboard, error) {
	db := l.db.WithContext(ctx)

	var game models.Game
	err := db.Where("id = ? AND deleted_at IS NULL", gameID).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("game", gameID)
		}
		return nil, err
	}

	var user models.User
	err = db.Where("id = ? AND deleted_at IS NULL", requestingUserID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", requestingUserID)
		}
		return nil, err
	}

	board := &Leaderboard{Game: &game, Entries: []LeaderboardEntry{}}
	if user.SchoolID == nil {
		// A user without a school has no leaderboard to stand in.
		return board, nil
	}

	view, err := pipeline.SchoolScoreView(gameID, *user.SchoolID)
	if err != nil {
		return nil, err
	}
	var scores []models.Score
	if err := view.Page(db, 0, 0, &scores); err != nil {
		return nil, err
	}

	// Best single score per user; on equal value the earlier gamePlayed wins.
	best := make(map[string]models.Score)
	for _, s := range scores {
		cur, ok := best[s.UserID]
		if !ok || s.Value > cur.Value || (s.Value == cur.Value && s.GamePlayed < cur.GamePlayed) {
			best[s.UserID] = s
		}
	}

	ranked := make([]models.Score, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		if ranked[i].GamePlayed != ranked[j].GamePlayed {
			return ranked[i].GamePlayed < ranked[j].GamePlayed
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	for i, s := range ranked {
		name := ""
		if s.User != nil {
			name = s.User.Name
		}
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:          i + 1,
			UserID:        s.UserID,
			Name:          name,
			Value:         s.Value,
			Level:         s.Level,
			GamePlayed:    s.GamePlayed,
			IsCurrentUser: s.UserID == requestingUserID,
		})
	}
	return board, nil
}
