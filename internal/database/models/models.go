package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// IntSlice is a helper type for storing an ordered list of integers as JSON.
// Records use it for their elapsed-seconds checkpoints.
type IntSlice []int

func (s IntSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *IntSlice) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, s)
}

// DeletedAt is a plain nullable timestamp on every model below. Soft-delete
// filtering is done by an explicit pipeline stage, never by an ORM hook, so
// queries that must see deleted rows still can.

type School struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Name          string `gorm:"uniqueIndex" json:"name"`
	Address       string `json:"address"`
	StudentsCount int    `json:"students_count"`
	AdminsCount   int    `json:"admins_count"`
}

type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Name         string  `gorm:"index" json:"name"`
	Email        *string `json:"email"`
	PhoneNumber  *string `json:"phone_number"`
	Role         Role    `gorm:"index" json:"role"`
	PasswordHash string  `json:"-"`

	SchoolID *string `gorm:"index" json:"school_id"`
	School   *School `json:"school,omitempty"`
}

type Game struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Name        string `gorm:"uniqueIndex" json:"name"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MaxLevel    int    `json:"max_level"`
	MaxRetry    int    `json:"max_retry"`
	MaxTime     int    `json:"max_time"` // seconds

	AddedByID *string `json:"added_by_id"`
	AddedBy   *User   `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
}

// Record is one completed play-through of a level. Time holds elapsed-seconds
// checkpoints; the last element is the authoritative completion time.
type Record struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	UserID string `gorm:"index" json:"user_id"`
	User   *User  `json:"user,omitempty"`
	GameID string `gorm:"index" json:"game_id"`
	Game   *Game  `json:"game,omitempty"`

	Level    int      `json:"level"`
	Count    int      `json:"count"` // retries used
	LiveLeft int      `json:"live_left"`
	Time     IntSlice `gorm:"type:text" json:"time"`
}

// Score is derived from exactly one Record and never updated in place.
// GamePlayed is the 1-based ordinal of this score among the user's scores for
// the same game+level; the unique index is the backstop for the ledger's
// sequence assignment.
type Score struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	RecordID string  `gorm:"uniqueIndex" json:"record_id"`
	Record   *Record `json:"record,omitempty"`
	UserID   string  `gorm:"index:idx_score_user;uniqueIndex:idx_score_seq" json:"user_id"`
	User     *User   `json:"user,omitempty"`
	GameID   string  `gorm:"index:idx_score_game;uniqueIndex:idx_score_seq" json:"game_id"`
	Game     *Game   `json:"game,omitempty"`

	Level      int `gorm:"uniqueIndex:idx_score_seq" json:"level"`
	Value      int `json:"value"`
	GamePlayed int `gorm:"uniqueIndex:idx_score_seq" json:"game_played"`
}

// UserLevel tracks how far a user has progressed through a game's levels.
// One row per (user, game); CurrentLevel never exceeds the game's MaxLevel.
type UserLevel struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	UserID string `gorm:"uniqueIndex:idx_level_user_game" json:"user_id"`
	User   *User  `json:"user,omitempty"`
	GameID string `gorm:"uniqueIndex:idx_level_user_game" json:"game_id"`
	Game   *Game  `json:"game,omitempty"`

	CurrentLevel int `json:"current_level"`
}

type AuditLog struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Target      string `gorm:"index" json:"target"`
	Description string `json:"description"`
	Success     bool   `json:"success"`
	Summary     string `json:"summary"`

	ActorID *string `gorm:"index" json:"actor_id"`
	Actor   *User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
