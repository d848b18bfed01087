package pipeline

import (
	"github.com/edukita/gametrack/internal/database/models"
)

// DefaultDateLayout is how listing responses present timestamps.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Users is the base table behind student and admin listings.
var Users = &Table{
	Name:  "users",
	Model: &models.User{},
	PK:    "users.id",
	Relations: map[string]Relation{
		"school": {
			Assoc:      "School",
			Table:      "schools",
			JoinSQL:    "LEFT JOIN schools ON schools.id = users.school_id AND schools.deleted_at IS NULL",
			SoftDelete: true,
		},
	},
	Fields: map[string]string{
		"name":         "users.name",
		"email":        "users.email",
		"phone_number": "users.phone_number",
		"role":         "users.role",
		"school_id":    "users.school_id",
		"created_at":   "users.created_at",
		"school.name":  "schools.name",
	},
}

var Schools = &Table{
	Name:      "schools",
	Model:     &models.School{},
	PK:        "schools.id",
	Relations: map[string]Relation{},
	Fields: map[string]string{
		"name":       "schools.name",
		"address":    "schools.address",
		"created_at": "schools.created_at",
	},
}

var Games = &Table{
	Name:      "games",
	Model:     &models.Game{},
	PK:        "games.id",
	Relations: map[string]Relation{
		"added_by": {
			Assoc:      "AddedBy",
			Table:      "users",
			JoinSQL:    "LEFT JOIN users ON users.id = games.added_by_id AND users.deleted_at IS NULL",
			SoftDelete: true,
		},
	},
	Fields: map[string]string{
		"name":       "games.name",
		"author":     "games.author",
		"category":   "games.category",
		"created_at": "games.created_at",
	},
}

var Scores = &Table{
	Name:  "scores",
	Model: &models.Score{},
	PK:    "scores.id",
	Relations: map[string]Relation{
		"user": {
			Assoc:      "User",
			Table:      "users",
			JoinSQL:    "LEFT JOIN users ON users.id = scores.user_id AND users.deleted_at IS NULL",
			SoftDelete: true,
		},
		"game": {
			Assoc:      "Game",
			Table:      "games",
			JoinSQL:    "LEFT JOIN games ON games.id = scores.game_id AND games.deleted_at IS NULL",
			SoftDelete: true,
		},
	},
	Fields: map[string]string{
		"value":          "scores.value",
		"level":          "scores.level",
		"game_played":    "scores.game_played",
		"user_id":        "scores.user_id",
		"game_id":        "scores.game_id",
		"created_at":     "scores.created_at",
		"user.school_id": "users.school_id",
		"user.name":      "users.name",
	},
}

var AuditLogs = &Table{
	Name:  "audit_logs",
	Model: &models.AuditLog{},
	PK:    "audit_logs.id",
	Relations: map[string]Relation{
		"actor": {
			Assoc:      "Actor",
			Table:      "users",
			JoinSQL:    "LEFT JOIN users ON users.id = audit_logs.actor_id AND users.deleted_at IS NULL",
			SoftDelete: true,
		},
	},
	Fields: map[string]string{
		"target":      "audit_logs.target",
		"success":     "audit_logs.success",
		"description": "audit_logs.description",
		"created_at":  "audit_logs.created_at",
	},
}

// StudentView lists USER-role accounts with their school hydrated, optionally
// narrowed to one school and a free-text search over name, email, phone and
// school name. Newest first.
func StudentView(search string, schoolID *string) (*View, error) {
	match := And{Eq{Field: "role", Value: models.RoleUser}}
	if search != "" {
		match = append(match, Or{
			Contains{Field: "name", Value: search},
			Contains{Field: "email", Value: search},
			Contains{Field: "phone_number", Value: search},
			Contains{Field: "school.name", Value: search},
		})
	}
	if schoolID != nil {
		match = append(match, Eq{Field: "school_id", Value: *schoolID})
	}
	return Compose(Users,
		WithJoin("school"),
		WithMatch(match),
		WithSort("created_at", true),
		WithDateFormat(DefaultDateLayout),
	)
}

// AdminView lists ADMIN-role accounts, same shape as StudentView.
func AdminView(search string, schoolID *string) (*View, error) {
	match := And{Eq{Field: "role", Value: models.RoleAdmin}}
	if search != "" {
		match = append(match, Or{
			Contains{Field: "name", Value: search},
			Contains{Field: "email", Value: search},
			Contains{Field: "school.name", Value: search},
		})
	}
	if schoolID != nil {
		match = append(match, Eq{Field: "school_id", Value: *schoolID})
	}
	return Compose(Users,
		WithJoin("school"),
		WithMatch(match),
		WithSort("created_at", true),
		WithDateFormat(DefaultDateLayout),
	)
}

// SchoolView lists schools with a free-text search over name and address.
func SchoolView(search string) (*View, error) {
	opts := []Option{
		WithSort("created_at", true),
		WithDateFormat(DefaultDateLayout),
	}
	if search != "" {
		opts = append(opts, WithMatch(Or{
			Contains{Field: "name", Value: search},
			Contains{Field: "address", Value: search},
		}))
	}
	return Compose(Schools, opts...)
}

// GameView lists games with their creator hydrated.
func GameView(search string) (*View, error) {
	opts := []Option{
		WithJoin("added_by"),
		WithSort("created_at", true),
		WithDateFormat(DefaultDateLayout),
	}
	if search != "" {
		opts = append(opts, WithMatch(Or{
			Contains{Field: "name", Value: search},
			Contains{Field: "author", Value: search},
			Contains{Field: "category", Value: search},
		}))
	}
	return Compose(Games, opts...)
}

// AuditLogView lists audit entries, newest first.
func AuditLogView(target string) (*View, error) {
	opts := []Option{
		WithJoin("actor"),
		WithSort("created_at", true),
		WithDateFormat(DefaultDateLayout),
	}
	if target != "" {
		opts = append(opts, WithMatch(Eq{Field: "target", Value: target}))
	}
	return Compose(AuditLogs, opts...)
}

// SchoolScoreView selects the scores of one game for users of one school,
// users hydrated, for the leaderboard aggregator.
func SchoolScoreView(gameID, schoolID string) (*View, error) {
	return Compose(Scores,
		WithJoin("user"),
		WithMatch(And{
			Eq{Field: "game_id", Value: gameID},
			Eq{Field: "user.school_id", Value: schoolID},
		}),
		WithSort("value", true),
	)
}
