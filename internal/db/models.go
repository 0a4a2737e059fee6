package db

import (
	"database/sql"
	"time"
)

// Prompt types.
const (
	PromptTypeText  = "text"
	PromptTypeImage = "image"
)

type Domain struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Model struct {
	ID          int64
	Name        string
	TextOutput  bool
	ImageOutput bool
	CreatedAt   time.Time
}

type Prompt struct {
	ID         int64
	Text       string
	PromptType string
	DomainID   sql.NullInt64
	ParentID   sql.NullInt64
	CreatedAt  time.Time
}

type Output struct {
	ID        int64
	Text      string
	PromptID  int64
	ModelID   int64
	CreatedAt time.Time
}

type Feedback struct {
	ID        int64
	OutputID  int64
	Score     int64
	Comment   sql.NullString
	CreatedAt time.Time
}

type Post struct {
	ID             int64
	Text           string
	Platform       string
	PlatformPostID string
	PostUrl        sql.NullString
	OutputID       sql.NullInt64
	CreatedAt      time.Time
}

// NullID wraps a row id for a nullable foreign key. Zero means no reference.
func NullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// NullString wraps optional text. Empty means NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
