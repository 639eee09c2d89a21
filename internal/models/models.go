package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Projects     []uuid.UUID `json:"projects"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntryKind selects between the two transaction tables.
type EntryKind string

const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
)

// Entry is a single income or expense. ProjectID is nil for
// "general" entries recorded outside any project.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	Tag       string     `json:"tag"`
	Amount    float64    `json:"amount"`
	Category  string     `json:"category,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Kind      EntryKind  `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}
