package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Principal is the authenticated caller resolved from the access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
