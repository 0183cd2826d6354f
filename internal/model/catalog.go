package model

import (
	"time"

	"github.com/google/uuid"
)

// Technology is a listed technology offered for transfer.
type Technology struct {
	ID          uuid.UUID
	Title       string
	SubmitterID *uuid.UUID
	CreatedAt   time.Time
}

// Project groups one or more technologies under a single owner.
type Project struct {
	ID        uuid.UUID
	Name      string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}

// Demand is a buyer-side request that technologies respond to.
type Demand struct {
	ID        uuid.UUID
	Title     string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}
