package db

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Product is the catalog entity. ID is assigned by the database; zero means
// "not yet assigned" and is rejected on update. RowVersion is bumped on every
// write and guards replacements against stale data.
type Product struct {
	ID          int64     `json:"id" example:"1"`
	Name        string    `json:"name" example:"Widget"`
	Description string    `json:"description" example:"A very useful widget"`
	Price       float64   `json:"price" example:"19.90"`
	RowVersion  int64     `json:"rowVersion" example:"1"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
