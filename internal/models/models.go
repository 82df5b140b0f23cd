package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserConfig stores a user's parameter overrides as a complete JSON map.
// Writes always replace the whole map, so there is no read-modify-write race.
type UserConfig struct {
	UserID    int64          `gorm:"primarykey" json:"user_id"`
	Overrides datatypes.JSON `gorm:"not null" json:"overrides"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Prediction is the durable record of one completed generation call.
// Rows are insert-only; nothing in this service mutates or deletes them.
type Prediction struct {
	ID        string         `gorm:"primarykey" json:"id"`
	UserID    int64          `gorm:"not null;index" json:"user_id"`
	Prompt    string         `gorm:"type:text;not null" json:"prompt"`
	Params    datatypes.JSON `gorm:"not null" json:"params"`
	OutputRef string         `gorm:"not null" json:"output_ref"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
