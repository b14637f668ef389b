package models

import (
	"time"

	"gorm.io/gorm"
)

type Base struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedOn time.Time `gorm:"not null" json:"created_on"`
}

func (base *Base) BeforeCreate(db *gorm.DB) (err error) {
	if base.CreatedOn.IsZero() {
		base.CreatedOn = time.Now().UTC()
	}
	return
}

type Error struct {
	Field      string
	Message    string
	Validation bool
}

func (e Error) Error() string {
	return e.Message
}
