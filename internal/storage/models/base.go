// internal/storage/models/base.go
package models

import "time"

// BaseModel заменяет gorm.Model
type BaseModel struct {
	ID        uint       `gorm:"primarykey" json:"-"`
	CreatedAt time.Time  `gorm:"index;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"-"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}
