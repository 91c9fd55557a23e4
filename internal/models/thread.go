package models

import (
	"time"

	"gorm.io/gorm"
)

type Thread struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID uint64         `gorm:"not null;index" json:"project_id"`
	AuthorID  uint64         `gorm:"not null" json:"author_id"`
	Title     string         `gorm:"type:varchar(200);not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Author  User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []Reply `gorm:"foreignKey:ThreadID" json:"replies,omitempty"`
}
