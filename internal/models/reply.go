package models

import (
	"time"

	"gorm.io/gorm"
)

type Reply struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ThreadID  uint64         `gorm:"not null;index" json:"thread_id"`
	AuthorID  uint64         `gorm:"not null" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Thread Thread `gorm:"foreignKey:ThreadID" json:"thread,omitempty"`
	Author User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
