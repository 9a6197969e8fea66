package model

import (
	"time"
)

type Novel struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	AuthorID  int64     `gorm:"not null;index" json:"author_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Status    string    `gorm:"size:20;default:ongoing" json:"status"` // ongoing, finished
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Novel) TableName() string {
	return "novels"
}

type Chapter struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	NovelID   int64     `gorm:"not null;index" json:"novel_id"`
	Idx       int       `gorm:"not null" json:"idx"` // 章节序号
	Title     string    `gorm:"size:200;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (Chapter) TableName() string {
	return "chapters"
}
