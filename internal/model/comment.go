package model

import (
	"time"
)

type Comment struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	UserID       int64      `gorm:"not null;index" json:"user_id"`
	NovelID      int64      `gorm:"not null;index:idx_comments_scope,priority:1" json:"novel_id"`
	ChapterID    *int64     `gorm:"index:idx_comments_scope,priority:2" json:"chapter_id,omitempty"`
	ParagraphIdx *int       `gorm:"index:idx_comments_scope,priority:3" json:"paragraph_idx,omitempty"`
	ParentID     *int64     `gorm:"index" json:"parent_id,omitempty"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Pinned       bool       `gorm:"default:false" json:"pinned"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"` // 仅在编辑过后才有值

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
