package model

import (
	"time"
)

// 投票方向
const (
	VoteUp   = 1
	VoteDown = -1
)

// CommentVote 每个用户对每条评论至多一票，改票是覆盖而不是新增。
// (user_id, comment_id) 的唯一索引让并发投票在数据库层串行化。
type CommentVote struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_comment_votes_user_comment" json:"user_id"`
	CommentID int64     `gorm:"not null;uniqueIndex:idx_comment_votes_user_comment;index" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 或 -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CommentVote) TableName() string {
	return "comment_votes"
}
