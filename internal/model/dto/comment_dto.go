package dto

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content      string `json:"content" binding:"required,min=1,max=2000"`
	ChapterID    *int64 `json:"chapter_id,omitempty"`
	ParagraphIdx *int   `json:"paragraph_idx,omitempty"`
	ParentID     *int64 `json:"parent_id,omitempty"`
}

// EditCommentRequest 编辑评论请求
type EditCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// VoteCommentRequest 评论投票请求，value 为 1（顶）或 -1（踩）
type VoteCommentRequest struct {
	Value int `json:"value" binding:"required,oneof=1 -1"`
}

// PinCommentRequest 置顶/取消置顶请求
type PinCommentRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

// CommentItem 评论项
type CommentItem struct {
	ID         int64          `json:"id"`
	User       *CommentUser   `json:"user"`
	Content    string         `json:"content"`
	ParentID   *int64         `json:"parent_id,omitempty"`
	Pinned     bool           `json:"pinned"`
	Score      int            `json:"score"`
	MyVote     int            `json:"my_vote"` // 当前用户的投票：1、-1 或 0
	ReplyCount int            `json:"reply_count"`
	ReplyTo    *ReplyTo       `json:"reply_to,omitempty"`
	Replies    []*CommentItem `json:"replies,omitempty"`
	CreatedAt  string         `json:"created_at"`
	EditedAt   string         `json:"edited_at,omitempty"`
}

// ReplyTo 被回复评论的摘要，用于渲染 "@用户 · 引文" 上下文
type ReplyTo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Excerpt  string `json:"excerpt"`
}

// CommentUser 评论用户信息
type CommentUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// VoteResult 投票后的权威状态
type VoteResult struct {
	Score  int `json:"score"`
	MyVote int `json:"my_vote"`
}

// PinResult 置顶操作结果
type PinResult struct {
	Pinned bool `json:"pinned"`
}
