package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qingwen/novel_go_server/internal/model"
)

// TestUser 创建测试用户，默认已验证邮箱
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		Role:          model.RoleUser,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithVerified 设置邮箱验证状态
func WithVerified(verified bool) func(*model.User) {
	return func(u *model.User) {
		u.EmailVerified = verified
	}
}

// TestNovel 创建测试作品
func TestNovel(t *testing.T, db *gorm.DB, authorID int64, opts ...func(*model.Novel)) *model.Novel {
	t.Helper()

	novel := &model.Novel{
		AuthorID: authorID,
		Title:    fmt.Sprintf("Test Novel %d", time.Now().UnixNano()%100000000),
		Status:   "ongoing",
	}

	for _, opt := range opts {
		opt(novel)
	}

	if err := db.Create(novel).Error; err != nil {
		t.Fatalf("Failed to create test novel: %v", err)
	}

	return novel
}

// WithTitle 设置作品标题
func WithTitle(title string) func(*model.Novel) {
	return func(n *model.Novel) {
		n.Title = title
	}
}

// TestChapter 创建测试章节
func TestChapter(t *testing.T, db *gorm.DB, novelID int64, idx int) *model.Chapter {
	t.Helper()

	chapter := &model.Chapter{
		NovelID: novelID,
		Idx:     idx,
		Title:   fmt.Sprintf("Chapter %d", idx),
	}

	if err := db.Create(chapter).Error; err != nil {
		t.Fatalf("Failed to create test chapter: %v", err)
	}

	return chapter
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, userID, novelID int64, content string, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:  userID,
		NovelID: novelID,
		Content: content,
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// WithChapter 设置章节范围
func WithChapter(chapterID int64) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ChapterID = &chapterID
	}
}

// WithParagraph 设置段落定位（需要配合 WithChapter）
func WithParagraph(idx int) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParagraphIdx = &idx
	}
}

// WithParent 设置父评论
func WithParent(parentID int64) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = &parentID
	}
}

// WithPinned 设置置顶
func WithPinned(pinned bool) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Pinned = pinned
	}
}

// WithCreatedAt 设置创建时间，方便构造确定的排序和编辑时限场景
func WithCreatedAt(createdAt time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.CreatedAt = createdAt
	}
}

// TestVote 创建测试投票
func TestVote(t *testing.T, db *gorm.DB, userID, commentID int64, value int) *model.CommentVote {
	t.Helper()

	vote := &model.CommentVote{
		UserID:    userID,
		CommentID: commentID,
		Value:     value,
	}

	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return vote
}
