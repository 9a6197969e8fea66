package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qingwen/novel_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDWithUser 获取评论及用户信息
func (r *CommentRepository) GetByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete 硬删除单条评论，不级联子回复（孤儿回复在读侧提升为根）
func (r *CommentRepository) Delete(id int64) error {
	return r.db.Delete(&model.Comment{}, id).Error
}

// UpdateContent 编辑评论正文并记录编辑时间
func (r *CommentRepository) UpdateContent(id int64, content string, editedAt time.Time) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		}).Error
}

// UpdatePinned 设置置顶状态
func (r *CommentRepository) UpdatePinned(id int64, pinned bool) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", id).
		Update("pinned", pinned).Error
}

// ListByScope 加载一个范围内的全部评论（含回复），创建时间升序。
// chapterID 为空表示书评区（chapter_id IS NULL）；
// 指定章节但不指定段落时返回该章节下全部评论。
func (r *CommentRepository) ListByScope(novelID int64, chapterID *int64, paragraphIdx *int) ([]*model.Comment, error) {
	query := r.db.Preload("User").Where("novel_id = ?", novelID)

	if chapterID == nil {
		query = query.Where("chapter_id IS NULL")
	} else {
		query = query.Where("chapter_id = ?", *chapterID)
		if paragraphIdx != nil {
			query = query.Where("paragraph_idx = ?", *paragraphIdx)
		}
	}

	var comments []*model.Comment
	err := query.Order("created_at ASC, id ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByNovelID 获取作品的评论总数（含回复）
func (r *CommentRepository) CountByNovelID(novelID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("novel_id = ?", novelID).Count(&count).Error
	return count, err
}
