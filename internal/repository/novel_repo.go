package repository

import (
	"gorm.io/gorm"

	"github.com/qingwen/novel_go_server/internal/model"
)

// NovelRepository 只读查询。作品与章节的增删改属于外围系统，
// 评论引擎只需要校验范围存在性和作者归属。
type NovelRepository struct {
	db *gorm.DB
}

func NewNovelRepository(db *gorm.DB) *NovelRepository {
	return &NovelRepository{db: db}
}

func (r *NovelRepository) GetByID(id int64) (*model.Novel, error) {
	var novel model.Novel
	err := r.db.Where("id = ?", id).First(&novel).Error
	if err != nil {
		return nil, err
	}
	return &novel, nil
}

func (r *NovelRepository) GetChapterByID(id int64) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.db.Where("id = ?", id).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}
