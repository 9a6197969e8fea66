package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qingwen/novel_go_server/internal/model"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Get 获取用户对某条评论的投票
func (r *VoteRepository) Get(userID, commentID int64) (*model.CommentVote, error) {
	var vote model.CommentVote
	err := r.db.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// Upsert 写入或覆盖投票，依赖 (user_id, comment_id) 唯一索引串行化并发写
func (r *VoteRepository) Upsert(vote *model.CommentVote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "comment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(vote).Error
}

// Delete 撤销投票
func (r *VoteRepository) Delete(userID, commentID int64) error {
	return r.db.Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentVote{}).Error
}

// DeleteByCommentID 评论删除后清理其全部投票
func (r *VoteRepository) DeleteByCommentID(commentID int64) error {
	return r.db.Where("comment_id = ?", commentID).Delete(&model.CommentVote{}).Error
}

// ScoreByCommentID 单条评论的得分：sum(value)
func (r *VoteRepository) ScoreByCommentID(commentID int64) (int, error) {
	var score int
	err := r.db.Model(&model.CommentVote{}).
		Where("comment_id = ?", commentID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&score).Error
	return score, err
}

// ScoresByCommentIDs 批量获取得分，无投票的评论不出现在结果里
func (r *VoteRepository) ScoresByCommentIDs(commentIDs []int64) (map[int64]int, error) {
	scores := make(map[int64]int)
	if len(commentIDs) == 0 {
		return scores, nil
	}

	var rows []struct {
		CommentID int64
		Score     int
	}
	err := r.db.Model(&model.CommentVote{}).
		Where("comment_id IN ?", commentIDs).
		Select("comment_id, COALESCE(SUM(value), 0) AS score").
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		scores[row.CommentID] = row.Score
	}
	return scores, nil
}

// UserVotesByCommentIDs 批量获取某用户在一组评论上的投票方向
func (r *VoteRepository) UserVotesByCommentIDs(userID int64, commentIDs []int64) (map[int64]int, error) {
	votes := make(map[int64]int)
	if userID == 0 || len(commentIDs) == 0 {
		return votes, nil
	}

	var rows []*model.CommentVote
	err := r.db.Where("user_id = ? AND comment_id IN ?", userID, commentIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, v := range rows {
		votes[v.CommentID] = v.Value
	}
	return votes, nil
}
