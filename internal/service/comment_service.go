package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/qingwen/novel_go_server/config"
	"github.com/qingwen/novel_go_server/internal/model"
	"github.com/qingwen/novel_go_server/internal/model/dto"
	"github.com/qingwen/novel_go_server/internal/pkg/cooldown"
	"github.com/qingwen/novel_go_server/internal/pkg/notify"
	"github.com/qingwen/novel_go_server/internal/pkg/thread"
	"github.com/qingwen/novel_go_server/internal/repository"
)

var (
	ErrNovelNotFound     = errors.New("作品不存在")
	ErrChapterNotFound   = errors.New("章节不存在")
	ErrCommentNotFound   = errors.New("评论不存在")
	ErrParentNotFound    = errors.New("父评论不存在")
	ErrParentScope       = errors.New("父评论不属于该作品")
	ErrParagraphScope    = errors.New("段落定位必须指定章节")
	ErrEmptyContent      = errors.New("评论内容不能为空")
	ErrCommentPermission = errors.New("无权操作此评论")
	ErrEditWindowClosed  = errors.New("评论发布已超过可编辑时限")
	ErrInvalidVote       = errors.New("无效的投票方向")
)

const (
	defaultPageSize      = 10
	defaultReplyPageSize = 10
	defaultEditWindow    = 10 * time.Minute
	defaultExcerptLength = 50
)

// 校验正文、生成摘要时剥掉富文本标记；正文本身原样存储
var stripPolicy = bluemonday.StrictPolicy()

type CommentService struct {
	commentRepo *repository.CommentRepository
	voteRepo    *repository.VoteRepository
	userRepo    *repository.UserRepository
	novelRepo   *repository.NovelRepository
	guard       *cooldown.Guard
	notifier    notify.Notifier
	cfg         *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	voteRepo *repository.VoteRepository,
	userRepo *repository.UserRepository,
	novelRepo *repository.NovelRepository,
	guard *cooldown.Guard,
	notifier notify.Notifier,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		novelRepo:   novelRepo,
		guard:       guard,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Create 发表评论或回复
func (s *CommentService) Create(ctx context.Context, userID, novelID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if _, err := s.novelRepo.GetByID(novelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNovelNotFound
		}
		return nil, err
	}

	if req.ParagraphIdx != nil && req.ChapterID == nil {
		return nil, ErrParagraphScope
	}

	if req.ChapterID != nil {
		chapter, err := s.novelRepo.GetChapterByID(*req.ChapterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrChapterNotFound
			}
			return nil, err
		}
		if chapter.NovelID != novelID {
			return nil, ErrChapterNotFound
		}
	}

	if plainText(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	// 如果是回复，校验父评论并继承其范围，保证回复和父评论落在同一个区
	chapterID := req.ChapterID
	paragraphIdx := req.ParagraphIdx
	var parent *model.Comment
	if req.ParentID != nil {
		parent, err = s.commentRepo.GetByIDWithUser(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.NovelID != novelID {
			return nil, ErrParentScope
		}
		chapterID = parent.ChapterID
		paragraphIdx = parent.ParagraphIdx
	}

	// 冷却窗口只拦截发布，窗口从上一次发布成功的时刻起算
	if err := s.guard.Check(ctx, userID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:       userID,
		NovelID:      novelID,
		ChapterID:    chapterID,
		ParagraphIdx: paragraphIdx,
		ParentID:     req.ParentID,
		Content:      req.Content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if err := s.guard.MarkCreated(ctx, userID); err != nil {
		log.Printf("comment: mark cooldown for user %d failed: %v", userID, err)
	}

	// 回复别人时发提醒（回复自己不发），失败不影响发布
	if parent != nil && parent.UserID != userID {
		s.notifier.NotifyReply(ctx, parent.UserID, userID, comment.ID)
	}

	comment.User = user
	item := buildItem(comment, 0, 0, 0)
	if parent != nil {
		item.ReplyTo = s.buildReplyTo(parent)
	}
	return item, nil
}

// Edit 编辑评论正文。仅限作者本人，且必须在可编辑时限内；
// 管理身份可以删除别人的评论，但不能替别人改写内容。
func (s *CommentService) Edit(userID, commentID int64, content string) (*dto.CommentItem, error) {
	comment, err := s.commentRepo.GetByIDWithUser(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != userID {
		return nil, ErrCommentPermission
	}
	if !(time.Since(comment.CreatedAt) < s.editWindow()) {
		return nil, ErrEditWindowClosed
	}
	if plainText(content) == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now()
	if err := s.commentRepo.UpdateContent(commentID, content, now); err != nil {
		return nil, err
	}
	comment.Content = content
	comment.EditedAt = &now

	score, err := s.voteRepo.ScoreByCommentID(commentID)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteRepo.UserVotesByCommentIDs(userID, []int64{commentID})
	if err != nil {
		return nil, err
	}
	return buildItem(comment, score, votes[commentID], s.countReplies(comment)), nil
}

// Delete 硬删除评论。作者本人或持有该作品管理能力的用户可删；
// 子回复不级联，读取时会被提升为根评论。
func (s *CommentService) Delete(userID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID {
		ok, err := s.actorCanModerate(userID, comment.NovelID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCommentPermission
		}
	}

	if err := s.voteRepo.DeleteByCommentID(commentID); err != nil {
		return err
	}
	return s.commentRepo.Delete(commentID)
}

// Vote 投票。重复同方向视为撤销，反方向覆盖，返回权威的得分与当前用户投票。
func (s *CommentService) Vote(userID, commentID int64, value int) (*dto.VoteResult, error) {
	if value != model.VoteUp && value != model.VoteDown {
		return nil, ErrInvalidVote
	}

	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	myVote := value
	existing, err := s.voteRepo.Get(userID, commentID)
	switch {
	case err == nil && existing.Value == value:
		// 同方向再点一次 = 撤销
		if err := s.voteRepo.Delete(userID, commentID); err != nil {
			return nil, err
		}
		myVote = 0
	case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.voteRepo.Upsert(&model.CommentVote{
			UserID:    userID,
			CommentID: commentID,
			Value:     value,
		}); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	score, err := s.voteRepo.ScoreByCommentID(commentID)
	if err != nil {
		return nil, err
	}
	return &dto.VoteResult{Score: score, MyVote: myVote}, nil
}

// SetPinned 置顶或取消置顶，仅限作品作者和平台管理角色。
// 不限制同一范围内只有一条置顶评论，多条置顶都会排在最前。
func (s *CommentService) SetPinned(userID, commentID int64, pinned bool) (*dto.PinResult, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	ok, err := s.actorCanModerate(userID, comment.NovelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentPermission
	}

	if err := s.commentRepo.UpdatePinned(commentID, pinned); err != nil {
		return nil, err
	}
	return &dto.PinResult{Pinned: pinned}, nil
}

// ListRoots 按范围查询根评论：加载范围内全部评论，拍平、排序、分页。
// viewerID 为 0 表示未登录，my_vote 全部为 0。
func (s *CommentService) ListRoots(viewerID, novelID int64, chapterID *int64, paragraphIdx *int, page int, sortMode string) ([]*dto.CommentItem, int64, bool, error) {
	if paragraphIdx != nil && chapterID == nil {
		return nil, 0, false, ErrParagraphScope
	}

	if _, err := s.novelRepo.GetByID(novelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, false, ErrNovelNotFound
		}
		return nil, 0, false, err
	}

	comments, err := s.commentRepo.ListByScope(novelID, chapterID, paragraphIdx)
	if err != nil {
		return nil, 0, false, err
	}

	threads := thread.Flatten(comments)

	ids := make([]int64, len(comments))
	byID := make(map[int64]*model.Comment, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	scores, err := s.voteRepo.ScoresByCommentIDs(ids)
	if err != nil {
		return nil, 0, false, err
	}
	votes, err := s.voteRepo.UserVotesByCommentIDs(viewerID, ids)
	if err != nil {
		return nil, 0, false, err
	}

	thread.Sort(threads, thread.ParseSortMode(sortMode), scores)

	total := len(threads)
	start, end, hasMore := thread.PageBounds(total, page, s.pageSize())

	items := make([]*dto.CommentItem, 0, end-start)
	for _, t := range threads[start:end] {
		root := buildItem(t.Root, scores[t.Root.ID], votes[t.Root.ID], len(t.Children))
		for _, child := range t.Children {
			reply := buildItem(child, scores[child.ID], votes[child.ID], 0)
			reply.ReplyTo = s.replyToFor(child, byID)
			root.Replies = append(root.Replies, reply)
		}
		items = append(items, root)
	}

	return items, int64(total), hasMore, nil
}

// ListReplies 展开单条根评论的全部回复，创建时间升序分页，
// 与根评论当前的排序方式无关。
func (s *CommentService) ListReplies(viewerID, rootID int64, page int) ([]*dto.CommentItem, int64, bool, error) {
	root, err := s.commentRepo.GetByID(rootID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, false, ErrCommentNotFound
		}
		return nil, 0, false, err
	}

	comments, err := s.commentRepo.ListByScope(root.NovelID, root.ChapterID, root.ParagraphIdx)
	if err != nil {
		return nil, 0, false, err
	}

	threads := thread.Flatten(comments)
	byID := make(map[int64]*model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	var children []*model.Comment
	for _, t := range threads {
		if t.Root.ID == rootID {
			children = t.Children
			break
		}
	}

	total := len(children)
	start, end, hasMore := thread.PageBounds(total, page, s.replyPageSize())
	pageChildren := children[start:end]

	ids := make([]int64, len(pageChildren))
	for i, c := range pageChildren {
		ids[i] = c.ID
	}
	scores, err := s.voteRepo.ScoresByCommentIDs(ids)
	if err != nil {
		return nil, 0, false, err
	}
	votes, err := s.voteRepo.UserVotesByCommentIDs(viewerID, ids)
	if err != nil {
		return nil, 0, false, err
	}

	items := make([]*dto.CommentItem, 0, len(pageChildren))
	for _, c := range pageChildren {
		reply := buildItem(c, scores[c.ID], votes[c.ID], 0)
		reply.ReplyTo = s.replyToFor(c, byID)
		items = append(items, reply)
	}

	return items, int64(total), hasMore, nil
}

// actorCanModerate 管理能力：作品作者或平台管理角色
func (s *CommentService) actorCanModerate(userID, novelID int64) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.IsStaff() {
		return true, nil
	}

	novel, err := s.novelRepo.GetByID(novelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return novel.AuthorID == user.ID, nil
}

// countReplies 单条评论在其范围内拍平后的回复数（回复本身恒为 0）
func (s *CommentService) countReplies(comment *model.Comment) int {
	if comment.ParentID != nil {
		return 0
	}
	comments, err := s.commentRepo.ListByScope(comment.NovelID, comment.ChapterID, comment.ParagraphIdx)
	if err != nil {
		return 0
	}
	for _, t := range thread.Flatten(comments) {
		if t.Root.ID == comment.ID {
			return len(t.Children)
		}
	}
	return 0
}

func (s *CommentService) replyToFor(c *model.Comment, byID map[int64]*model.Comment) *dto.ReplyTo {
	if c.ParentID == nil {
		return nil
	}
	parent, ok := byID[*c.ParentID]
	if !ok {
		return nil // 直接父评论已删除
	}
	return s.buildReplyTo(parent)
}

func (s *CommentService) buildReplyTo(parent *model.Comment) *dto.ReplyTo {
	rt := &dto.ReplyTo{
		UserID:  parent.UserID,
		Excerpt: excerpt(parent.Content, s.excerptLength()),
	}
	if parent.User != nil {
		rt.Username = parent.User.Username
	}
	return rt
}

func buildItem(c *model.Comment, score, myVote, replyCount int) *dto.CommentItem {
	item := &dto.CommentItem{
		ID:         c.ID,
		Content:    c.Content,
		ParentID:   c.ParentID,
		Pinned:     c.Pinned,
		Score:      score,
		MyVote:     myVote,
		ReplyCount: replyCount,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
	if c.EditedAt != nil {
		item.EditedAt = c.EditedAt.Format(time.RFC3339)
	}
	if c.User != nil {
		item.User = &dto.CommentUser{
			ID:        c.User.ID,
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		}
	}
	return item
}

// plainText 剥掉富文本标记并去掉首尾空白，用于非空校验
func plainText(content string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(content))
}

// excerpt 生成被回复内容的单行摘要，超长按字符截断
func excerpt(content string, max int) string {
	text := strings.Join(strings.Fields(plainText(content)), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}

func (s *CommentService) pageSize() int {
	if s.cfg.Comment.PageSize > 0 {
		return s.cfg.Comment.PageSize
	}
	return defaultPageSize
}

func (s *CommentService) replyPageSize() int {
	if s.cfg.Comment.ReplyPageSize > 0 {
		return s.cfg.Comment.ReplyPageSize
	}
	return defaultReplyPageSize
}

func (s *CommentService) editWindow() time.Duration {
	if s.cfg.Comment.EditWindowMinutes > 0 {
		return time.Duration(s.cfg.Comment.EditWindowMinutes) * time.Minute
	}
	return defaultEditWindow
}

func (s *CommentService) excerptLength() int {
	if s.cfg.Comment.ExcerptLength > 0 {
		return s.cfg.Comment.ExcerptLength
	}
	return defaultExcerptLength
}
