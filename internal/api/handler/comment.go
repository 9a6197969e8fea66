package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qingwen/novel_go_server/config"
	"github.com/qingwen/novel_go_server/internal/api/middleware"
	"github.com/qingwen/novel_go_server/internal/model/dto"
	"github.com/qingwen/novel_go_server/internal/pkg/cooldown"
	"github.com/qingwen/novel_go_server/internal/pkg/response"
	"github.com/qingwen/novel_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	cfg            *config.Config
}

func NewCommentHandler(commentService *service.CommentService, cfg *config.Config) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		cfg:            cfg,
	}
}

// ListRoots 获取根评论列表
// GET /api/v1/novels/:id/comments?chapter_id=&paragraph=&page=&sort=
func (h *CommentHandler) ListRoots(c *gin.Context) {
	novelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的作品ID")
		return
	}

	var chapterID *int64
	if raw := c.Query("chapter_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.ParamError(c, "无效的章节ID")
			return
		}
		chapterID = &id
	}

	var paragraphIdx *int
	if raw := c.Query("paragraph"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			response.ParamError(c, "无效的段落序号")
			return
		}
		paragraphIdx = &idx
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	sortMode := c.DefaultQuery("sort", "newest")

	viewerID, _ := middleware.GetUserID(c)

	items, total, hasMore, err := h.commentService.ListRoots(viewerID, novelID, chapterID, paragraphIdx, page, sortMode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNovelNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrParagraphScope):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, h.pageSizeOrDefault(), hasMore, items)
}

// ListReplies 展开单条根评论的回复列表
// GET /api/v1/comments/:id/replies?page=
func (h *CommentHandler) ListReplies(c *gin.Context) {
	rootID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	viewerID, _ := middleware.GetUserID(c)

	items, total, hasMore, err := h.commentService.ListReplies(viewerID, rootID, page)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, h.replyPageSizeOrDefault(), hasMore, items)
}

// Create 发表评论
// POST /api/v1/novels/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	novelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的作品ID")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.commentService.Create(c.Request.Context(), userID, novelID, &req)
	if err != nil {
		var rateErr *cooldown.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			response.RateLimitError(c, rateErr.Error())
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrEmailNotVerified):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrNovelNotFound),
			errors.Is(err, service.ErrChapterNotFound),
			errors.Is(err, service.ErrParentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrParagraphScope),
			errors.Is(err, service.ErrParentScope):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论成功", item)
}

// Edit 编辑评论
// PUT /api/v1/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.commentService.Edit(userID, commentID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission),
			errors.Is(err, service.ErrEditWindowClosed):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "编辑成功", item)
}

// Delete 删除评论
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Vote 评论投票
// POST /api/v1/comments/:id/vote
func (h *CommentHandler) Vote(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.VoteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.commentService.Vote(userID, commentID, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidVote):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// Pin 置顶/取消置顶
// PUT /api/v1/comments/:id/pin
func (h *CommentHandler) Pin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.PinCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.commentService.SetPinned(userID, commentID, *req.Pinned)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

func (h *CommentHandler) pageSizeOrDefault() int {
	if h.cfg.Comment.PageSize > 0 {
		return h.cfg.Comment.PageSize
	}
	return 10
}

func (h *CommentHandler) replyPageSizeOrDefault() int {
	if h.cfg.Comment.ReplyPageSize > 0 {
		return h.cfg.Comment.ReplyPageSize
	}
	return 10
}
