// Package thread 将任意深度的回复链拍平成「根评论 + 一层回复」的展示结构，
// 并负责根评论的排序与分页。只做读侧变换，不修改存储的父子关系。
package thread

import (
	"sort"

	"github.com/qingwen/novel_go_server/internal/model"
)

// SortMode 根评论排序方式
type SortMode string

const (
	SortNewest  SortMode = "newest"  // 创建时间倒序（默认）
	SortVotes   SortMode = "votes"   // 得分倒序
	SortReplies SortMode = "replies" // 回复数倒序
)

// ParseSortMode 解析排序参数，非法值回落到 newest
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortVotes:
		return SortVotes
	case SortReplies:
		return SortReplies
	default:
		return SortNewest
	}
}

// Thread 一条根评论及拍平后挂在它下面的全部回复
type Thread struct {
	Root     *model.Comment
	Children []*model.Comment
}

// Flatten 把一个范围内加载的全部评论拍平。
// 每条非根评论沿 parent 链上溯找到有效根，挂为该根的子节点；
// 父评论不在集合内的评论（祖先已被硬删除）提升为根，而不是丢弃。
// 子节点按创建时间升序排列，与根的排序方式无关。
func Flatten(comments []*model.Comment) []*Thread {
	byID := make(map[int64]*model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	threads := make(map[int64]*Thread)
	roots := make([]*model.Comment, 0)
	for _, c := range comments {
		if effectiveRoot(c, byID) == c {
			threads[c.ID] = &Thread{Root: c}
			roots = append(roots, c)
		}
	}

	for _, c := range comments {
		root := effectiveRoot(c, byID)
		if root == c {
			continue
		}
		t := threads[root.ID]
		t.Children = append(t.Children, c)
	}

	result := make([]*Thread, 0, len(roots))
	for _, r := range roots {
		t := threads[r.ID]
		sortChildren(t.Children)
		result = append(result, t)
	}

	// 初始顺序：创建时间升序，排序模式在 Sort 中再处理
	sort.SliceStable(result, func(i, j int) bool {
		return olderFirst(result[i].Root, result[j].Root)
	})

	return result
}

// effectiveRoot 沿 parent 链上溯到顶。链断裂（父评论不在集合内）时
// 终点即有效根；出现环（包括自引用）时把起点自身当作根，避免死循环。
func effectiveRoot(c *model.Comment, byID map[int64]*model.Comment) *model.Comment {
	visited := make(map[int64]struct{})
	cur := c
	for {
		if _, seen := visited[cur.ID]; seen {
			return c
		}
		visited[cur.ID] = struct{}{}

		if cur.ParentID == nil {
			return cur
		}
		parent, ok := byID[*cur.ParentID]
		if !ok {
			return cur
		}
		cur = parent
	}
}

// Sort 对根评论排序。置顶评论无条件排在最前，
// 其余按所选指标排序，并列时按创建时间倒序。
func Sort(threads []*Thread, mode SortMode, scores map[int64]int) {
	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i], threads[j]

		if a.Root.Pinned != b.Root.Pinned {
			return a.Root.Pinned
		}

		switch mode {
		case SortVotes:
			if scores[a.Root.ID] != scores[b.Root.ID] {
				return scores[a.Root.ID] > scores[b.Root.ID]
			}
		case SortReplies:
			if len(a.Children) != len(b.Children) {
				return len(a.Children) > len(b.Children)
			}
		}

		return newerFirst(a.Root, b.Root)
	})
}

// PageBounds 计算 1 起始页码的切片区间。
// hasMore 表示 offset+pageSize < total。
func PageBounds(total, page, pageSize int) (start, end int, hasMore bool) {
	if page < 1 {
		page = 1
	}
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	hasMore = (page-1)*pageSize+pageSize < total
	return start, end, hasMore
}

func sortChildren(children []*model.Comment) {
	sort.SliceStable(children, func(i, j int) bool {
		return olderFirst(children[i], children[j])
	})
}

func olderFirst(a, b *model.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func newerFirst(a, b *model.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
