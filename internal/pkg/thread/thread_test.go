package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingwen/novel_go_server/internal/model"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func comment(id int64, parentID *int64, minutesAfter int) *model.Comment {
	return &model.Comment{
		ID:        id,
		ParentID:  parentID,
		CreatedAt: baseTime.Add(time.Duration(minutesAfter) * time.Minute),
	}
}

func pid(id int64) *int64 {
	return &id
}

func TestFlatten_Empty(t *testing.T) {
	threads := Flatten(nil)
	assert.Empty(t, threads)
}

func TestFlatten_OnlyRoots(t *testing.T) {
	threads := Flatten([]*model.Comment{
		comment(1, nil, 0),
		comment(2, nil, 1),
		comment(3, nil, 2),
	})

	require.Len(t, threads, 3)
	for _, th := range threads {
		assert.Empty(t, th.Children)
	}
}

func TestFlatten_DirectReplies(t *testing.T) {
	threads := Flatten([]*model.Comment{
		comment(1, nil, 0),
		comment(2, pid(1), 1),
		comment(3, pid(1), 2),
	})

	require.Len(t, threads, 1)
	assert.Equal(t, int64(1), threads[0].Root.ID)
	require.Len(t, threads[0].Children, 2)
}

func TestFlatten_DeepChainAttachesToSingleRoot(t *testing.T) {
	// 1 <- 2 <- 3 <- 4 <- 5，全部挂到 1 下面
	threads := Flatten([]*model.Comment{
		comment(1, nil, 0),
		comment(2, pid(1), 1),
		comment(3, pid(2), 2),
		comment(4, pid(3), 3),
		comment(5, pid(4), 4),
	})

	require.Len(t, threads, 1)
	assert.Equal(t, int64(1), threads[0].Root.ID)
	require.Len(t, threads[0].Children, 4)
	for _, c := range threads[0].Children {
		assert.NotEqual(t, int64(1), c.ID)
	}
}

func TestFlatten_OrphanPromotedToRoot(t *testing.T) {
	// 2 的父评论 99 不在集合内（已被硬删除），2 提升为根；
	// 3 回复 2，跟着挂到 2 下面
	threads := Flatten([]*model.Comment{
		comment(1, nil, 0),
		comment(2, pid(99), 1),
		comment(3, pid(2), 2),
	})

	require.Len(t, threads, 2)

	var orphan *Thread
	for _, th := range threads {
		if th.Root.ID == 2 {
			orphan = th
		}
	}
	require.NotNil(t, orphan, "orphan should appear as a root, never be dropped")
	require.Len(t, orphan.Children, 1)
	assert.Equal(t, int64(3), orphan.Children[0].ID)
}

func TestFlatten_ChildrenOldestFirst(t *testing.T) {
	threads := Flatten([]*model.Comment{
		comment(1, nil, 0),
		comment(4, pid(1), 30),
		comment(2, pid(1), 10),
		comment(3, pid(2), 20),
	})

	require.Len(t, threads, 1)
	children := threads[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, int64(2), children[0].ID)
	assert.Equal(t, int64(3), children[1].ID)
	assert.Equal(t, int64(4), children[2].ID)
}

func TestFlatten_SelfReferenceDoesNotLoop(t *testing.T) {
	threads := Flatten([]*model.Comment{
		comment(1, pid(1), 0),
		comment(2, nil, 1),
	})

	require.Len(t, threads, 2)
}

func TestFlatten_CycleDoesNotLoop(t *testing.T) {
	// 1 和 2 互为父评论（畸形数据），各自按根处理
	threads := Flatten([]*model.Comment{
		comment(1, pid(2), 0),
		comment(2, pid(1), 1),
		comment(3, pid(1), 2),
	})

	// 不死循环即可，且没有评论被丢弃
	total := 0
	for _, th := range threads {
		total += 1 + len(th.Children)
	}
	assert.Equal(t, 3, total)
}

func TestFlatten_Idempotent(t *testing.T) {
	input := []*model.Comment{
		comment(1, nil, 0),
		comment(2, pid(1), 1),
		comment(3, pid(2), 2),
		comment(4, pid(99), 3),
		comment(5, nil, 4),
	}

	first := Flatten(input)

	// 把拍平结果重新摊开再拍平一次
	flattened := make([]*model.Comment, 0)
	for _, th := range first {
		flattened = append(flattened, th.Root)
		flattened = append(flattened, th.Children...)
	}
	second := Flatten(flattened)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Root.ID, second[i].Root.ID)
		require.Len(t, second[i].Children, len(first[i].Children))
		for j := range first[i].Children {
			assert.Equal(t, first[i].Children[j].ID, second[i].Children[j].ID)
		}
	}
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortNewest, ParseSortMode("newest"))
	assert.Equal(t, SortVotes, ParseSortMode("votes"))
	assert.Equal(t, SortReplies, ParseSortMode("replies"))
	assert.Equal(t, SortNewest, ParseSortMode(""))
	assert.Equal(t, SortNewest, ParseSortMode("bogus"))
}

func rootThread(id int64, minutesAfter int, pinned bool, childCount int) *Thread {
	root := comment(id, nil, minutesAfter)
	root.Pinned = pinned
	th := &Thread{Root: root}
	for i := 0; i < childCount; i++ {
		th.Children = append(th.Children, comment(id*100+int64(i), pid(id), minutesAfter+i+1))
	}
	return th
}

func rootIDs(threads []*Thread) []int64 {
	ids := make([]int64, len(threads))
	for i, th := range threads {
		ids[i] = th.Root.ID
	}
	return ids
}

func TestSort_NewestDefault(t *testing.T) {
	threads := []*Thread{
		rootThread(1, 0, false, 0),
		rootThread(2, 20, false, 0),
		rootThread(3, 10, false, 0),
	}

	Sort(threads, SortNewest, nil)
	assert.Equal(t, []int64{2, 3, 1}, rootIDs(threads))
}

func TestSort_Votes(t *testing.T) {
	threads := []*Thread{
		rootThread(1, 0, false, 0),
		rootThread(2, 10, false, 0),
		rootThread(3, 20, false, 0),
	}
	scores := map[int64]int{1: 5, 2: -2, 3: 1}

	Sort(threads, SortVotes, scores)
	assert.Equal(t, []int64{1, 3, 2}, rootIDs(threads))
}

func TestSort_VotesTieBreaksByNewest(t *testing.T) {
	threads := []*Thread{
		rootThread(1, 0, false, 0),
		rootThread(2, 10, false, 0),
	}

	Sort(threads, SortVotes, map[int64]int{1: 3, 2: 3})
	assert.Equal(t, []int64{2, 1}, rootIDs(threads))
}

func TestSort_Replies(t *testing.T) {
	threads := []*Thread{
		rootThread(1, 0, false, 1),
		rootThread(2, 10, false, 3),
		rootThread(3, 20, false, 0),
	}

	Sort(threads, SortReplies, nil)
	assert.Equal(t, []int64{2, 1, 3}, rootIDs(threads))
}

func TestSort_PinnedFirstInEveryMode(t *testing.T) {
	for _, mode := range []SortMode{SortNewest, SortVotes, SortReplies} {
		threads := []*Thread{
			rootThread(1, 30, false, 5),
			rootThread(2, 0, true, 0),
			rootThread(3, 20, false, 2),
		}
		scores := map[int64]int{1: 10, 2: -5, 3: 3}

		Sort(threads, mode, scores)
		assert.Equal(t, int64(2), threads[0].Root.ID, "mode %s should list pinned first", mode)
	}
}

func TestSort_MultiplePinned(t *testing.T) {
	// 不强制单条置顶，多条置顶之间按创建时间倒序
	threads := []*Thread{
		rootThread(1, 0, true, 0),
		rootThread(2, 10, false, 0),
		rootThread(3, 20, true, 0),
	}

	Sort(threads, SortNewest, nil)
	assert.Equal(t, []int64{3, 1, 2}, rootIDs(threads))
}

func TestSort_DoesNotReorderChildren(t *testing.T) {
	th := rootThread(1, 0, false, 3)
	before := make([]int64, len(th.Children))
	for i, c := range th.Children {
		before[i] = c.ID
	}

	Sort([]*Thread{th}, SortReplies, nil)

	after := make([]int64, len(th.Children))
	for i, c := range th.Children {
		after[i] = c.ID
	}
	assert.Equal(t, before, after)
}

func TestPageBounds(t *testing.T) {
	t.Run("first page", func(t *testing.T) {
		start, end, hasMore := PageBounds(25, 1, 10)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
		assert.True(t, hasMore)
	})

	t.Run("middle page", func(t *testing.T) {
		start, end, hasMore := PageBounds(25, 2, 10)
		assert.Equal(t, 10, start)
		assert.Equal(t, 20, end)
		assert.True(t, hasMore)
	})

	t.Run("last partial page", func(t *testing.T) {
		start, end, hasMore := PageBounds(25, 3, 10)
		assert.Equal(t, 20, start)
		assert.Equal(t, 25, end)
		assert.False(t, hasMore)
	})

	t.Run("exact boundary", func(t *testing.T) {
		start, end, hasMore := PageBounds(20, 2, 10)
		assert.Equal(t, 10, start)
		assert.Equal(t, 20, end)
		assert.False(t, hasMore)
	})

	t.Run("page beyond total", func(t *testing.T) {
		start, end, hasMore := PageBounds(5, 3, 10)
		assert.Equal(t, 5, start)
		assert.Equal(t, 5, end)
		assert.False(t, hasMore)
	})

	t.Run("page below one treated as first", func(t *testing.T) {
		start, end, hasMore := PageBounds(5, 0, 10)
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
		assert.False(t, hasMore)
	})

	t.Run("empty", func(t *testing.T) {
		start, end, hasMore := PageBounds(0, 1, 10)
		assert.Equal(t, 0, start)
		assert.Equal(t, 0, end)
		assert.False(t, hasMore)
	})
}
