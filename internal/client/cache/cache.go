package cache

import (
	"fmt"
	"time"
)

// Post 规格化缓存里的帖子实体，按 id 去重存一份
type Post struct {
	ID          uint64
	Title       string
	TextSnippet string
	Points      int64
	VoteStatus  *int
	CreatorID   uint64
	Creator     string
	CreatedAt   time.Time
}

// User 当前 viewer
type User struct {
	ID       uint64
	Username string
	Email    string
}

// page posts(limit,cursor) 的一个参数变体：只存实体引用，不存实体本身
type page struct {
	key     string
	ids     []uint64
	hasMore bool
}

// Store 客户端规格化缓存。实体按 id 存一份，列表只存引用，
// mutation 完成后通过 Apply 打补丁保持一致，避免整页回源。
// 所有读写都发生在同一个 mutation 回调里，单线程使用，不加锁。
type Store struct {
	posts map[uint64]Post
	pages []*page
	byKey map[string]*page
	// lastWrite 最近一次 WritePage 命中的变体，hasMore 以它为准；
	// 变体被覆盖重写时 pages 里的位置不动，所以不能用切片尾推断
	lastWrite *page

	me      *User
	meValid bool // me 是否已缓存（包括"缓存了未登录"这种情况）
}

func New() *Store {
	return &Store{
		posts: make(map[uint64]Post),
		byKey: make(map[string]*page),
	}
}

func pageKey(limit int, cursor string) string {
	return fmt.Sprintf("posts(limit:%d,cursor:%q)", limit, cursor)
}

// WritePage 把一页网络结果规格化写入：实体进实体表，引用进变体列表
func (s *Store) WritePage(limit int, cursor string, posts []Post, hasMore bool) {
	key := pageKey(limit, cursor)
	ids := make([]uint64, len(posts))
	for i, p := range posts {
		s.posts[p.ID] = p
		ids[i] = p.ID
	}

	if pg, ok := s.byKey[key]; ok {
		pg.ids = ids
		pg.hasMore = hasMore
		s.lastWrite = pg
		return
	}
	pg := &page{key: key, ids: ids, hasMore: hasMore}
	s.byKey[key] = pg
	s.pages = append(s.pages, pg)
	s.lastWrite = pg
}

// ListResult 分页合并结果。Partial 表示请求的那一页不在缓存里，
// 已有内容可以先用，但需要回网络补齐。
type ListResult struct {
	Posts   []Post
	HasMore bool
	Partial bool
}

// ResolvePosts 把所有已缓存的变体按首次写入顺序拼成一个列表；
// hasMore 取最近一次写入的那页的值。一个变体都没有时返回 nil（完全 miss）。
func (s *Store) ResolvePosts(limit int, cursor string) *ListResult {
	if len(s.pages) == 0 {
		return nil
	}

	_, exact := s.byKey[pageKey(limit, cursor)]
	res := &ListResult{Partial: !exact}
	for _, pg := range s.pages {
		for _, id := range pg.ids {
			if p, ok := s.posts[id]; ok {
				res.Posts = append(res.Posts, p)
			}
		}
	}
	res.HasMore = s.lastWrite.hasMore
	return res
}

// ReadPost 读单个实体
func (s *Store) ReadPost(id uint64) (Post, bool) {
	p, ok := s.posts[id]
	return p, ok
}

// ReadMe 第二个返回值为 false 表示 me 还没缓存过
func (s *Store) ReadMe() (*User, bool) {
	if !s.meValid {
		return nil, false
	}
	return s.me, true
}
