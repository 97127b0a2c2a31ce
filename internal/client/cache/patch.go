package cache

type PatchKind int

const (
	// PatchVote 投票成功：按服务端同样的算术就地改 points/voteStatus
	PatchVote PatchKind = iota
	// PatchCreatePost 建帖成功：作废所有列表变体，下次读触发回源
	PatchCreatePost
	// PatchDeletePost 删帖成功：驱逐实体并清掉列表里的引用
	PatchDeletePost
	// PatchSetViewer 登录/注册成功：直接改写缓存的 me
	PatchSetViewer
	// PatchClearViewer 登出：缓存 me = 未登录
	PatchClearViewer
)

// Patch 一次 mutation 产生的缓存补丁描述
type Patch struct {
	Kind   PatchKind
	PostID uint64
	Value  int   // PatchVote
	Viewer *User // PatchSetViewer
}

// Apply 中心化的补丁归并入口，所有 mutation 回调都走这一个函数
func (s *Store) Apply(p Patch) {
	switch p.Kind {
	case PatchVote:
		s.applyVote(p.PostID, p.Value)
	case PatchCreatePost:
		s.invalidatePages()
	case PatchDeletePost:
		s.evictPost(p.PostID)
	case PatchSetViewer:
		s.me = p.Viewer
		s.meValid = true
	case PatchClearViewer:
		s.me = nil
		s.meValid = true
	}
}

// applyVote 与服务端投票事务完全相同的点数算术：
// 同值重投不动；首投 ±1；改票 ±2
func (s *Store) applyVote(postID uint64, value int) {
	post, ok := s.posts[postID]
	if !ok {
		return
	}
	if post.VoteStatus != nil && *post.VoteStatus == value {
		return
	}

	delta := int64(value)
	if post.VoteStatus != nil {
		delta = int64(2 * value)
	}
	post.Points += delta
	status := value
	post.VoteStatus = &status
	s.posts[postID] = post
}

// invalidatePages 丢掉所有 posts(...) 变体。实体留着，
// 列表下次读时整体回源重建。
func (s *Store) invalidatePages() {
	s.pages = nil
	s.byKey = make(map[string]*page)
	s.lastWrite = nil
}

func (s *Store) evictPost(postID uint64) {
	delete(s.posts, postID)
	for _, pg := range s.pages {
		ids := pg.ids[:0]
		for _, id := range pg.ids {
			if id != postID {
				ids = append(ids, id)
			}
		}
		pg.ids = ids
	}
}
