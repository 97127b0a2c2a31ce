package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"plume/internal/model"
	"plume/internal/pkg"
	"plume/internal/repository/mysql"
)

// MaxFeedLimit 单页上限，无论请求多大都压到这里
const MaxFeedLimit = 50

type PostService struct {
	repo *mysql.PostRepository
}

// FeedPage 一页帖子 + 是否还有下一页 + viewer 的投票状态（postID -> value）
type FeedPage struct {
	Posts      []model.Post
	HasMore    bool
	VoteStatus map[uint64]int
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{repo: &mysql.PostRepository{DB: db}}
}

// Feed 倒序时间流。内部多取一条探测 hasMore，返回前裁掉。
func (s *PostService) Feed(ctx context.Context, limit int, cursor string, viewerID uint64) (*FeedPage, error) {
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	if limit < 1 {
		limit = 1
	}

	lastCreatedAt, lastID, err := pkg.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByCursor(ctx, lastCreatedAt, lastID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) == limit+1
	if hasMore {
		rows = rows[:limit]
	}

	ids := make([]uint64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	statuses, err := s.repo.VoteStatuses(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	return &FeedPage{Posts: rows, HasMore: hasMore, VoteStatus: statuses}, nil
}

// GetPost 单帖查询；不存在返回 (nil, nil)，由调用方决定如何表达空
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint64) (*model.Post, *int, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	statuses, err := s.repo.VoteStatuses(ctx, viewerID, []uint64{id})
	if err != nil {
		return nil, nil, err
	}
	var status *int
	if v, ok := statuses[id]; ok {
		status = &v
	}
	return post, status, nil
}

func (s *PostService) CreatePost(ctx context.Context, userID uint64, title, text string) (*model.Post, []FieldError, error) {
	if userID == 0 {
		return nil, nil, ErrNotAuthenticated
	}
	if title == "" {
		return nil, fieldErr("title", "title cannot be empty"), nil
	}
	if text == "" {
		return nil, fieldErr("text", "text cannot be empty"), nil
	}

	post := &model.Post{
		CreatorID: userID,
		Title:     title,
		Text:      text,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{"post_id": post.ID, "user_id": userID}).Info("post created")
	return post, nil, nil
}

// UpdatePost 不存在 -> (nil, nil) 静默空返回；非作者 -> ErrNotAuthorised
func (s *PostService) UpdatePost(ctx context.Context, userID, id uint64, title, text string) (*model.Post, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if post.CreatorID != userID {
		return nil, ErrNotAuthorised
	}

	if err = s.repo.Update(ctx, id, title, text); err != nil {
		return nil, err
	}
	post.Title = title
	post.Text = text
	return post, nil
}

// DeletePost 帖子不存在时静默返回 false；帖子存在但不是本人的报 not authorised
func (s *PostService) DeletePost(ctx context.Context, userID, id uint64) (bool, error) {
	if userID == 0 {
		return false, ErrNotAuthenticated
	}
	deleted, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if !deleted {
		// 没删到行：区分"不存在"（幂等 false）和"存在但无权限"
		if _, err := s.repo.FindByID(ctx, id); err == nil {
			return false, ErrNotAuthorised
		}
		return false, nil
	}
	if deleted {
		logrus.WithFields(logrus.Fields{"post_id": id, "user_id": userID}).Info("post deleted")
	}
	return deleted, nil
}
