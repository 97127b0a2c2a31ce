package mysql

import (
	"context"
	"time"

	"plume/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return insertOutbox(tx, "post_created", post.CreatorID, post.ID)
	})
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Preload("Creator").First(&post, id).Error
	return &post, err
}

// ListByCursor 游标分页：lastCreatedAt 为零值表示第一页；否则用 (created_at, id)
// 作为严格游标，同一时间点靠 id 打破并列。调用方自行传 limit+1 以探测下一页。
func (r *PostRepository) ListByCursor(ctx context.Context, lastCreatedAt time.Time, lastID uint64, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.WithContext(ctx).Preload("Creator")
	if !lastCreatedAt.IsZero() {
		if lastID > 0 {
			q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", lastCreatedAt, lastCreatedAt, lastID)
		} else {
			// 旧格式游标只带时间戳，退化为纯时间边界
			q = q.Where("created_at < ?", lastCreatedAt)
		}
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *PostRepository) Update(ctx context.Context, id uint64, title, text string) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "text": text}).Error
}

// DeleteOwned 仅作者可删；级联删除投票并落 outbox 事件，单事务。
// 返回 false 表示帖子不存在或不归该用户所有。
func (r *PostRepository) DeleteOwned(ctx context.Context, postID, userID uint64) (bool, error) {
	var deleted bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND creator_id = ?", postID, userID).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Vote{}).Error; err != nil {
			return err
		}
		deleted = true
		return insertOutbox(tx, "post_deleted", userID, postID)
	})
	return deleted, err
}

// VoteStatuses 批量查 viewer 在若干帖子上的投票值，未投的帖子不在结果里
func (r *PostRepository) VoteStatuses(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]int, error) {
	statuses := make(map[uint64]int, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return statuses, nil
	}
	var votes []model.Vote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		statuses[v.PostID] = v.Value
	}
	return statuses, nil
}
