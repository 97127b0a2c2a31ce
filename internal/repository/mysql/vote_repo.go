package mysql

import (
	"context"
	"errors"

	"plume/internal/model"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

// Cast 投票事务：
//   - 无历史投票：插入投票行并把帖子 points 加 value
//   - 已有同值投票：幂等，不产生任何写入
//   - 已有反向投票：原地改值并把 points 加 2*value（撤旧 + 记新）
//
// points 永远用数据库端的相对增量表达式调整，不做应用层读改写。
// 同一用户并发投同一帖时，插入撞唯一键按"已有投票"分支处理而不是报错。
// 返回 changed=false 表示本次是幂等命中。
func (r *VoteRepository) Cast(ctx context.Context, userID, postID uint64, value int) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote model.Vote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			createErr := tx.Create(&model.Vote{UserID: userID, PostID: postID, Value: value}).Error
			if createErr == nil {
				if err = adjustPoints(tx, postID, int64(value)); err != nil {
					return err
				}
				changed = true
				return insertOutbox(tx, "vote_cast", userID, postID)
			}
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return createErr
			}
			// 输掉唯一键竞争：重读后走已有投票的分支
			if err = tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if vote.Value == value {
			changed = false
			return nil
		}

		if err := tx.Model(&model.Vote{}).Where("id = ?", vote.ID).Update("value", value).Error; err != nil {
			return err
		}
		if err := adjustPoints(tx, postID, int64(2*value)); err != nil {
			return err
		}
		changed = true
		return insertOutbox(tx, "vote_cast", userID, postID)
	})
	return changed, err
}

// adjustPoints 相对增量更新；帖子不存在时让整个事务以 ErrRecordNotFound 回滚
func adjustPoints(tx *gorm.DB, postID uint64, delta int64) error {
	res := tx.Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
