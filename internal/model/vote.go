package model

import "time"

// Vote 一个用户对一个帖子的当前投票；唯一索引保证 (user_id, post_id) 最多一行，
// 改票时原地更新 Value
type Vote struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_post"`
	PostID    uint64 `gorm:"not null;index;uniqueIndex:uk_user_post"`
	Value     int    `gorm:"not null"` // +1 or -1
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Vote) TableName() string {
	return "votes"
}
