package model

import "time"

type Post struct {
	ID        uint64 `gorm:"primaryKey;index:idx_time_id,priority:2,sort:desc" json:"id"`
	CreatorID uint64 `gorm:"not null;index" json:"creatorId"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Text      string `gorm:"type:text" json:"text"`
	// Points 冗余计数 = 该帖所有 Vote.Value 之和，只允许投票事务调整
	Points    int64     `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `gorm:"index:idx_time_id,priority:1,sort:desc" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}
