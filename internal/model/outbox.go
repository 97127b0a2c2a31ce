package model

import "time"

// EventOutbox 活动事件表：帖子/投票写库时同事务落一行，由 relayer 异步投递
type EventOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // post_created / post_deleted / vote_cast
	ActorID   uint64 `gorm:"not null"`
	PostID    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EventOutbox) TableName() string { return "event_outbox" }
