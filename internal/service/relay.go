package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"plume/internal/model"
	"plume/internal/repository/mysql"
)

// Sender 把一条 outbox 事件投递出去（Kafka 或日志）
type Sender func(ctx context.Context, ob *model.EventOutbox) error

// OutboxRelayer 定时扫 event_outbox 表，把 pending 事件交给 sender，
// 失败的记重试留给下一轮
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		logrus.WithError(err).Error("outbox query failed")
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// LogSender 未配置 Kafka 时的默认 sender
func LogSender(ctx context.Context, ob *model.EventOutbox) error {
	logrus.WithFields(logrus.Fields{
		"event": ob.EventType,
		"actor": ob.ActorID,
		"post":  ob.PostID,
	}).Info("outbox event")
	return nil
}
