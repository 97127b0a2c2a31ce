package pkg

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"

	"plume/internal/model"
)

// EventProducer 把 outbox 事件投到 Kafka，按帖子 id 做分区 key，
// 保证同一帖子的事件有序
type EventProducer struct {
	writer *kafka.Writer
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *EventProducer) Publish(ctx context.Context, ob *model.EventOutbox) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(ob.PostID, 10)),
		Value: []byte(ob.Payload),
	})
}

func (p *EventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
