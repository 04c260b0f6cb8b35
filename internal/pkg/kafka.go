package pkg

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultFollowTopic 关注事件默认主题
const DefaultFollowTopic = "yatube.follow-events"

// FollowEventProducer 把 outbox 里的关注事件投递到 kafka。
// 以 follower id 做分区键，保证同一关注者的 follow/unfollow 顺序。
type FollowEventProducer struct {
	writer *kafka.Writer
}

func NewFollowEventProducer(brokers []string, topic string) *FollowEventProducer {
	if topic == "" {
		topic = DefaultFollowTopic
	}
	return &FollowEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *FollowEventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// SendEvent 投递一条关注事件，payload 为 outbox 行的原始 JSON
func (p *FollowEventProducer) SendEvent(ctx context.Context, followerID uint64, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(followerID, 10)),
		Value: payload,
	})
}
