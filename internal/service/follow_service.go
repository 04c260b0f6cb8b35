package service

import (
	"context"
	"errors"
	"time"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type FollowService struct {
	repo *mysql.FollowRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		repo: &mysql.FollowRepository{DB: db},
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, authorID uint64) (bool, error) {
	if followerID == 0 || authorID == 0 {
		return false, errors.New("invalid user id")
	}
	if followerID == authorID {
		return false, ErrSelfFollow
	}
	return s.repo.Follow(ctx, followerID, authorID)
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID uint64) (bool, error) {
	if followerID == 0 || authorID == 0 {
		return false, errors.New("invalid user id")
	}
	if followerID == authorID {
		return false, ErrSelfFollow
	}
	return s.repo.Unfollow(ctx, followerID, authorID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, authorID uint64) (bool, error) {
	if followerID == 0 || authorID == 0 {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, followerID, authorID)
}

type Sender func(ctx context.Context, ob *model.FollowOutbox) error

// OutboxRelayer 轮询 outbox 表，把关注事件异步投递出去
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
		pkg.Logger.Error().Err(err).Msg("outbox query failed")
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

// LogSender 未配置 kafka 时的默认 sender，只落日志
func LogSender(_ context.Context, ob *model.FollowOutbox) error {
	pkg.Logger.Info().
		Str("event", ob.EventType).
		Uint64("follower", ob.Follower).
		Uint64("author", ob.Author).
		Msg("follow event")
	return nil
}

// KafkaSender 按 follower 作为分区键投递到 kafka
func KafkaSender(producer *pkg.FollowEventProducer) Sender {
	return func(ctx context.Context, ob *model.FollowOutbox) error {
		return producer.SendEvent(ctx, ob.Follower, []byte(ob.Payload))
	}
}
