package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// boltDBConsumer mirrors queued activities into the bolt journal.
type boltDBConsumer struct {
	logger *zap.Logger
	queue  Queuer
	repo   ActivityStorage
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, repo ActivityStorage) Consumer {
	return &boltDBConsumer{logger, q, repo}
}

// Consume runs until ctx is done. Failures on a single activity are logged
// and the loop goes on.
func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, activity, err := bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		if qid != ActivityQueue {
			bc.logger.Warn("consumer: received activity on unknown queue id", zap.String("qid", qid), zap.Any("activity", activity))
			continue
		}

		if err = bc.repo.Add(ctx, activity.ID, activity); err != nil {
			bc.logger.Error("consumer: failed to mirror activity", zap.Any("activity", activity), zap.Error(err))
		}
	}
}
