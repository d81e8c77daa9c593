package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

var (
	_ ActivityRecorder = (*ActivityService)(nil)
	_ ActivityRecorder = NopRecorder{}
)

// ActivityRecorder journals mutation attempts. Recording never fails the
// caller: errors are logged and dropped.
type ActivityRecorder interface {
	Record(ctx context.Context, collection, action string, entityID int, err error)
}

// ActivityService journals activities into the storage and publishes them
// on the queue for the mirror consumer.
type ActivityService struct {
	logger  *zap.Logger
	clock   Clocker
	ids     UIDHandler
	storage ActivityStorage
	queue   Queuer
}

func NewActivityService(logger *zap.Logger, clock Clocker, ids UIDHandler, storage ActivityStorage, queue Queuer) *ActivityService {
	return &ActivityService{
		logger:  logger,
		clock:   clock,
		ids:     ids,
		storage: storage,
		queue:   queue,
	}
}

// Record builds the activity of a mutation attempt and journals it. The
// work survives the cancellation of the calling request.
func (as *ActivityService) Record(ctx context.Context, collection, action string, entityID int, err error) {
	ctx = context.WithoutCancel(ctx)
	activity := Activity{
		ID:         as.ids.Generate(ActivityIDPrefix),
		Collection: collection,
		Action:     action,
		EntityID:   entityID,
		Outcome:    OutcomeSucceeded,
		At:         as.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	if err != nil {
		activity.Outcome = OutcomeFailed
		activity.Message = err.Error()
	}

	if qerr := as.queue.Push(ctx, ActivityQueue, activity); qerr != nil {
		as.logger.Error("service: failed to push activity to queue", zap.String("qid", ActivityQueue), zap.Error(qerr))
	}
	if serr := as.storage.Add(ctx, activity.ID, activity); serr != nil {
		as.logger.Error("service: failed to store activity", zap.String("activity.id", activity.ID), zap.Error(serr))
	}
}

// NopRecorder drops every activity. It is used when the journal is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, string, int, error) {}
