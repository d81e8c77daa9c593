package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityQueue is the id of the queue carrying journaled activities.
const ActivityQueue = "catalog.activities"

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of activities.
type Queuer interface {
	Push(ctx context.Context, qid string, activity Activity) error
	Pop(ctx context.Context, qids ...string) (string, Activity, error)
}

// redisQueue is a redis list based queue.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an activity onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, activity Activity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, data).Err()
}

// Pop blocks until an activity is available on one of the queues.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Activity, error) {
	var activity Activity
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return "", activity, err
	}
	if err = json.Unmarshal([]byte(infos[1]), &activity); err != nil {
		return "", activity, err
	}
	return infos[0], activity, nil
}
