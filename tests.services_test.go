package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActivityServiceRecord(t *testing.T) {
	var stored, pushed []Activity
	repo := &MockActivityStorage{
		AddFunc: func(ctx context.Context, id string, activity Activity) error {
			stored = append(stored, activity)
			return nil
		},
	}
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, activity Activity) error {
			assert.Equal(t, ActivityQueue, qid)
			pushed = append(pushed, activity)
			return nil
		},
	}
	svc := NewActivityService(zap.NewNop(), NewMockClocker(), NewMockUIDHandler("0", true), repo, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Record(ctx, BooksCollection, ActionUpdate, 5, nil)
	svc.Record(context.Background(), AuthorsCollection, ActionCreate, 0, errors.New("duplicate name"))

	require.Len(t, stored, 2)
	assert.Equal(t, stored, pushed)
	assert.Equal(t, Activity{
		ID:         "a:0",
		Collection: BooksCollection,
		Action:     ActionUpdate,
		EntityID:   5,
		Outcome:    OutcomeSucceeded,
		At:         "2023-07-02T00:00:00Z",
	}, stored[0])
	assert.Equal(t, OutcomeFailed, stored[1].Outcome)
	assert.Equal(t, "duplicate name", stored[1].Message)
}

func TestActivityServiceRecordNeverFails(t *testing.T) {
	repo := &MockActivityStorage{
		AddFunc: func(ctx context.Context, id string, activity Activity) error {
			return errors.New("storage failure")
		},
	}
	queue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, activity Activity) error {
			return errors.New("queue failure")
		},
	}
	svc := NewActivityService(zap.NewNop(), NewMockClocker(), NewMockUIDHandler("0", true), repo, queue)
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), BooksCollection, ActionDelete, 1, nil)
	})
}

func TestBoltDBConsumer(t *testing.T) {
	activities := make(chan Activity, 2)
	activities <- Activity{ID: "a:0", Collection: BooksCollection}
	activities <- Activity{ID: "a:1", Collection: AuthorsCollection}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue := &MockQueuer{
		PopFunc: func(ctx context.Context, qids ...string) (string, Activity, error) {
			select {
			case a := <-activities:
				return ActivityQueue, a, nil
			case <-ctx.Done():
				return "", Activity{}, ctx.Err()
			}
		},
	}

	var mu sync.Mutex
	var mirrored []string
	done := make(chan struct{}, 2)
	repo := &MockActivityStorage{
		AddFunc: func(ctx context.Context, id string, activity Activity) error {
			mu.Lock()
			mirrored = append(mirrored, id)
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
	}

	consumer := NewBoltDBConsumer(zap.NewNop(), queue, repo)
	errc := make(chan error, 1)
	go func() { errc <- consumer.Consume(ctx, ActivityQueue) }()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("activity not mirrored in time")
		}
	}
	cancel()
	assert.NoError(t, <-errc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a:0", "a:1"}, mirrored)
}
