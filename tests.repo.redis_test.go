package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisJournal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping docker based test in short mode")
	}
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	rs := NewRedisActivityStorage(zap.NewNop(), client)
	testActivity := Activity{
		ID:         "a:0",
		Collection: BooksCollection,
		Action:     ActionCreate,
		Outcome:    OutcomeFailed,
		Message:    "duplicate isbn",
		At:         "2023-07-02T00:00:00Z",
	}

	t.Run("Add Activity", func(t *testing.T) {
		err := rs.Add(context.Background(), testActivity.ID, testActivity)
		assert.NoError(t, err)
	})

	t.Run("Get Existent Activity", func(t *testing.T) {
		activity, err := rs.GetOne(context.Background(), testActivity.ID)
		assert.NoError(t, err)
		assert.Equal(t, testActivity, activity)
	})

	t.Run("Get NonExistent Activity", func(t *testing.T) {
		activity, err := rs.GetOne(context.Background(), "a:1")
		assert.Equal(t, ErrActivityNotFound, err)
		assert.Equal(t, Activity{}, activity)
	})

	t.Run("Get All Activities", func(t *testing.T) {
		second := testActivity
		second.ID = "a:1"
		require.NoError(t, rs.Add(context.Background(), second.ID, second))
		activities, err := rs.GetAll(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, len(activities))
	})

	t.Run("Delete Existent Activity", func(t *testing.T) {
		err := rs.Delete(context.Background(), testActivity.ID)
		assert.NoError(t, err)
		_, err = rs.GetOne(context.Background(), testActivity.ID)
		assert.Equal(t, ErrActivityNotFound, err)
	})

	t.Run("Delete NonExistent Activity", func(t *testing.T) {
		err := rs.Delete(context.Background(), testActivity.ID)
		assert.Equal(t, ErrActivityNotFound, err)
	})

	t.Run("Queue Roundtrip", func(t *testing.T) {
		q := NewRedisQueue(client)
		require.NoError(t, q.Push(context.Background(), ActivityQueue, testActivity))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		qid, activity, err := q.Pop(ctx, ActivityQueue)
		require.NoError(t, err)
		assert.Equal(t, ActivityQueue, qid)
		assert.Equal(t, testActivity, activity)
	})
}
