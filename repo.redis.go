package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const HActivities string = "catalog.activities.index"

type redisActivityStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisActivityStorage provides a redis hash based activity journal.
func NewRedisActivityStorage(logger *zap.Logger, client *redis.Client) ActivityStorage {
	return &redisActivityStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Add inserts an activity record.
func (rs *redisActivityStorage) Add(ctx context.Context, id string, activity Activity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HActivities, id, data).Err()
}

// GetOne retrieves an activity record based on its ID.
func (rs *redisActivityStorage) GetOne(ctx context.Context, id string) (Activity, error) {
	var activity Activity
	data, err := rs.client.HGet(ctx, HActivities, id).Result()
	if err == redis.Nil {
		return activity, ErrActivityNotFound
	}
	if err != nil {
		return activity, err
	}
	err = json.Unmarshal([]byte(data), &activity)
	return activity, err
}

// Delete removes an activity record based on its ID.
func (rs *redisActivityStorage) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, HActivities, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// GetAll retrieves every journaled activity, in no particular order.
func (rs *redisActivityStorage) GetAll(ctx context.Context) ([]Activity, error) {
	values, err := rs.client.HVals(ctx, HActivities).Result()
	if err != nil {
		return nil, err
	}
	activities := []Activity{}
	for _, data := range values {
		var activity Activity
		if err = json.Unmarshal([]byte(data), &activity); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
