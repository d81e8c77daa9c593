package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltActivityStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient sets up the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.BoltDB.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltActivityStorage provides a bolt based activity journal. Keys are
// activity ids so the cursor order follows their byte order.
func NewBoltActivityStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) *boltActivityStorage {
	return &boltActivityStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the underlying database.
func (bs *boltActivityStorage) Close() error {
	return bs.client.Close()
}

// Add inserts or replaces an activity record.
func (bs *boltActivityStorage) Add(_ context.Context, id string, activity Activity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(id), data)
	})
}

// GetOne retrieves an activity record based on its ID.
func (bs *boltActivityStorage) GetOne(_ context.Context, id string) (Activity, error) {
	var activity Activity
	tx, err := bs.client.Begin(false)
	if err != nil {
		return activity, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bs.config.BucketName)).Get([]byte(id))
	if result == nil {
		return activity, ErrActivityNotFound
	}
	err = json.Unmarshal(result, &activity)
	return activity, err
}

// Delete removes an activity record based on its ID.
func (bs *boltActivityStorage) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bs.config.BucketName))
		if b.Get([]byte(id)) == nil {
			return ErrActivityNotFound
		}
		return b.Delete([]byte(id))
	})
}

// GetAll retrieves every mirrored activity.
func (bs *boltActivityStorage) GetAll(_ context.Context) ([]Activity, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()
	activities := []Activity{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var activity Activity
		if err = json.Unmarshal(v, &activity); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
