package main

import "context"

// Mutation actions performed from the console.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Activity outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Activity is one journaled mutation attempt made through the console.
type Activity struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Action     string `json:"action"`
	EntityID   int    `json:"entityId,omitempty"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message,omitempty"`
	At         string `json:"at"` // RFC3339Nano, UTC
}

// ActivityStorage defines possible operations on the activity journal.
type ActivityStorage interface {
	Add(ctx context.Context, id string, activity Activity) error
	GetOne(ctx context.Context, id string) (Activity, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]Activity, error)
}
