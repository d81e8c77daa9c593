package main

import (
	"context"

	"go.uber.org/zap"
)

// Screen is the page controller of one console screen.
type Screen interface {
	Name() string
	Mount(ctx context.Context) error
	Reload(ctx context.Context) error
	View() interface{}
	Open(id *int) error
	Patch(data []byte) error
	Cancel()
	Submit(ctx context.Context) error
	Delete(ctx context.Context, id int)
	Reloads() uint64
}

// EntityScreenView is the observable state of a screen.
type EntityScreenView[T any, D any] struct {
	Screen  string            `json:"screen"`
	List    ListSnapshot[T]   `json:"list"`
	Session SessionView[T, D] `json:"session"`
}

// EntityScreen wires the list, the remote collection and the edit session
// of one entity type.
type EntityScreen[T any, D any, P any] struct {
	logger     *zap.Logger
	collection string
	store      *ListStore[T]
	remote     EntityClient[T, P]
	session    *EditSession[T, D, P]
	recorder   ActivityRecorder
	idOf       func(T) int
}

// NewEntityScreen provides the controller of collection.
func NewEntityScreen[T any, D any, P any](logger *zap.Logger, collection string, store *ListStore[T], remote EntityClient[T, P], form DraftForm[T, D, P], recorder ActivityRecorder, l *Localizer) *EntityScreen[T, D, P] {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &EntityScreen[T, D, P]{
		logger:     logger,
		collection: collection,
		store:      store,
		remote:     remote,
		session:    NewEditSession[T, D, P](logger, collection, form, remote, store, l.Collection(collection).SaveFailed),
		recorder:   recorder,
		idOf:       form.ID,
	}
}

func (es *EntityScreen[T, D, P]) Name() string {
	return es.collection
}

// Mount loads the screen list.
func (es *EntityScreen[T, D, P]) Mount(ctx context.Context) error {
	return es.store.Reload(ctx)
}

// Reload re-fetches the screen list.
func (es *EntityScreen[T, D, P]) Reload(ctx context.Context) error {
	return es.store.Reload(ctx)
}

// Reloads returns how many times the screen list was fetched.
func (es *EntityScreen[T, D, P]) Reloads() uint64 {
	return es.store.Reloads()
}

func (es *EntityScreen[T, D, P]) View() interface{} {
	return es.view()
}

func (es *EntityScreen[T, D, P]) view() EntityScreenView[T, D] {
	return EntityScreenView[T, D]{
		Screen:  es.collection,
		List:    es.store.Snapshot(),
		Session: es.session.View(),
	}
}

// Open starts a creation session when id is nil, otherwise an edit session
// of the listed entity with that id.
func (es *EntityScreen[T, D, P]) Open(id *int) error {
	if id == nil {
		return es.session.Open(nil)
	}
	entity, ok := es.store.Find(func(item T) bool { return es.idOf(item) == *id })
	if !ok {
		return ErrEntityNotFound
	}
	return es.session.Open(&entity)
}

func (es *EntityScreen[T, D, P]) Patch(data []byte) error {
	return es.session.Patch(data)
}

func (es *EntityScreen[T, D, P]) Cancel() {
	es.session.Cancel()
}

// Submit submits the session and journals the attempted mutation.
func (es *EntityScreen[T, D, P]) Submit(ctx context.Context) error {
	result, err := es.session.Submit(ctx)
	if result.Attempted {
		es.recorder.Record(ctx, es.collection, result.Action, result.EntityID, err)
	}
	return err
}

// Delete removes the entity then reloads the list whatever the outcome.
// A failed removal is logged and journaled, never shown on the screen.
// Both requests run to completion even when ctx is cancelled.
func (es *EntityScreen[T, D, P]) Delete(ctx context.Context, id int) {
	ctx = context.WithoutCancel(ctx)
	err := es.remote.Remove(ctx, id)
	if err != nil {
		es.logger.Warn("screen: delete failed",
			zap.String("screen", es.collection),
			zap.Int("entity.id", id),
			zap.Error(err),
		)
	}
	es.recorder.Record(ctx, es.collection, ActionDelete, id, err)
	_ = es.store.Reload(ctx)
}
