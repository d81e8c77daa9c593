package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type (
	SessionState string
	SessionMode  string
)

const (
	SessionClosed     SessionState = "closed"
	SessionOpen       SessionState = "open"
	SessionSubmitting SessionState = "submitting"

	ModeCreate SessionMode = "create"
	ModeEdit   SessionMode = "edit"
)

// DraftForm describes how one entity type is edited: its blank and
// pre-filled drafts, and the validation turning a draft into a payload.
type DraftForm[T any, D any, P any] interface {
	Blank() D
	Prefill(entity T) D
	Validate(draft D) (P, error)
	ID(entity T) int
}

// Mutator is the write side of a remote collection.
type Mutator[T any, P any] interface {
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int, payload P) error
}

// Reloader re-synchronizes a local list with the remote store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// SessionView is the observable state of an edit session.
type SessionView[T any, D any] struct {
	State   SessionState `json:"state"`
	Mode    SessionMode  `json:"mode,omitempty"`
	Editing *T           `json:"editing,omitempty"`
	Draft   D            `json:"draft"`
	Message string       `json:"message,omitempty"`
}

// SubmitResult describes the mutation a submit attempted, if any.
type SubmitResult struct {
	Attempted bool
	Action    string
	EntityID  int
}

// EditSession drives a single create or edit dialog. The inline message
// overlays the open and submitting states without changing them.
type EditSession[T any, D any, P any] struct {
	mu         sync.Mutex
	logger     *zap.Logger
	collection string
	form       DraftForm[T, D, P]
	remote     Mutator[T, P]
	list       Reloader
	saveFailed string
	state      SessionState
	mode       SessionMode
	editing    *T
	draft      D
	message    string
	generation uint64
}

// NewEditSession provides a closed session for one collection.
func NewEditSession[T any, D any, P any](logger *zap.Logger, collection string, form DraftForm[T, D, P], remote Mutator[T, P], list Reloader, saveFailed string) *EditSession[T, D, P] {
	return &EditSession[T, D, P]{
		logger:     logger,
		collection: collection,
		form:       form,
		remote:     remote,
		list:       list,
		saveFailed: saveFailed,
		state:      SessionClosed,
		draft:      form.Blank(),
	}
}

// Open starts a session. A nil entity opens a creation dialog with a blank
// draft, otherwise an edit dialog pre-filled from the entity. Opening over
// an open dialog replaces it.
func (es *EditSession[T, D, P]) Open(entity *T) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.state == SessionSubmitting {
		return ErrSessionBusy
	}
	es.generation++
	es.message = ""
	es.state = SessionOpen
	if entity == nil {
		es.mode = ModeCreate
		es.editing = nil
		es.draft = es.form.Blank()
		return nil
	}
	editing := *entity
	es.mode = ModeEdit
	es.editing = &editing
	es.draft = es.form.Prefill(editing)
	return nil
}

// Patch updates draft fields from a json object. Unknown keys are rejected
// and absent keys keep their current value.
func (es *EditSession[T, D, P]) Patch(data []byte) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	switch es.state {
	case SessionClosed:
		return ErrSessionClosed
	case SessionSubmitting:
		return ErrSessionBusy
	}
	draft := es.draft
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&draft); err != nil {
		return fmt.Errorf("invalid draft fields: %w", err)
	}
	es.draft = draft
	return nil
}

// Cancel closes the session whatever its state and discards the draft.
// A submit still in flight will not affect the session anymore.
func (es *EditSession[T, D, P]) Cancel() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.close()
}

// Submit validates the draft then creates or updates the entity. Validation
// failures never reach the network. Once sent, the request is not cancelled
// with ctx. On success the session closes and the
// owning list reloads. On failure the session stays open with the draft
// preserved and the error message shown inline.
func (es *EditSession[T, D, P]) Submit(ctx context.Context) (SubmitResult, error) {
	var result SubmitResult
	es.mu.Lock()
	switch es.state {
	case SessionClosed:
		es.mu.Unlock()
		return result, ErrSessionClosed
	case SessionSubmitting:
		es.mu.Unlock()
		return result, ErrSessionBusy
	}

	payload, err := es.form.Validate(es.draft)
	if err != nil {
		es.message = InlineMessage(err, es.saveFailed)
		es.mu.Unlock()
		return result, err
	}

	es.message = ""
	es.state = SessionSubmitting
	generation := es.generation
	result.Attempted = true
	result.Action = ActionCreate
	if es.mode == ModeEdit {
		result.Action = ActionUpdate
		result.EntityID = es.form.ID(*es.editing)
	}
	es.mu.Unlock()

	// a started mutation and its reload outlive the caller.
	ctx = context.WithoutCancel(ctx)
	if result.Action == ActionCreate {
		_, err = es.remote.Create(ctx, payload)
	} else {
		err = es.remote.Update(ctx, result.EntityID, payload)
	}

	es.mu.Lock()
	current := es.generation == generation
	if err != nil {
		if current {
			es.state = SessionOpen
			es.message = InlineMessage(err, es.saveFailed)
		}
		es.mu.Unlock()
		es.logger.Error("session: failed to submit",
			zap.String("session.collection", es.collection),
			zap.String("session.action", result.Action),
			zap.Int("session.entity", result.EntityID),
			zap.Error(err),
		)
		return result, err
	}
	if current {
		es.close()
	}
	es.mu.Unlock()

	es.logger.Info("session: submitted",
		zap.String("session.collection", es.collection),
		zap.String("session.action", result.Action),
		zap.Int("session.entity", result.EntityID),
	)
	// the list error, if any, is exposed by the list itself.
	_ = es.list.Reload(ctx)
	return result, nil
}

// View returns a copy of the session state.
func (es *EditSession[T, D, P]) View() SessionView[T, D] {
	es.mu.Lock()
	defer es.mu.Unlock()
	view := SessionView[T, D]{
		State:   es.state,
		Draft:   es.draft,
		Message: es.message,
	}
	if es.state != SessionClosed {
		view.Mode = es.mode
	}
	if es.editing != nil {
		editing := *es.editing
		view.Editing = &editing
	}
	return view
}

// close must be called with the lock held.
func (es *EditSession[T, D, P]) close() {
	es.generation++
	es.state = SessionClosed
	es.mode = ""
	es.editing = nil
	es.draft = es.form.Blank()
	es.message = ""
}
