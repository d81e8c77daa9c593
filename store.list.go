package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ListLoader fetches a whole collection.
type ListLoader[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// ListSnapshot is a point in time copy of a ListStore state.
type ListSnapshot[T any] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Loaded  bool   `json:"loaded"`
	Error   string `json:"error,omitempty"`
}

// ListStore owns the local copy of one remote collection. The copy is never
// patched: every reload replaces it wholesale. Concurrent reloads are not
// coalesced, the last response to land wins.
type ListStore[T any] struct {
	mu          sync.RWMutex
	logger      *zap.Logger
	collection  string
	loader      ListLoader[T]
	order       func([]T)
	fetchFailed string
	items       []T
	loading     bool
	loaded      bool
	lastError   string
	reloads     uint64
}

// NewListStore provides an empty store for collection. The order hook, when
// not nil, re-orders each freshly fetched list before it is published.
func NewListStore[T any](logger *zap.Logger, collection string, loader ListLoader[T], fetchFailed string, order func([]T)) *ListStore[T] {
	return &ListStore[T]{
		logger:      logger,
		collection:  collection,
		loader:      loader,
		order:       order,
		fetchFailed: fetchFailed,
		items:       []T{},
	}
}

// NewAuthorStore provides the authors store, kept in server order.
func NewAuthorStore(logger *zap.Logger, client ListLoader[Author], l *Localizer) *ListStore[Author] {
	return NewListStore[Author](logger, AuthorsCollection, client, l.Collection(AuthorsCollection).FetchFailed, nil)
}

// NewCategoryStore provides the categories store, sorted by ascending id.
func NewCategoryStore(logger *zap.Logger, client ListLoader[Category], l *Localizer) *ListStore[Category] {
	return NewListStore[Category](logger, CategoriesCollection, client, l.Collection(CategoriesCollection).FetchFailed, SortCategoriesByID)
}

// NewBookStore provides the books store, kept in server order.
func NewBookStore(logger *zap.Logger, client ListLoader[Book], l *Localizer) *ListStore[Book] {
	return NewListStore[Book](logger, BooksCollection, client, l.Collection(BooksCollection).FetchFailed, nil)
}

// Reload re-fetches the collection. On failure the current items are kept
// and a human readable error is exposed. The loading flag is always reset.
func (s *ListStore[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.reloads++
	s.mu.Unlock()

	items, err := s.loader.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = s.fetchFailed
		s.logger.Error("store: failed to reload list", zap.String("store.collection", s.collection), zap.Error(err))
		return err
	}
	if s.order != nil {
		s.order(items)
	}
	s.items = items
	s.loaded = true
	s.lastError = ""
	s.logger.Debug("store: list reloaded", zap.String("store.collection", s.collection), zap.Int("store.size", len(items)))
	return nil
}

// Snapshot returns a copy of the current state.
func (s *ListStore[T]) Snapshot() ListSnapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ListSnapshot[T]{
		Items:   s.copyItems(),
		Loading: s.loading,
		Loaded:  s.loaded,
		Error:   s.lastError,
	}
}

// Items returns a copy of the current items.
func (s *ListStore[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItems()
}

// Find returns the first item matching the predicate.
func (s *ListStore[T]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Reloads returns how many reloads were started so far.
func (s *ListStore[T]) Reloads() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloads
}

func (s *ListStore[T]) copyItems() []T {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}
