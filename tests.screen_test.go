package main

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleScreens(t *testing.T) {
	console, _ := newTestConsole(t, "pt-BR", nil)
	assert.Equal(t, []string{BooksCollection, AuthorsCollection, CategoriesCollection}, console.Names())

	_, err := console.Screen("publishers")
	assert.ErrorIs(t, err, ErrUnknownScreen)

	require.NoError(t, console.MountAll(context.Background()))
	books, err := console.Screen(BooksCollection)
	require.NoError(t, err)
	view := books.View().(BookScreenView)
	assert.Len(t, view.List.Items, 1)
	assert.Equal(t, []Category{{ID: 3, Name: "Romance"}, {ID: 9, Name: "Poesia"}}, view.Categories.Items)
	assert.Len(t, view.Authors.Items, 2)
}

func TestBookScreenSharesReferenceLists(t *testing.T) {
	console, _ := newTestConsole(t, "pt-BR", nil)
	require.NoError(t, console.MountAll(context.Background()))

	authors, err := console.Screen(AuthorsCollection)
	require.NoError(t, err)
	require.NoError(t, authors.Open(nil))
	require.NoError(t, authors.Patch([]byte(`{"name":"Graciliano Ramos"}`)))
	require.NoError(t, authors.Submit(context.Background()))

	books, err := console.Screen(BooksCollection)
	require.NoError(t, err)
	view := books.View().(BookScreenView)
	assert.Len(t, view.Authors.Items, 3, "the books screen sees the reloaded authors")
}

func TestEntityScreenOpenUnknownEntity(t *testing.T) {
	console, _ := newTestConsole(t, "pt-BR", nil)
	screen, err := console.Screen(CategoriesCollection)
	require.NoError(t, err)
	require.NoError(t, screen.Mount(context.Background()))

	id := 404
	assert.ErrorIs(t, screen.Open(&id), ErrEntityNotFound)

	id = 9
	require.NoError(t, screen.Open(&id))
	view := screen.View().(EntityScreenView[Category, NameDraft])
	assert.Equal(t, ModeEdit, view.Session.Mode)
	assert.Equal(t, NameDraft{Name: "Poesia"}, view.Session.Draft)
	require.NotNil(t, view.Session.Editing)
	assert.Equal(t, 9, view.Session.Editing.ID)
}

func TestEntityScreenDelete(t *testing.T) {
	recorder := &MockRecorder{}
	console, fs := newTestConsole(t, "pt-BR", recorder)
	screen, err := console.Screen(BooksCollection)
	require.NoError(t, err)
	require.NoError(t, screen.Mount(context.Background()))

	t.Run("should pass: removes then reloads", func(t *testing.T) {
		before := len(fs.Calls())
		screen.Delete(context.Background(), 5)
		calls := fs.Calls()[before:]
		require.Len(t, calls, 2)
		assert.Equal(t, http.MethodDelete, calls[0].Method)
		assert.Equal(t, "/api/books/5", calls[0].Path)
		assert.Equal(t, http.MethodGet, calls[1].Method)
		assert.Empty(t, screen.View().(BookScreenView).List.Items)
	})

	t.Run("should pass: failure is silent for the screen", func(t *testing.T) {
		fs.SetFailure("DELETE /api/books/77", http.StatusInternalServerError, "boom")
		before := len(fs.Calls())
		screen.Delete(context.Background(), 77)
		assert.Len(t, fs.Calls()[before:], 2, "the list reloads anyway")
		view := screen.View().(BookScreenView)
		assert.Empty(t, view.List.Error)
		assert.Empty(t, view.Session.Message)
	})

	records := recorder.All()
	require.Len(t, records, 2)
	assert.Equal(t, Activity{Collection: BooksCollection, Action: ActionDelete, EntityID: 5, Outcome: OutcomeSucceeded}, records[0])
	assert.Equal(t, OutcomeFailed, records[1].Outcome)
	assert.Equal(t, 77, records[1].EntityID)
}

func TestEntityScreenRecordsSubmissions(t *testing.T) {
	recorder := &MockRecorder{}
	console, fs := newTestConsole(t, "en", recorder)
	screen, err := console.Screen(AuthorsCollection)
	require.NoError(t, err)
	require.NoError(t, screen.Mount(context.Background()))

	require.NoError(t, screen.Open(nil))
	assert.Error(t, screen.Submit(context.Background()))
	assert.Empty(t, recorder.All(), "validation failures are not journaled")

	fs.SetFailure("POST /api/authors", http.StatusConflict, "name already taken")
	require.NoError(t, screen.Patch([]byte(`{"name":"Machado de Assis"}`)))
	assert.Error(t, screen.Submit(context.Background()))
	view := screen.View().(EntityScreenView[Author, NameDraft])
	assert.Equal(t, "name already taken", view.Session.Message)

	records := recorder.All()
	require.Len(t, records, 1)
	assert.Equal(t, Activity{Collection: AuthorsCollection, Action: ActionCreate, Outcome: OutcomeFailed, Message: "name already taken"}, records[0])
}

// TestBookScreenRejectedSubmissions covers the store rejecting a book creation
// and a book update with the same response.
func TestBookScreenRejectedSubmissions(t *testing.T) {
	console, fs := newTestConsole(t, "pt-BR", nil)
	screen, err := console.Screen(BooksCollection)
	require.NoError(t, err)
	require.NoError(t, screen.Mount(context.Background()))

	t.Run("should fail: creation shows the response body", func(t *testing.T) {
		fs.SetFailure("POST /api/books", http.StatusBadRequest, "duplicate isbn")
		require.NoError(t, screen.Open(nil))
		require.NoError(t, screen.Patch([]byte(`{"title":"Iracema","authorId":"1","categoryId":"3","isbn":"978-85-08-13413-3"}`)))

		err := screen.Submit(context.Background())
		var rejection *ServerRejection
		require.True(t, errors.As(err, &rejection))
		assert.Equal(t, http.StatusBadRequest, rejection.Status)

		view := screen.View().(BookScreenView)
		assert.Equal(t, SessionOpen, view.Session.State)
		assert.Equal(t, ModeCreate, view.Session.Mode)
		assert.Equal(t, "duplicate isbn", view.Session.Message)
		assert.Equal(t, "Iracema", view.Session.Draft.Title)
	})

	t.Run("should fail: update shows the fixed message", func(t *testing.T) {
		fs.SetFailure("PUT /api/books/5", http.StatusBadRequest, "duplicate isbn")
		id := 5
		require.NoError(t, screen.Open(&id))
		require.NoError(t, screen.Patch([]byte(`{"isbn":"978-85-08-13413-3"}`)))

		err := screen.Submit(context.Background())
		var rejection *ServerRejection
		require.True(t, errors.As(err, &rejection))
		assert.Equal(t, http.StatusBadRequest, rejection.Status)

		view := screen.View().(BookScreenView)
		assert.Equal(t, SessionOpen, view.Session.State)
		assert.Equal(t, ModeEdit, view.Session.Mode)
		assert.Equal(t, "Erro ao atualizar livro", view.Session.Message)
		assert.Equal(t, "978-85-08-13413-3", view.Session.Draft.ISBN)
	})
}

// TestEntityScreenMutationsOutliveTheCaller ensures a cancelled request
// context neither aborts the store calls nor the reload after them.
func TestEntityScreenMutationsOutliveTheCaller(t *testing.T) {
	console, fs := newTestConsole(t, "pt-BR", nil)
	screen, err := console.Screen(AuthorsCollection)
	require.NoError(t, err)
	require.NoError(t, screen.Mount(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("should pass: submit", func(t *testing.T) {
		require.NoError(t, screen.Open(nil))
		require.NoError(t, screen.Patch([]byte(`{"name":"Rachel de Queiroz"}`)))
		before := len(fs.Calls())
		require.NoError(t, screen.Submit(ctx))

		calls := fs.Calls()[before:]
		require.Len(t, calls, 2)
		assert.Equal(t, http.MethodPost, calls[0].Method)
		assert.Equal(t, http.MethodGet, calls[1].Method)
		view := screen.View().(EntityScreenView[Author, NameDraft])
		assert.Equal(t, SessionClosed, view.Session.State)
		assert.Len(t, view.List.Items, 3)
	})

	t.Run("should pass: delete", func(t *testing.T) {
		before := len(fs.Calls())
		screen.Delete(ctx, 2)

		calls := fs.Calls()[before:]
		require.Len(t, calls, 2)
		assert.Equal(t, http.MethodDelete, calls[0].Method)
		assert.Equal(t, http.MethodGet, calls[1].Method)
		view := screen.View().(EntityScreenView[Author, NameDraft])
		assert.Len(t, view.List.Items, 2)
		assert.Empty(t, view.List.Error)
	})
}
