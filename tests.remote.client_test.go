package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemoteClientList(t *testing.T) {
	fs := NewFakeStore(t)
	l := NewLocalizer("pt-BR")
	client := NewAuthorsClient(zap.NewNop(), fs.Server.Client(), fs.Server.URL, l)

	t.Run("should pass: returns the collection in server order", func(t *testing.T) {
		authors, err := client.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []Author{{ID: 1, Name: "Machado de Assis"}, {ID: 2, Name: "Clarice Lispector"}}, authors)
		calls := fs.Calls()
		assert.Equal(t, http.MethodGet, calls[len(calls)-1].Method)
		assert.Equal(t, "/api/authors", calls[len(calls)-1].Path)
	})

	t.Run("should fail: non success status", func(t *testing.T) {
		fs.SetFailure("GET /api/authors", http.StatusInternalServerError, "boom")
		_, err := client.List(context.Background())
		var rejection *ServerRejection
		require.True(t, errors.As(err, &rejection))
		assert.Equal(t, http.StatusInternalServerError, rejection.Status)
		assert.Equal(t, "Erro ao buscar autores.", rejection.Message)
	})

	t.Run("should fail: malformed body", func(t *testing.T) {
		fs.SetFailure("GET /api/authors", http.StatusOK, "{not json")
		_, err := client.List(context.Background())
		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
	})

	t.Run("should fail: unreachable store", func(t *testing.T) {
		unreachable := NewAuthorsClient(zap.NewNop(), nil, "http://127.0.0.1:1", l)
		_, err := unreachable.List(context.Background())
		var transport *TransportError
		assert.True(t, errors.As(err, &transport))
	})
}

func TestRemoteClientCreate(t *testing.T) {
	fs := NewFakeStore(t)
	l := NewLocalizer("pt-BR")
	client := NewBooksClient(zap.NewNop(), fs.Server.Client(), fs.Server.URL, l)
	payload := BookPayload{Title: "Memórias Póstumas", AuthorID: 1, CategoryID: 3, ISBN: "978-85-7232-144-9"}

	t.Run("should pass: posts the payload", func(t *testing.T) {
		created, err := client.Create(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "Machado de Assis", created.AuthorName)

		calls := fs.Calls()
		last := calls[len(calls)-1]
		assert.Equal(t, http.MethodPost, last.Method)
		assert.Equal(t, "/api/books", last.Path)
		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(last.Body), &sent))
		assert.Equal(t, map[string]interface{}{
			"title":      "Memórias Póstumas",
			"authorId":   float64(1),
			"categoryId": float64(3),
			"isbn":       "978-85-7232-144-9",
		}, sent)
	})

	t.Run("should fail: body text becomes the message", func(t *testing.T) {
		fs.SetFailure("POST /api/books", http.StatusBadRequest, "duplicate isbn\n")
		_, err := client.Create(context.Background(), payload)
		var rejection *ServerRejection
		require.True(t, errors.As(err, &rejection))
		assert.Equal(t, "duplicate isbn", rejection.Message)
	})

	t.Run("should fail: empty body gives the generic message", func(t *testing.T) {
		fs.SetFailure("POST /api/books", http.StatusBadRequest, "")
		_, err := client.Create(context.Background(), payload)
		assert.EqualError(t, err, "Erro ao criar livro")
	})
}

func TestRemoteClientUpdate(t *testing.T) {
	fs := NewFakeStore(t)
	client := NewBooksClient(zap.NewNop(), fs.Server.Client(), fs.Server.URL, NewLocalizer("pt-BR"))

	t.Run("should pass: puts on the item url", func(t *testing.T) {
		err := client.Update(context.Background(), 5, BookPayload{Title: "Dom Casmurro", AuthorID: 1, CategoryID: 3, ISBN: "x"})
		require.NoError(t, err)
		calls := fs.Calls()
		assert.Equal(t, http.MethodPut, calls[len(calls)-1].Method)
		assert.Equal(t, "/api/books/5", calls[len(calls)-1].Path)
	})

	t.Run("should fail: body is never surfaced", func(t *testing.T) {
		fs.SetFailure("PUT /api/books/5", http.StatusBadRequest, "duplicate isbn")
		err := client.Update(context.Background(), 5, BookPayload{Title: "Dom Casmurro", AuthorID: 1, CategoryID: 3, ISBN: "x"})
		assert.EqualError(t, err, "Erro ao atualizar livro")
	})
}

func TestRemoteClientRemove(t *testing.T) {
	fs := NewFakeStore(t)
	client := NewCategoriesClient(zap.NewNop(), fs.Server.Client(), fs.Server.URL+"/", NewLocalizer("en"))

	require.NoError(t, client.Remove(context.Background(), 9))
	calls := fs.Calls()
	assert.Equal(t, http.MethodDelete, calls[len(calls)-1].Method)
	assert.Equal(t, "/api/categories/9", calls[len(calls)-1].Path)

	fs.SetFailure("DELETE /api/categories/3", http.StatusConflict, "in use")
	err := client.Remove(context.Background(), 3)
	var rejection *ServerRejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, http.StatusConflict, rejection.Status)
}
