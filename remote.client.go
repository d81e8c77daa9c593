package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Collections served by the remote store under `/api/`.
const (
	AuthorsCollection    = "authors"
	CategoriesCollection = "categories"
	BooksCollection      = "books"
)

// Ensure each typed client satisfies EntityClient.
var (
	_ EntityClient[Author, NamePayload]   = (*RemoteClient[Author, NamePayload])(nil)
	_ EntityClient[Category, NamePayload] = (*RemoteClient[Category, NamePayload])(nil)
	_ EntityClient[Book, BookPayload]     = (*RemoteClient[Book, BookPayload])(nil)
)

// EntityClient defines the operations available on one remote collection.
// T is the listed representation and P the mutation payload.
type EntityClient[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int, payload P) error
	Remove(ctx context.Context, id int) error
}

// RemoteClient is a stateless http client bound to one collection endpoint.
// Every call is attempted exactly once, no retry and no client side timeout.
type RemoteClient[T any, P any] struct {
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
	collection string
	messages   CollectionMessages
}

// NewRemoteClient provides a client for `{origin}/api/{collection}`.
func NewRemoteClient[T any, P any](logger *zap.Logger, httpClient *http.Client, origin, collection string, messages CollectionMessages) *RemoteClient[T, P] {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RemoteClient[T, P]{
		logger:     logger,
		httpClient: httpClient,
		endpoint:   strings.TrimRight(origin, "/") + "/api/" + collection,
		collection: collection,
		messages:   messages,
	}
}

// NewAuthorsClient provides the client of the authors collection.
func NewAuthorsClient(logger *zap.Logger, httpClient *http.Client, origin string, l *Localizer) *RemoteClient[Author, NamePayload] {
	return NewRemoteClient[Author, NamePayload](logger, httpClient, origin, AuthorsCollection, l.Collection(AuthorsCollection))
}

// NewCategoriesClient provides the client of the categories collection.
func NewCategoriesClient(logger *zap.Logger, httpClient *http.Client, origin string, l *Localizer) *RemoteClient[Category, NamePayload] {
	return NewRemoteClient[Category, NamePayload](logger, httpClient, origin, CategoriesCollection, l.Collection(CategoriesCollection))
}

// NewBooksClient provides the client of the books collection.
func NewBooksClient(logger *zap.Logger, httpClient *http.Client, origin string, l *Localizer) *RemoteClient[Book, BookPayload] {
	return NewRemoteClient[Book, BookPayload](logger, httpClient, origin, BooksCollection, l.Collection(BooksCollection))
}

// List fetches the whole collection in server order.
func (rc *RemoteClient[T, P]) List(ctx context.Context) ([]T, error) {
	op := "list " + rc.collection
	resp, err := rc.do(ctx, http.MethodGet, rc.endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &ServerRejection{Op: op, Status: resp.StatusCode, Message: rc.messages.FetchFailed}
	}

	items := []T{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts a new entity. On rejection the response body text becomes
// the error message, or the generic creation message when the body is empty.
func (rc *RemoteClient[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var created T
	op := "create " + rc.collection
	resp, err := rc.do(ctx, http.MethodPost, rc.endpoint, payload)
	if err != nil {
		return created, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return created, &TransportError{Op: op, Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = rc.messages.CreateFailed
		}
		return created, &ServerRejection{Op: op, Status: resp.StatusCode, Message: message}
	}

	// the created record is informative only, the list is re-fetched anyway.
	if len(body) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			rc.logger.Debug("remote: created entity body ignored",
				zap.String("remote.collection", rc.collection),
				zap.Error(err),
			)
		}
	}
	return created, nil
}

// Update replaces the entity identified by id. Any rejection is reported
// with the fixed update message, the response body is never surfaced.
func (rc *RemoteClient[T, P]) Update(ctx context.Context, id int, payload P) error {
	op := "update " + rc.collection
	resp, err := rc.do(ctx, http.MethodPut, rc.itemURL(id), payload)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &ServerRejection{Op: op, Status: resp.StatusCode, Message: rc.messages.UpdateFailed}
	}
	return nil
}

// Remove deletes the entity identified by id.
func (rc *RemoteClient[T, P]) Remove(ctx context.Context, id int) error {
	op := "delete " + rc.collection
	resp, err := rc.do(ctx, http.MethodDelete, rc.itemURL(id), nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &ServerRejection{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("delete failed: status %d", resp.StatusCode)}
	}
	return nil
}

func (rc *RemoteClient[T, P]) itemURL(id int) string {
	return rc.endpoint + "/" + strconv.Itoa(id)
}

func (rc *RemoteClient[T, P]) do(ctx context.Context, method, url string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, err
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := rc.httpClient.Do(req)
	if err != nil {
		rc.logger.Error("remote: request failed",
			zap.String("remote.collection", rc.collection),
			zap.String("remote.method", method),
			zap.Error(err),
		)
		return nil, err
	}
	rc.logger.Debug("remote: request done",
		zap.String("remote.collection", rc.collection),
		zap.String("remote.method", method),
		zap.Int("remote.status", resp.StatusCode),
	)
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
