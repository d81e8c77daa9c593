package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

type MockActivityStorage struct {
	AddFunc    func(ctx context.Context, id string, activity Activity) error
	GetOneFunc func(ctx context.Context, id string) (Activity, error)
	DeleteFunc func(ctx context.Context, id string) error
	GetAllFunc func(ctx context.Context) ([]Activity, error)
}

// Add mocks the behavior of activity insertion by the repository.
func (m *MockActivityStorage) Add(ctx context.Context, id string, activity Activity) error {
	return m.AddFunc(ctx, id, activity)
}

// GetOne mocks the behavior of retrieving an activity by the repository.
func (m *MockActivityStorage) GetOne(ctx context.Context, id string) (Activity, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting an activity by the repository.
func (m *MockActivityStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all activities by the repository.
func (m *MockActivityStorage) GetAll(ctx context.Context) ([]Activity, error) {
	return m.GetAllFunc(ctx)
}

type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, activity Activity) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Activity, error)
}

// Push mocks the behavior of pushing an activity to the queue.
func (m *MockQueuer) Push(ctx context.Context, qid string, activity Activity) error {
	return m.PushFunc(ctx, qid, activity)
}

// Pop mocks the behavior of retrieving an activity from the queue.
func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Activity, error) {
	return m.PopFunc(ctx, qids...)
}

// MockEntityClient mocks a remote collection.
type MockEntityClient[T any, P any] struct {
	ListFunc   func(ctx context.Context) ([]T, error)
	CreateFunc func(ctx context.Context, payload P) (T, error)
	UpdateFunc func(ctx context.Context, id int, payload P) error
	RemoveFunc func(ctx context.Context, id int) error
}

func (m *MockEntityClient[T, P]) List(ctx context.Context) ([]T, error) {
	return m.ListFunc(ctx)
}

func (m *MockEntityClient[T, P]) Create(ctx context.Context, payload P) (T, error) {
	return m.CreateFunc(ctx, payload)
}

func (m *MockEntityClient[T, P]) Update(ctx context.Context, id int, payload P) error {
	return m.UpdateFunc(ctx, id, payload)
}

func (m *MockEntityClient[T, P]) Remove(ctx context.Context, id int) error {
	return m.RemoveFunc(ctx, id)
}

// MockRecorder keeps every recorded activity.
type MockRecorder struct {
	mu      sync.Mutex
	Records []Activity
}

func (m *MockRecorder) Record(_ context.Context, collection, action string, entityID int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity := Activity{Collection: collection, Action: action, EntityID: entityID, Outcome: OutcomeSucceeded}
	if err != nil {
		activity.Outcome = OutcomeFailed
		activity.Message = err.Error()
	}
	m.Records = append(m.Records, activity)
}

// All returns a copy of the recorded activities.
func (m *MockRecorder) All() []Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Activity(nil), m.Records...)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// StoreRequest is a request received by the fake remote store.
type StoreRequest struct {
	Method string
	Path   string
	Body   string
}

// FakeStore is an in-memory remote catalog store served over httptest.
// Fail maps "METHOD /path" to a forced status and body.
type FakeStore struct {
	mu         sync.Mutex
	Server     *httptest.Server
	Authors    []Author
	Categories []Category
	Books      []Book
	Fail       map[string]FakeFailure
	Requests   []StoreRequest
	nextID     int
}

// FakeFailure is a forced store response.
type FakeFailure struct {
	Status int
	Body   string
}

// NewFakeStore starts a fake store seeded with a small catalog. The
// server is closed at the end of the test.
func NewFakeStore(t *testing.T) *FakeStore {
	t.Helper()
	fs := &FakeStore{
		Authors:    []Author{{ID: 1, Name: "Machado de Assis"}, {ID: 2, Name: "Clarice Lispector"}},
		Categories: []Category{{ID: 9, Name: "Poesia"}, {ID: 3, Name: "Romance"}},
		Books: []Book{
			{ID: 5, Title: "Dom Casmurro", AuthorName: "Machado de Assis", CategoryName: "Romance", ISBN: "978-85-359-0277-8"},
		},
		Fail:   map[string]FakeFailure{},
		nextID: 100,
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.Server.Close)
	return fs
}

// Calls returns the requests received so far.
func (fs *FakeStore) Calls() []StoreRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]StoreRequest(nil), fs.Requests...)
}

// SetFailure forces the response of the given "METHOD /path" key.
func (fs *FakeStore) SetFailure(key string, status int, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.Fail[key] = FakeFailure{Status: status, Body: body}
}

func (fs *FakeStore) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.Requests = append(fs.Requests, StoreRequest{Method: r.Method, Path: r.URL.Path, Body: string(data)})

	if f, ok := fs.Fail[r.Method+" "+r.URL.Path]; ok {
		w.WriteHeader(f.Status)
		_, _ = w.Write([]byte(f.Body))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	collection := parts[1]
	id := 0
	if len(parts) == 3 {
		id, _ = strconv.Atoi(parts[2])
	}

	switch {
	case r.Method == http.MethodGet && id == 0:
		fs.writeList(w, collection)
	case r.Method == http.MethodPost && id == 0:
		fs.nextID++
		fs.create(w, collection, fs.nextID, data)
	case r.Method == http.MethodPut && id != 0:
		fs.update(collection, id, data)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete && id != 0:
		fs.remove(collection, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *FakeStore) writeList(w http.ResponseWriter, collection string) {
	w.Header().Set("Content-Type", "application/json")
	switch collection {
	case AuthorsCollection:
		_ = json.NewEncoder(w).Encode(fs.Authors)
	case CategoriesCollection:
		_ = json.NewEncoder(w).Encode(fs.Categories)
	case BooksCollection:
		_ = json.NewEncoder(w).Encode(fs.Books)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fs *FakeStore) authorOf(id int) string {
	for _, a := range fs.Authors {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}

func (fs *FakeStore) categoryOf(id int) string {
	for _, c := range fs.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (fs *FakeStore) create(w http.ResponseWriter, collection string, id int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	switch collection {
	case AuthorsCollection:
		var p NamePayload
		_ = json.Unmarshal(data, &p)
		a := Author{ID: id, Name: p.Name}
		fs.Authors = append(fs.Authors, a)
		_ = json.NewEncoder(w).Encode(a)
	case CategoriesCollection:
		var p NamePayload
		_ = json.Unmarshal(data, &p)
		c := Category{ID: id, Name: p.Name}
		fs.Categories = append(fs.Categories, c)
		_ = json.NewEncoder(w).Encode(c)
	case BooksCollection:
		var p BookPayload
		_ = json.Unmarshal(data, &p)
		b := Book{ID: id, Title: p.Title, AuthorName: fs.authorOf(p.AuthorID), CategoryName: fs.categoryOf(p.CategoryID), ISBN: p.ISBN}
		fs.Books = append(fs.Books, b)
		_ = json.NewEncoder(w).Encode(b)
	}
}

func (fs *FakeStore) update(collection string, id int, data []byte) {
	switch collection {
	case AuthorsCollection:
		var p NamePayload
		_ = json.Unmarshal(data, &p)
		for i := range fs.Authors {
			if fs.Authors[i].ID == id {
				fs.Authors[i].Name = p.Name
			}
		}
	case CategoriesCollection:
		var p NamePayload
		_ = json.Unmarshal(data, &p)
		for i := range fs.Categories {
			if fs.Categories[i].ID == id {
				fs.Categories[i].Name = p.Name
			}
		}
	case BooksCollection:
		var p BookPayload
		_ = json.Unmarshal(data, &p)
		for i := range fs.Books {
			if fs.Books[i].ID == id {
				fs.Books[i] = Book{ID: id, Title: p.Title, AuthorName: fs.authorOf(p.AuthorID), CategoryName: fs.categoryOf(p.CategoryID), ISBN: p.ISBN}
			}
		}
	}
}

func (fs *FakeStore) remove(collection string, id int) {
	switch collection {
	case AuthorsCollection:
		kept := []Author{}
		for _, a := range fs.Authors {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		fs.Authors = kept
	case CategoriesCollection:
		kept := []Category{}
		for _, c := range fs.Categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		fs.Categories = kept
	case BooksCollection:
		kept := []Book{}
		for _, b := range fs.Books {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		fs.Books = kept
	}
}

// newTestConsole builds a console against the fake store.
func newTestConsole(t *testing.T, locale string, recorder ActivityRecorder) (*Console, *FakeStore) {
	t.Helper()
	fs := NewFakeStore(t)
	console := NewConsole(zap.NewNop(), fs.Server.Client(), fs.Server.URL, recorder, NewLocalizer(locale))
	return console, fs
}
