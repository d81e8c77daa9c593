package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BookScreenView extends the books view with the dropdown options.
type BookScreenView struct {
	Screen     string                       `json:"screen"`
	List       ListSnapshot[Book]           `json:"list"`
	Authors    ListSnapshot[Author]         `json:"authors"`
	Categories ListSnapshot[Category]       `json:"categories"`
	Session    SessionView[Book, BookDraft] `json:"session"`
}

// BookScreen is the books page controller. It shares the author and
// category lists of their own screens as reference lists.
type BookScreen struct {
	*EntityScreen[Book, BookDraft, BookPayload]
	authors    *ListStore[Author]
	categories *ListStore[Category]
}

// NewBookScreen provides the books page controller.
func NewBookScreen(logger *zap.Logger, books *ListStore[Book], authors *ListStore[Author], categories *ListStore[Category], remote EntityClient[Book, BookPayload], recorder ActivityRecorder, l *Localizer) *BookScreen {
	form := NewBookForm(NewReferenceResolver(authors, categories), l)
	return &BookScreen{
		EntityScreen: NewEntityScreen[Book, BookDraft, BookPayload](logger, BooksCollection, books, remote, form, recorder, l),
		authors:      authors,
		categories:   categories,
	}
}

// Mount loads the books and both reference lists side by side. Each list
// keeps its own error, the first one is returned.
func (bs *BookScreen) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return bs.store.Reload(ctx) })
	g.Go(func() error { return bs.authors.Reload(ctx) })
	g.Go(func() error { return bs.categories.Reload(ctx) })
	return g.Wait()
}

func (bs *BookScreen) View() interface{} {
	view := bs.EntityScreen.view()
	return BookScreenView{
		Screen:     view.Screen,
		List:       view.List,
		Authors:    bs.authors.Snapshot(),
		Categories: bs.categories.Snapshot(),
		Session:    view.Session,
	}
}

// Console holds the screens of the catalog console. Authors and categories
// stores are shared with the books screen.
type Console struct {
	screens map[string]Screen
	order   []string
}

// NewConsole builds the three screens against the store located at origin.
func NewConsole(logger *zap.Logger, httpClient *http.Client, origin string, recorder ActivityRecorder, l *Localizer) *Console {
	authorsClient := NewAuthorsClient(logger, httpClient, origin, l)
	categoriesClient := NewCategoriesClient(logger, httpClient, origin, l)
	booksClient := NewBooksClient(logger, httpClient, origin, l)

	authors := NewAuthorStore(logger, authorsClient, l)
	categories := NewCategoryStore(logger, categoriesClient, l)
	books := NewBookStore(logger, booksClient, l)

	return NewConsoleWith(
		NewBookScreen(logger, books, authors, categories, booksClient, recorder, l),
		NewEntityScreen[Author, NameDraft, NamePayload](logger, AuthorsCollection, authors, authorsClient, NewNameForm[Author](l), recorder, l),
		NewEntityScreen[Category, NameDraft, NamePayload](logger, CategoriesCollection, categories, categoriesClient, NewNameForm[Category](l), recorder, l),
	)
}

// NewConsoleWith registers the given screens by name.
func NewConsoleWith(screens ...Screen) *Console {
	c := &Console{screens: make(map[string]Screen, len(screens))}
	for _, s := range screens {
		c.screens[s.Name()] = s
		c.order = append(c.order, s.Name())
	}
	return c
}

// Screen returns the screen registered under name.
func (c *Console) Screen(name string) (Screen, error) {
	s, ok := c.screens[name]
	if !ok {
		return nil, ErrUnknownScreen
	}
	return s, nil
}

// Names returns the screens names in registration order.
func (c *Console) Names() []string {
	return append([]string(nil), c.order...)
}

// MountAll mounts every screen. Failures are kept by each list.
func (c *Console) MountAll(ctx context.Context) error {
	var g errgroup.Group
	for _, name := range c.order {
		s := c.screens[name]
		g.Go(func() error { return s.Mount(ctx) })
	}
	return g.Wait()
}
