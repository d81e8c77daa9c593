package main

import (
	"sort"
)

// Named is implemented by entities which can be looked up by display name.
type Named interface {
	Identifier() int
	DisplayName() string
}

// Author represents an author entity as served by the remote store.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (a Author) Identifier() int     { return a.ID }
func (a Author) DisplayName() string { return a.Name }

// Category represents a category entity as served by the remote store.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c Category) Identifier() int     { return c.ID }
func (c Category) DisplayName() string { return c.Name }

// Book is the denormalized list representation of a book. The store embeds
// the author and category names instead of their identifiers.
type Book struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	AuthorName   string `json:"authorName"`
	CategoryName string `json:"categoryName"`
	ISBN         string `json:"isbn"`
}

// NamePayload is the wire body of author and category mutations.
type NamePayload struct {
	Name string `json:"name"`
}

// BookPayload is the normalized wire body of book mutations.
type BookPayload struct {
	Title      string `json:"title"`
	AuthorID   int    `json:"authorId"`
	CategoryID int    `json:"categoryId"`
	ISBN       string `json:"isbn"`
}

// NameDraft holds the editable fields of an author or a category.
type NameDraft struct {
	Name string `json:"name"`
}

// BookDraft holds the editable fields of a book. Selections keep the
// string form of the chosen identifier, empty meaning nothing selected.
type BookDraft struct {
	Title      string `json:"title"`
	AuthorID   string `json:"authorId"`
	CategoryID string `json:"categoryId"`
	ISBN       string `json:"isbn"`
}

// SortCategoriesByID orders categories by ascending id. Only the
// categories collection is re-ordered after a fetch.
func SortCategoriesByID(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})
}
