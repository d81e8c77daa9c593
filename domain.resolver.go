package main

import "strconv"

// NameToID returns the id of the first entry named name.
func NameToID[T Named](list []T, name string) (int, bool) {
	for _, item := range list {
		if item.DisplayName() == name {
			return item.Identifier(), true
		}
	}
	return 0, false
}

// ContainsID reports whether an entry with the given id is in list.
func ContainsID[T Named](list []T, id int) bool {
	for _, item := range list {
		if item.Identifier() == id {
			return true
		}
	}
	return false
}

// ReferenceResolver maps the author and category names of a listed book
// back to identifiers using the currently loaded reference lists.
type ReferenceResolver struct {
	authors    *ListStore[Author]
	categories *ListStore[Category]
}

// NewReferenceResolver provides a resolver reading from both stores.
func NewReferenceResolver(authors *ListStore[Author], categories *ListStore[Category]) *ReferenceResolver {
	return &ReferenceResolver{authors: authors, categories: categories}
}

// Selection returns the dropdown selections of book in their string form.
// An unresolved name, including one looked up in a list not loaded yet,
// yields an empty selection.
func (rr *ReferenceResolver) Selection(book Book) (authorID, categoryID string) {
	if id, ok := NameToID(rr.authors.Items(), book.AuthorName); ok {
		authorID = strconv.Itoa(id)
	}
	if id, ok := NameToID(rr.categories.Items(), book.CategoryName); ok {
		categoryID = strconv.Itoa(id)
	}
	return authorID, categoryID
}

// Draft builds the edit draft of an existing book.
func (rr *ReferenceResolver) Draft(book Book) BookDraft {
	authorID, categoryID := rr.Selection(book)
	return BookDraft{
		Title:      book.Title,
		AuthorID:   authorID,
		CategoryID: categoryID,
		ISBN:       book.ISBN,
	}
}

// Known reports whether the selected ids exist in the loaded lists. The
// check is skipped for a list which never loaded.
func (rr *ReferenceResolver) Known(authorID, categoryID int) (authorOK, categoryOK bool) {
	authors := rr.authors.Snapshot()
	categories := rr.categories.Snapshot()
	authorOK = !authors.Loaded || ContainsID(authors.Items, authorID)
	categoryOK = !categories.Loaded || ContainsID(categories.Items, categoryID)
	return authorOK, categoryOK
}
