package main

import (
	"strconv"
	"strings"
)

var (
	_ DraftForm[Author, NameDraft, NamePayload]   = (*NameForm[Author])(nil)
	_ DraftForm[Category, NameDraft, NamePayload] = (*NameForm[Category])(nil)
	_ DraftForm[Book, BookDraft, BookPayload]     = (*BookForm)(nil)
)

// NameForm edits entities made of a single required name.
type NameForm[T Named] struct {
	required string
}

// NewNameForm provides the form shared by authors and categories.
func NewNameForm[T Named](l *Localizer) *NameForm[T] {
	return &NameForm[T]{required: l.Text(msgNameRequired)}
}

func (nf *NameForm[T]) Blank() NameDraft {
	return NameDraft{}
}

func (nf *NameForm[T]) Prefill(entity T) NameDraft {
	return NameDraft{Name: entity.DisplayName()}
}

func (nf *NameForm[T]) ID(entity T) int {
	return entity.Identifier()
}

// Validate requires a non-empty name.
func (nf *NameForm[T]) Validate(draft NameDraft) (NamePayload, error) {
	if draft.Name == "" {
		return NamePayload{}, &ValidationError{Field: "name", Message: nf.required}
	}
	return NamePayload{Name: draft.Name}, nil
}

// BookForm edits books. Its drafts carry identifiers while listed books
// only carry names, so pre-filling goes through the resolver.
type BookForm struct {
	resolver *ReferenceResolver
	l        *Localizer
}

// NewBookForm provides the book form.
func NewBookForm(resolver *ReferenceResolver, l *Localizer) *BookForm {
	return &BookForm{resolver: resolver, l: l}
}

func (bf *BookForm) Blank() BookDraft {
	return BookDraft{}
}

func (bf *BookForm) Prefill(book Book) BookDraft {
	return bf.resolver.Draft(book)
}

func (bf *BookForm) ID(book Book) int {
	return book.ID
}

// Validate requires title, author, category and isbn, then converts the
// selections to identifiers known by the loaded reference lists.
func (bf *BookForm) Validate(draft BookDraft) (BookPayload, error) {
	required := []struct {
		field string
		value string
	}{
		{"title", draft.Title},
		{"authorId", draft.AuthorID},
		{"categoryId", draft.CategoryID},
		{"isbn", draft.ISBN},
	}
	for _, r := range required {
		if r.value == "" {
			return BookPayload{}, &ValidationError{Field: r.field, Message: bf.l.Text(msgAllRequired)}
		}
	}

	authorID, err := strconv.Atoi(strings.TrimSpace(draft.AuthorID))
	if err != nil {
		return BookPayload{}, &ValidationError{Field: "authorId", Message: bf.l.Text(msgInvalidSelection)}
	}
	categoryID, err := strconv.Atoi(strings.TrimSpace(draft.CategoryID))
	if err != nil {
		return BookPayload{}, &ValidationError{Field: "categoryId", Message: bf.l.Text(msgInvalidSelection)}
	}

	authorOK, categoryOK := bf.resolver.Known(authorID, categoryID)
	if !authorOK {
		return BookPayload{}, &ValidationError{Field: "authorId", Message: bf.l.Text(msgUnknownAuthor)}
	}
	if !categoryOK {
		return BookPayload{}, &ValidationError{Field: "categoryId", Message: bf.l.Text(msgUnknownCategory)}
	}

	return BookPayload{
		Title:      draft.Title,
		AuthorID:   authorID,
		CategoryID: categoryID,
		ISBN:       draft.ISBN,
	}, nil
}
