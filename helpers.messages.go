package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultLocale = "pt-BR"

// Message keys. The english text doubles as the key.
const (
	msgFetchAuthors     = "Failed to fetch authors."
	msgFetchCategories  = "Failed to fetch categories."
	msgFetchBooks       = "Failed to fetch books."
	msgCreateAuthor     = "Failed to create author"
	msgCreateCategory   = "Failed to create category"
	msgCreateBook       = "Failed to create book"
	msgUpdateAuthor     = "Failed to update author"
	msgUpdateCategory   = "Failed to update category"
	msgUpdateBook       = "Failed to update book"
	msgSaveAuthor       = "Failed to save author."
	msgSaveCategory     = "Failed to save category."
	msgSaveBook         = "Failed to save book."
	msgNameRequired     = "Please fill in the name before saving."
	msgAllRequired      = "Please fill in all fields before saving."
	msgUnknownAuthor    = "The selected author is not available."
	msgUnknownCategory  = "The selected category is not available."
	msgInvalidSelection = "The selection is not a valid identifier."
)

var brazilianMessages = map[string]string{
	msgFetchAuthors:     "Erro ao buscar autores.",
	msgFetchCategories:  "Erro ao buscar categorias.",
	msgFetchBooks:       "Erro ao buscar livros.",
	msgCreateAuthor:     "Erro ao criar autor",
	msgCreateCategory:   "Erro ao criar categoria",
	msgCreateBook:       "Erro ao criar livro",
	msgUpdateAuthor:     "Erro ao atualizar autor",
	msgUpdateCategory:   "Erro ao atualizar categoria",
	msgUpdateBook:       "Erro ao atualizar livro",
	msgSaveAuthor:       "Erro ao salvar autor.",
	msgSaveCategory:     "Erro ao salvar categoria.",
	msgSaveBook:         "Erro ao salvar livro.",
	msgNameRequired:     "Por favor, preencha o nome antes de salvar.",
	msgAllRequired:      "Por favor, preencha todos os campos antes de salvar.",
	msgUnknownAuthor:    "O autor selecionado não está disponível.",
	msgUnknownCategory:  "A categoria selecionada não está disponível.",
	msgInvalidSelection: "A seleção não é um identificador válido.",
}

func init() {
	for key, text := range brazilianMessages {
		_ = message.SetString(language.BrazilianPortuguese, key, text)
		_ = message.SetString(language.English, key, key)
	}
}

// CollectionMessages groups the user facing texts of one collection.
type CollectionMessages struct {
	FetchFailed  string
	CreateFailed string
	UpdateFailed string
	SaveFailed   string
}

// Localizer renders console messages in the configured locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer picks the closest supported language for locale.
// An empty locale means DefaultLocale.
func NewLocalizer(locale string) *Localizer {
	if locale == "" {
		locale = DefaultLocale
	}
	tag := message.MatchLanguage(locale, DefaultLocale)
	return &Localizer{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the language in use.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Text translates a message key.
func (l *Localizer) Text(key string) string {
	return l.printer.Sprintf(key)
}

// Collection returns the messages of a given collection.
func (l *Localizer) Collection(collection string) CollectionMessages {
	switch collection {
	case AuthorsCollection:
		return CollectionMessages{
			FetchFailed:  l.Text(msgFetchAuthors),
			CreateFailed: l.Text(msgCreateAuthor),
			UpdateFailed: l.Text(msgUpdateAuthor),
			SaveFailed:   l.Text(msgSaveAuthor),
		}
	case CategoriesCollection:
		return CollectionMessages{
			FetchFailed:  l.Text(msgFetchCategories),
			CreateFailed: l.Text(msgCreateCategory),
			UpdateFailed: l.Text(msgUpdateCategory),
			SaveFailed:   l.Text(msgSaveCategory),
		}
	default:
		return CollectionMessages{
			FetchFailed:  l.Text(msgFetchBooks),
			CreateFailed: l.Text(msgCreateBook),
			UpdateFailed: l.Text(msgUpdateBook),
			SaveFailed:   l.Text(msgSaveBook),
		}
	}
}
