package catalog

import (
	"errors"
	"fmt"

	"gqlgateway/internal/validation"
)

var (
	// ErrDuplicateKey is returned when two records share an identity.
	ErrDuplicateKey = errors.New("duplicate catalog key")
	// ErrDanglingReference is returned when a book names an author or title that does not exist.
	ErrDanglingReference = errors.New("dangling catalog reference")
)

// Library is a branch that holds books.
type Library struct {
	Branch string `json:"branch" validate:"required,trimmed"`
}

// Book references its Author and Title by name and its Library by branch.
type Book struct {
	Title  string `json:"title" validate:"required,trimmed"`
	Author string `json:"author" validate:"required,trimmed"`
	Branch string `json:"branch" validate:"required,trimmed"`
}

type Author struct {
	Name        string `json:"name" validate:"required,trimmed"`
	FavoritePie string `json:"favorite_pie" validate:"required"`
}

type Title struct {
	Name  string `json:"name" validate:"required,trimmed"`
	Pages int    `json:"pages" validate:"gt=0"`
	Ebook bool   `json:"ebook"`
}

// Snapshot holds the four ordered tables a Catalog is built from.
type Snapshot struct {
	Libraries []Library
	Books     []Book
	Authors   []Author
	Titles    []Title
}

// Catalog is the read-only store behind the library part of the schema.
// It is built once and never mutated; all accessors return copies.
type Catalog struct {
	libraries     []Library
	books         []Book
	authors       []Author
	titles        []Title
	authorsByName map[string]Author
	titlesByName  map[string]Title
	booksByBranch map[string][]Book
}

// New validates s and indexes it. Every book must reference exactly one
// author and one title; a book whose branch matches no library is kept but
// is unreachable through any library.
func New(s Snapshot) (*Catalog, error) {
	c := &Catalog{
		libraries:     append([]Library(nil), s.Libraries...),
		books:         append([]Book(nil), s.Books...),
		authors:       append([]Author(nil), s.Authors...),
		titles:        append([]Title(nil), s.Titles...),
		authorsByName: make(map[string]Author, len(s.Authors)),
		titlesByName:  make(map[string]Title, len(s.Titles)),
		booksByBranch: make(map[string][]Book),
	}

	branches := make(map[string]struct{}, len(c.libraries))
	for i, l := range c.libraries {
		if err := validation.Join(validation.ValidateStruct(l)); err != nil {
			return nil, fmt.Errorf("library %d: %w", i, err)
		}
		if _, ok := branches[l.Branch]; ok {
			return nil, fmt.Errorf("library %q: %w", l.Branch, ErrDuplicateKey)
		}
		branches[l.Branch] = struct{}{}
	}

	for i, a := range c.authors {
		if err := validation.Join(validation.ValidateStruct(a)); err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		if _, ok := c.authorsByName[a.Name]; ok {
			return nil, fmt.Errorf("author %q: %w", a.Name, ErrDuplicateKey)
		}
		c.authorsByName[a.Name] = a
	}

	for i, t := range c.titles {
		if err := validation.Join(validation.ValidateStruct(t)); err != nil {
			return nil, fmt.Errorf("title %d: %w", i, err)
		}
		if _, ok := c.titlesByName[t.Name]; ok {
			return nil, fmt.Errorf("title %q: %w", t.Name, ErrDuplicateKey)
		}
		c.titlesByName[t.Name] = t
	}

	for i, b := range c.books {
		if err := validation.Join(validation.ValidateStruct(b)); err != nil {
			return nil, fmt.Errorf("book %d: %w", i, err)
		}
		if _, ok := c.authorsByName[b.Author]; !ok {
			return nil, fmt.Errorf("book %q: author %q: %w", b.Title, b.Author, ErrDanglingReference)
		}
		if _, ok := c.titlesByName[b.Title]; !ok {
			return nil, fmt.Errorf("book %q: title %q: %w", b.Title, b.Title, ErrDanglingReference)
		}
		c.booksByBranch[b.Branch] = append(c.booksByBranch[b.Branch], b)
	}

	return c, nil
}

// Libraries returns every library in table order.
func (c *Catalog) Libraries() []Library {
	return append([]Library{}, c.libraries...)
}

// BooksAt returns the books stocked at branch in table order. The result is
// empty, not nil, when the branch has no books.
func (c *Catalog) BooksAt(branch string) []Book {
	return append([]Book{}, c.booksByBranch[branch]...)
}

func (c *Catalog) Author(name string) (Author, bool) {
	a, ok := c.authorsByName[name]
	return a, ok
}

func (c *Catalog) Title(name string) (Title, bool) {
	t, ok := c.titlesByName[name]
	return t, ok
}

// Snapshot returns a copy of the tables the catalog was built from.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Libraries: append([]Library(nil), c.libraries...),
		Books:     append([]Book(nil), c.books...),
		Authors:   append([]Author(nil), c.authors...),
		Titles:    append([]Title(nil), c.titles...),
	}
}
