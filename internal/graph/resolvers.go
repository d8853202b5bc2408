package graph

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"gqlgateway/internal/catalog"

	"github.com/graphql-go/graphql"
)

// MissingReferenceError reports a book whose author or title key has no
// record. The schema declares both fields non-null, so the error nulls the
// enclosing book and is listed in the response errors.
type MissingReferenceError struct {
	Field string
	Key   string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s: no record named %q", e.Field, e.Key)
}

func (e *MissingReferenceError) Unwrap() error {
	return catalog.ErrDanglingReference
}

func (e *MissingReferenceError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "MISSING_REFERENCE", "field": e.Field, "key": e.Key}
}

func depsFrom(p graphql.ResolveParams) (Deps, error) {
	d, ok := DepsFrom(p.Context)
	if !ok {
		return Deps{}, ErrNoDeps
	}
	return d, nil
}

func catalogFrom(p graphql.ResolveParams) (*catalog.Catalog, error) {
	d, err := depsFrom(p)
	if err != nil {
		return nil, err
	}
	if d.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog", ErrNoDeps)
	}
	return d.Catalog, nil
}

func resolveLibraries(p graphql.ResolveParams) (interface{}, error) {
	c, err := catalogFrom(p)
	if err != nil {
		return nil, err
	}
	return c.Libraries(), nil
}

func resolveLibraryBooks(p graphql.ResolveParams) (interface{}, error) {
	var branch string
	switch l := p.Source.(type) {
	case catalog.Library:
		branch = l.Branch
	case *catalog.Library:
		branch = l.Branch
	default:
		return nil, fmt.Errorf("Library.books: unexpected parent %T", p.Source)
	}

	c, err := catalogFrom(p)
	if err != nil {
		return nil, err
	}
	return c.BooksAt(branch), nil
}

func bookFrom(source interface{}) (catalog.Book, error) {
	switch b := source.(type) {
	case catalog.Book:
		return b, nil
	case *catalog.Book:
		return *b, nil
	default:
		return catalog.Book{}, fmt.Errorf("unexpected parent %T", source)
	}
}

func resolveBookAuthor(p graphql.ResolveParams) (interface{}, error) {
	book, err := bookFrom(p.Source)
	if err != nil {
		return nil, fmt.Errorf("Book.author: %w", err)
	}
	c, err := catalogFrom(p)
	if err != nil {
		return nil, err
	}
	a, ok := c.Author(book.Author)
	if !ok {
		return nil, &MissingReferenceError{Field: "Book.author", Key: book.Author}
	}
	return a, nil
}

func resolveBookTitle(p graphql.ResolveParams) (interface{}, error) {
	book, err := bookFrom(p.Source)
	if err != nil {
		return nil, fmt.Errorf("Book.title: %w", err)
	}
	c, err := catalogFrom(p)
	if err != nil {
		return nil, err
	}
	t, ok := c.Title(book.Title)
	if !ok {
		return nil, &MissingReferenceError{Field: "Book.title", Key: book.Title}
	}
	return t, nil
}

func resolveSatellites(p graphql.ResolveParams) (interface{}, error) {
	d, err := depsFrom(p)
	if err != nil {
		return nil, err
	}
	if d.Satellites == nil {
		return nil, fmt.Errorf("%w: satellites", ErrNoDeps)
	}
	return fetchAsync(p.Context, func(ctx context.Context) (interface{}, error) {
		return list(d.Satellites.Satellites(ctx))
	}), nil
}

func resolveLocations(p graphql.ResolveParams) (interface{}, error) {
	d, err := depsFrom(p)
	if err != nil {
		return nil, err
	}
	if d.Satellites == nil {
		return nil, fmt.Errorf("%w: satellites", ErrNoDeps)
	}
	return fetchAsync(p.Context, func(ctx context.Context) (interface{}, error) {
		return list(d.Satellites.Locations(ctx))
	}), nil
}

func resolveAPOD(p graphql.ResolveParams) (interface{}, error) {
	d, err := depsFrom(p)
	if err != nil {
		return nil, err
	}
	if d.Astronomy == nil {
		return nil, fmt.Errorf("%w: astronomy", ErrNoDeps)
	}
	return fetchAsync(p.Context, func(ctx context.Context) (interface{}, error) {
		obj, err := d.Astronomy.APOD(ctx)
		if err != nil || obj == nil {
			return nil, err
		}
		return obj, nil
	}), nil
}

func resolveNEOs(p graphql.ResolveParams) (interface{}, error) {
	d, err := depsFrom(p)
	if err != nil {
		return nil, err
	}
	if d.Astronomy == nil {
		return nil, fmt.Errorf("%w: astronomy", ErrNoDeps)
	}
	return fetchAsync(p.Context, func(ctx context.Context) (interface{}, error) {
		return list(d.Astronomy.NEOs(ctx))
	}), nil
}

// list turns a nil slice into an untyped nil so the field serialises as null.
func list(v []any, err error) (interface{}, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

// fetchAsync starts fetch immediately and hands the executor a thunk, so
// sibling root fields that call upstream services wait on each other only
// when their results are collected.
func fetchAsync(ctx context.Context, fetch func(context.Context) (interface{}, error)) func() (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	type result struct {
		value interface{}
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered in resolver: error=%v stack=%s", r, string(debug.Stack()))
				ch <- result{err: fmt.Errorf("internal error: %v", r)}
			}
		}()
		v, err := fetch(ctx)
		ch <- result{value: v, err: err}
	}()

	return func() (interface{}, error) {
		r := <-ch
		return r.value, r.err
	}
}
