package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is a deploy-time source of catalog snapshots. The gateway only
// ever reads from it, once, at startup.
type Repository interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
	SaveSnapshot(ctx context.Context, s Snapshot) error
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// LoadSnapshot reads all four tables ordered by position, so table order
// matches the order the rows were seeded in.
func (r *PostgresRepo) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot

	libraries, err := queryRows(ctx, r.db, `SELECT branch FROM catalog_libraries ORDER BY position ASC`,
		func(rows pgx.Rows) (Library, error) {
			var l Library
			err := rows.Scan(&l.Branch)
			return l, err
		})
	if err != nil {
		return Snapshot{}, fmt.Errorf("load libraries: %w", err)
	}
	s.Libraries = libraries

	books, err := queryRows(ctx, r.db, `SELECT title, author, branch FROM catalog_books ORDER BY position ASC`,
		func(rows pgx.Rows) (Book, error) {
			var b Book
			err := rows.Scan(&b.Title, &b.Author, &b.Branch)
			return b, err
		})
	if err != nil {
		return Snapshot{}, fmt.Errorf("load books: %w", err)
	}
	s.Books = books

	authors, err := queryRows(ctx, r.db, `SELECT name, favorite_pie FROM catalog_authors ORDER BY position ASC`,
		func(rows pgx.Rows) (Author, error) {
			var a Author
			err := rows.Scan(&a.Name, &a.FavoritePie)
			return a, err
		})
	if err != nil {
		return Snapshot{}, fmt.Errorf("load authors: %w", err)
	}
	s.Authors = authors

	titles, err := queryRows(ctx, r.db, `SELECT name, pages, ebook FROM catalog_titles ORDER BY position ASC`,
		func(rows pgx.Rows) (Title, error) {
			var t Title
			err := rows.Scan(&t.Name, &t.Pages, &t.Ebook)
			return t, err
		})
	if err != nil {
		return Snapshot{}, fmt.Errorf("load titles: %w", err)
	}
	s.Titles = titles

	return s, nil
}

// SaveSnapshot replaces the stored catalog with s in a single transaction.
func (r *PostgresRepo) SaveSnapshot(ctx context.Context, s Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// books reference authors and titles, so they go first
	for _, table := range []string{"catalog_books", "catalog_authors", "catalog_titles", "catalog_libraries"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, l := range s.Libraries {
		if _, err := tx.Exec(ctx, `INSERT INTO catalog_libraries (position, branch) VALUES ($1, $2)`, i, l.Branch); err != nil {
			return fmt.Errorf("insert library %q: %w", l.Branch, err)
		}
	}

	for i, a := range s.Authors {
		if _, err := tx.Exec(ctx, `INSERT INTO catalog_authors (position, name, favorite_pie) VALUES ($1, $2, $3)`,
			i, a.Name, a.FavoritePie); err != nil {
			return fmt.Errorf("insert author %q: %w", a.Name, err)
		}
	}

	for i, t := range s.Titles {
		if _, err := tx.Exec(ctx, `INSERT INTO catalog_titles (position, name, pages, ebook) VALUES ($1, $2, $3, $4)`,
			i, t.Name, t.Pages, t.Ebook); err != nil {
			return fmt.Errorf("insert title %q: %w", t.Name, err)
		}
	}

	for i, b := range s.Books {
		if _, err := tx.Exec(ctx, `INSERT INTO catalog_books (position, title, author, branch) VALUES ($1, $2, $3, $4)`,
			i, b.Title, b.Author, b.Branch); err != nil {
			return fmt.Errorf("insert book %q: %w", b.Title, err)
		}
	}

	return tx.Commit(ctx)
}

func queryRows[T any](ctx context.Context, db *pgxpool.Pool, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
