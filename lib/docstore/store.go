// Package docstore persists crawled catalog docs to sqlite so a crawl's
// output survives the process that produced it.
package docstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/HoekR/emlo-analysis/lib/docstore/db"
	"github.com/HoekR/emlo-analysis/lib/scrapers/emlo"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (and initializes) a sqlite database at path. `:memory:`
// works as expected.
func Open(path string) (Store, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		return Store{}, err
	}
	return NewStore(sqlite), nil
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Push replaces the stored docs of a collection with the given crawl
// output, all within one transaction.
func (s Store) Push(ctx context.Context, collection string, docs []emlo.Doc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM docs WHERE collection = ?`, collection)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO docs (
				collection, id, result_num, type, date, author,
				origin, addressee, destination, repository
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			collection, doc.Id, doc.ResultNum, doc.Type, doc.Date, doc.Author,
			doc.Origin, doc.Addressee, doc.Destination, doc.Repository,
		)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "stored crawl output", "collection", collection, "docs", len(docs))
	return nil
}

// Pull reads a collection's stored docs back, ordered by result number.
func (s Store) Pull(ctx context.Context, collection string) ([]emlo.Doc, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, result_num, type, date, author,
			origin, addressee, destination, repository
		FROM docs WHERE collection = ? ORDER BY result_num`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []emlo.Doc
	for rows.Next() {
		doc := emlo.Doc{Collection: collection}
		err = rows.Scan(
			&doc.Id, &doc.ResultNum, &doc.Type, &doc.Date, &doc.Author,
			&doc.Origin, &doc.Addressee, &doc.Destination, &doc.Repository,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
