// Package store persists documents and their inverted-index entries in
// PostgreSQL. The database is the single source of truth for the index;
// no in-process index state is kept.
//
// It requires the following schema:
//
//	CREATE TABLE documents (
//	    id         BIGSERIAL PRIMARY KEY,
//	    name       TEXT NOT NULL UNIQUE,
//	    content    TEXT NOT NULL,
//	    word_count INTEGER NOT NULL
//	);
//
//	CREATE TABLE inverted_index (
//	    word   TEXT NOT NULL,
//	    doc_id BIGINT NOT NULL REFERENCES documents(id),
//	    count  INTEGER NOT NULL,
//	    PRIMARY KEY (word, doc_id)
//	);
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	apperrors "github.com/Un3xpecteed/Search-Engine/pkg/errors"
	"github.com/Un3xpecteed/Search-Engine/pkg/postgres"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint
// violations.
const uniqueViolation = "23505"

// Document is a persisted document row.
type Document struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"-"`
	WordCount int    `json:"word_count"`
}

// Posting is one inverted-index row joined with its document metadata.
type Posting struct {
	Word         string
	DocID        int64
	DocName      string
	Count        int
	DocWordCount int
}

// Store provides access to the documents and inverted_index tables.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store backed by the given PostgreSQL client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "index-store"),
	}
}

// CreateDocument inserts the document row and its full inverted-index entry
// set in a single transaction. Either everything commits or nothing does, so
// the store never holds a document with partial index entries. A duplicate
// name surfaces as ErrDocumentExists.
func (s *Store) CreateDocument(ctx context.Context, name, content string, wordCount int, counts map[string]int) (*Document, error) {
	doc := &Document{Name: name, Content: content, WordCount: wordCount}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (name, content, word_count) VALUES ($1, $2, $3) RETURNING id`,
			name, content, wordCount,
		).Scan(&doc.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Newf(apperrors.ErrDocumentExists, 409, "document %q already exists", name)
			}
			return fmt.Errorf("inserting document %q: %w", name, err)
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("inverted_index", "word", "doc_id", "count"))
		if err != nil {
			return fmt.Errorf("preparing index copy: %w", err)
		}
		// Sorted insert order keeps the write deterministic and reproducible.
		words := make([]string, 0, len(counts))
		for word := range counts {
			words = append(words, word)
		}
		sort.Strings(words)
		for _, word := range words {
			if _, err := stmt.ExecContext(ctx, word, doc.ID, counts[word]); err != nil {
				stmt.Close()
				return fmt.Errorf("buffering index entry %q: %w", word, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing index entries: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document stored",
		"doc_id", doc.ID,
		"name", name,
		"word_count", wordCount,
		"distinct_words", len(counts),
	)
	return doc, nil
}

// DocumentCount returns the total number of documents in the store.
func (s *Store) DocumentCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Postings returns every inverted-index row whose word is in the given set,
// joined with the owning document's name and word count. Words absent from
// the index simply produce no rows.
func (s *Store) Postings(ctx context.Context, words []string) ([]Posting, error) {
	if len(words) == 0 {
		return nil, nil
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT i.word, i.doc_id, d.name, i.count, d.word_count
		   FROM inverted_index i
		   JOIN documents d ON d.id = i.doc_id
		  WHERE i.word = ANY($1)
		  ORDER BY i.doc_id, i.word`,
		pq.Array(words),
	)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.Word, &p.DocID, &p.DocName, &p.Count, &p.DocWordCount); err != nil {
			return nil, fmt.Errorf("scanning posting row: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posting rows: %w", err)
	}
	return postings, nil
}

// DocumentByName fetches a single document by its unique name. Returns
// ErrDocumentNotFound if no such document exists.
func (s *Store) DocumentByName(ctx context.Context, name string) (*Document, error) {
	var doc Document
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, name, word_count FROM documents WHERE name = $1`,
		name,
	).Scan(&doc.ID, &doc.Name, &doc.WordCount)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "document %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %q: %w", name, err)
	}
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
