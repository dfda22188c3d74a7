package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"symposium/internal/domain"
)

type documentStore struct {
	DB *sql.DB
}

// NewDocumentStore returns a domain.DocumentStore that keeps each document as a JSONB row.
func NewDocumentStore(db *sql.DB) domain.DocumentStore {
	return &documentStore{DB: db}
}

func (s *documentStore) Get(ctx context.Context, collection, key string) (domain.Document, error) {
	query := `
		SELECT fields
		FROM documents
		WHERE collection = $1 AND key = $2
	`
	var raw []byte
	err := s.DB.QueryRowContext(ctx, query, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	doc := domain.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

func (s *documentStore) Create(ctx context.Context, collection, key string, fields domain.Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}
	query := `
		INSERT INTO documents (collection, key, fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO NOTHING
	`
	res, err := s.DB.ExecContext(ctx, query, collection, key, string(raw))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// AppendToSet unions values into the JSON array at field. The row is locked while the new values
// are worked out, so concurrent appends of the same value report it as added exactly once.
func (s *documentStore) AppendToSet(ctx context.Context, collection, key, field string, values []string) ([]string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(fields -> $3::text, '[]'::jsonb)
		FROM documents
		WHERE collection = $1 AND key = $2
		FOR UPDATE
	`, collection, key, field).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var existing []string
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("decode %s of %s/%s: %w", field, collection, key, err)
	}
	added := domain.NewSelectionSet(values...).Minus(domain.NewSelectionSet(existing...)).Names()
	if len(added) == 0 {
		return nil, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE documents
		SET fields = jsonb_set(
				fields,
				ARRAY[$3::text],
				(SELECT COALESCE(jsonb_agg(v ORDER BY v), '[]'::jsonb)
				 FROM (
					SELECT jsonb_array_elements_text(COALESCE(fields -> $3::text, '[]'::jsonb)) AS v
					UNION
					SELECT unnest($4::text[])
				 ) AS merged),
				true),
			updated_at = NOW()
		WHERE collection = $1 AND key = $2
	`, collection, key, field, pq.Array(added))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}
