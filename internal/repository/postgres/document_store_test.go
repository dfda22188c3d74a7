package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"symposium/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    domain.Document
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT fields\s+FROM documents`).
					WithArgs("registrations", "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"fields"}).
						AddRow([]byte(`{"identity":"user-1","events":["A","B"]}`)))
			},
			want: domain.Document{"identity": "user-1", "events": []any{"A", "B"}},
		},
		{
			name: "missing maps to ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM documents`).
					WithArgs("registrations", "user-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM documents`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewDocumentStore(db).Get(ctx, "registrations", "user-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDocumentStore_Create(t *testing.T) {
	ctx := context.Background()
	fields := domain.Document{"identity": "user-1", "events": []string{"A"}}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "inserted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO documents \(collection, key, fields\)`).
					WithArgs("registrations", "user-1", `{"events":["A"],"identity":"user-1"}`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "conflict maps to ErrAlreadyExists",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`ON CONFLICT \(collection, key\) DO NOTHING`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewDocumentStore(db).Create(ctx, "registrations", "user-1", fields)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDocumentStore_AppendToSet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mock      func(mock sqlmock.Sqlmock)
		wantAdded []string
		wantErr   error
	}{
		{
			name: "only new values are written and reported",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COALESCE\(fields -> \$3::text, '\[\]'::jsonb\) .* FOR UPDATE`).
					WithArgs("registrations", "user-1", "events").
					WillReturnRows(sqlmock.NewRows([]string{"events"}).AddRow([]byte(`["A","B"]`)))
				mock.ExpectExec(`UPDATE documents`).
					WithArgs("registrations", "user-1", "events", pq.Array([]string{"C"})).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantAdded: []string{"C"},
		},
		{
			name: "everything already present",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).
					WillReturnRows(sqlmock.NewRows([]string{"events"}).AddRow([]byte(`["A","B","C"]`)))
				mock.ExpectCommit()
			},
		},
		{
			name: "missing document",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "update fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).
					WillReturnRows(sqlmock.NewRows([]string{"events"}).AddRow([]byte(`[]`)))
				mock.ExpectExec(`UPDATE documents`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			added, err := NewDocumentStore(db).AppendToSet(ctx, "registrations", "user-1", "events", []string{"B", "C"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAdded, added)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
