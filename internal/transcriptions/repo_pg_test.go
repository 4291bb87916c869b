package transcriptions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	tr := Transcription{ID: "t-1", DocumentID: "doc-1", Text: "hello", CreatedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO transcriptions").
		WithArgs(tr.ID, tr.DocumentID, tr.Text, tr.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transcriptions_document_id_key"})

	err := repo.Create(context.Background(), tr)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByDocument(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now().UTC()
	mock.ExpectQuery("SELECT id, document_id, text, created_at FROM transcriptions WHERE document_id = \\$1").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "text", "created_at"}).
			AddRow("t-1", "doc-1", "olá", created))

	tr, err := repo.GetByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", tr.ID)
	assert.Equal(t, "olá", tr.Text)
}

func TestPGRepoGetByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM transcriptions WHERE id = \\$1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "text", "created_at"}))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoDeleteByDocument(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM transcriptions WHERE document_id = \\$1").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByDocument(context.Background(), "doc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
