package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docColumns = []string{"id", "user_id", "key", "mime_type", "status", "processed_at", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := Document{
		ID:        "doc-1",
		UserID:    "user-1",
		Key:       "abc.png",
		MimeType:  "image/png",
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.UserID, doc.Key, doc.MimeType, doc.Status, sql.NullTime{}, doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDMapsNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(docColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoGetByIDScansProcessedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	processed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	created := processed.Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow("doc-1", "user-1", "abc.pdf", "application/pdf", "DONE", processed, created))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, doc.Status)
	require.NotNil(t, doc.ProcessedAt)
	assert.True(t, doc.ProcessedAt.Equal(processed))
	assert.True(t, doc.IsPDF())
}

func TestPGRepoListByUserOrdersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow("doc-2", "user-1", "b.png", "image/png", "PENDING", nil, now).
			AddRow("doc-1", "user-1", "a.png", "image/png", "FAILED", nil, now.Add(-time.Hour)))

	docs, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[0].ID)
	assert.Nil(t, docs[1].ProcessedAt)
}

func TestPGRepoTransitionsGuardDone(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE documents\\s+SET status = 'DONE', processed_at = \\$2\\s+WHERE id = \\$1 AND status <> 'DONE'").
		WithArgs("doc-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents\\s+SET status = 'FAILED', processed_at = NULL\\s+WHERE id = \\$1 AND status <> 'DONE'").
		WithArgs("doc-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents\\s+SET status = 'FAILED', processed_at = NULL\\s+WHERE id = \\$1 AND status <> 'DONE'").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkDone(context.Background(), "doc-1", at)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkFailed(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkFailed(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, ok, "a DONE row is left alone")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoTransitionError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE documents\\s+SET status = 'FAILED'").
		WithArgs("doc-1").
		WillReturnError(errors.New("db down"))

	ok, err := repo.MarkFailed(context.Background(), "doc-1")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestPGRepoDeleteMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM documents WHERE id = \\$1").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "doc-1"), ErrNotFound)
}
