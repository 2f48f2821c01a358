package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "0b7e3c56-9f4d-4b43-8c1e-5a2d7f6e1a01"

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestRepository_Create(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5) RETURNING id, name, email, password_hash, role, created_at")).
		WithArgs(sqlmock.AnyArg(), "Alice", "a@example.com", "hash", "member").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "a@example.com", "hash", "member", now))

	u, err := repo.Create(context.Background(), "Alice", "a@example.com", "hash", "member")
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID)
	assert.Equal(t, "member", u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	query := regexp.QuoteMeta("SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1")

	mock.ExpectQuery(query).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "a@example.com", "hash", "member", time.Now()))

	u, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	query := regexp.QuoteMeta("SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1")

	mock.ExpectQuery(query).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "a@example.com", "hash", "admin", time.Now()))

	u, err := repo.FindByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	mock.ExpectQuery(query).WithArgs("broken").WillReturnError(assert.AnError)
	_, err = repo.FindByID(context.Background(), "broken")
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_EmailExists(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
