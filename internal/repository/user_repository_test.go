package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	u := newUser(1, "testuser")
	u.Bio = "test"
	require.NoError(t, repo.Create(ctx, conn, u))

	byID, err := repo.GetByID(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)
	assert.Equal(t, "testuser@test.com", byID.Email)
	assert.Equal(t, "test", byID.Bio)
	assert.True(t, byID.CreatedAt.Equal(baseTime))

	byName, err := repo.GetByUsername(ctx, conn, "testuser")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), byName.ID)
}

func TestUserRepository_NotFound(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, conn, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByUsername(ctx, conn, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, conn, 404), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateProfile(ctx, conn, newUser(404, "nobody")), ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, conn, newUser(1, "testuser")))

	dup := newUser(2, "testuser")
	dup.Email = "other@test.com"
	err := repo.Create(ctx, conn, dup)

	require.ErrorIs(t, err, ErrUniqueViolation)
	var violation *UniqueViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "username", violation.Field)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, conn, newUser(1, "testuser")))

	dup := newUser(2, "testuser2")
	dup.Email = "testuser@test.com"
	err := repo.Create(ctx, conn, dup)

	var violation *UniqueViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "email", violation.Field)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	u := newUser(1, "testuser")
	mustCreateUsers(t, conn, u)

	u.Location = "Berlin"
	u.ImageURL = "https://img.test/a.png"
	require.NoError(t, repo.UpdateProfile(ctx, conn, u))

	got, err := repo.GetByID(ctx, conn, 1)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", got.Location)
	assert.Equal(t, "https://img.test/a.png", got.ImageURL)
}

func TestUserRepository_TransactionRollback(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository()
	ctx := context.Background()

	tx, err := conn.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, newUser(1, "testuser")))
	require.NoError(t, tx.Rollback())

	_, err = repo.GetByID(ctx, conn, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// newMockDB 创建 sqlmock 数据库，用于模拟各驱动的错误
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestUserRepository_Create_DriverUniqueErrors(t *testing.T) {
	tests := []struct {
		name      string
		driverErr error
		wantField string
	}{
		{
			name:      "mysql duplicate username",
			driverErr: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'testuser' for key 'users.username'"},
			wantField: "username",
		},
		{
			name:      "postgres duplicate email",
			driverErr: &pq.Error{Code: "23505", Constraint: "users_email_key", Message: "duplicate key value violates unique constraint"},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockDB(t)
			mock.ExpectExec(`INSERT INTO users`).WillReturnError(tt.driverErr)

			err := NewUserRepository().Create(context.Background(), conn, newUser(1, "testuser"))

			require.ErrorIs(t, err, ErrUniqueViolation)
			var violation *UniqueViolationError
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tt.wantField, violation.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_OtherDriverError(t *testing.T) {
	conn, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})

	err := NewUserRepository().Create(context.Background(), conn, newUser(1, "testuser"))

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUniqueViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}
