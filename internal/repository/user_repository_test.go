package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticketing/internal/utils"
)

func TestUserCreate_NormalizesEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg(), "user").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "alice", "Alice@Example.com", "s3cret", "user", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice'"))

	_, err := repo.Create(context.Background(), "alice", "alice@example.com", "s3cret", "user", 4)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserGetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("FROM users WHERE username=\\?").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenValidateRefresh(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)
	hash := utils.HashRefreshRaw("raw-token")

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	uid, err := repo.ValidateRefresh(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestTokenValidateRefresh_RevokedOrExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	// revoked and expired tokens match no row, same as an unknown hash
	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ValidateRefresh(context.Background(), "whatever")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenStoreAndRevoke(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(7), "somehash", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\)").
		WithArgs("somehash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StoreRefresh(context.Background(), 7, "somehash", exp))
	require.NoError(t, repo.RevokeByHash(context.Background(), "somehash"))
	require.NoError(t, mock.ExpectationsWereMet())
}
