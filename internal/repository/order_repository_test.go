package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStart  = "2026-09-02 18:00:00"
	testFinish = "2026-09-02 20:10:00"
)

func newOrderRepoForTest(db *sql.DB) *OrderRepo {
	return NewOrderRepo(db, NewUserRepo(db), NewShowingRepo(db, NewMovieRepo(db)))
}

func userRows(id uint64, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "access_token", "created_at", "updated_at",
	}).AddRow(id, username, username+"@example.com", "x", "user", nil, testStart, testStart)
}

func orderInput() CreateOrderInput {
	return CreateOrderInput{
		Username:        "alice",
		MovieTitle:      "Dune",
		StartTime:       testStart,
		FinishTime:      testFinish,
		MovieStartTime:  "September 02, 2026 18:00:00",
		MovieFinishTime: "September 02, 2026 20:10:00",
		TicketAmount:    2,
	}
}

func expectResolveNames(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM users WHERE username=").
		WithArgs("alice").
		WillReturnRows(userRows(7, "alice"))
	mock.ExpectQuery("SELECT id FROM movies WHERE title = \\?").
		WithArgs("Dune").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
}

func showingRow(status string, available uint32) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "movie_id", "available_seats", "max_seats", "room_code",
		"start_time", "finish_time", "ticket_price", "status", "created_at", "updated_at",
	}).AddRow(11, 4, available, 50, "A102", testStart, testFinish, 75, status, testStart, testStart)
}

func TestOrderCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM showings").
		WithArgs(uint64(4), testStart, testFinish).
		WillReturnRows(showingRow("open", 10))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE showings SET available_seats = available_seats \\+ \\?").
		WithArgs(uint32(2), uint64(11), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(4), uint64(7), uint32(2), uint64(150),
			testStart, testFinish, "September 02, 2026 18:00:00", "September 02, 2026 20:10:00").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectCommit()

	ord, err := repo.Create(context.Background(), orderInput())
	require.NoError(t, err)
	assert.Equal(t, uint64(31), ord.ID)
	assert.Equal(t, uint64(150), ord.TotalAmount, "total is price times ticket amount")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreate_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	mock.ExpectQuery("FROM users WHERE username=").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Create(context.Background(), orderInput())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrderCreate_ClosedShowing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM showings").
		WillReturnRows(showingRow("closed", 10))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), orderInput())
	assert.ErrorIs(t, err, ErrShowingClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreate_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM showings").
		WillReturnRows(showingRow("open", 10))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), orderInput())
	assert.ErrorIs(t, err, ErrDuplicateOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreate_SoldOutRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM showings").
		WillReturnRows(showingRow("open", 49))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE showings SET available_seats").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status, available_seats, max_seats FROM showings").
		WillReturnRows(sqlmock.NewRows([]string{"status", "available_seats", "max_seats"}).
			AddRow("open", 49, 50))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), orderInput())
	assert.ErrorIs(t, err, ErrSoldOut)
	require.NoError(t, mock.ExpectationsWereMet(), "no order insert after a failed reservation")
}

func TestOrderDelete_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders").
		WithArgs(uint64(7), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "movie_id", "user_id", "ticket_amount", "total_amount",
			"start_time", "finish_time", "movie_start_time", "movie_finish_time",
		}).AddRow(31, 4, 7, 2, 150, testStart, testFinish,
			"September 02, 2026 18:00:00", "September 02, 2026 20:10:00"))
	mock.ExpectExec("DELETE FROM orders WHERE id = \\?").
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE showings SET available_seats = available_seats - \\?").
		WithArgs(uint32(2), uint64(4), testStart, testFinish, uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := repo.Delete(context.Background(), "alice", "Dune")
	require.NoError(t, err)
	assert.Equal(t, uint64(31), ord.ID)
	assert.Equal(t, uint32(2), ord.TicketAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDelete_NothingToDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), "alice", "Dune")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderDelete_PurgedShowingStillCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	expectResolveNames(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "movie_id", "user_id", "ticket_amount", "total_amount",
			"start_time", "finish_time", "movie_start_time", "movie_finish_time",
		}).AddRow(31, 4, 7, 2, 150, testStart, testFinish, "", ""))
	mock.ExpectExec("DELETE FROM orders WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE showings SET available_seats = available_seats - \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ord, err := repo.Delete(context.Background(), "alice", "Dune")
	require.NoError(t, err)
	assert.Equal(t, uint64(31), ord.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListByUser_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	mock.ExpectQuery("FROM users WHERE username=").
		WithArgs("alice").
		WillReturnRows(userRows(7, "alice"))
	mock.ExpectQuery("FROM orders o").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "ticket_amount", "total_amount", "movie_start_time", "movie_finish_time",
			"m_id", "title", "genres", "duration", "rating",
		}))

	items, err := repo.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestOrderListByUser_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	mock.ExpectQuery("FROM users WHERE username=").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ListByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrderListByUser_JoinsMovieDetails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newOrderRepoForTest(db)

	mock.ExpectQuery("FROM users WHERE username=").
		WillReturnRows(userRows(7, "alice"))
	mock.ExpectQuery("FROM orders o").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "ticket_amount", "total_amount", "movie_start_time", "movie_finish_time",
			"m_id", "title", "genres", "duration", "rating",
		}).AddRow(31, 2, 150, "September 02, 2026 18:00:00", "September 02, 2026 20:10:00",
			4, "Dune", "Sci-Fi,Adventure", "2h10m", "R"))

	items, err := repo.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].MovieTitle)
	assert.Equal(t, []string{"Sci-Fi", "Adventure"}, items[0].MovieGenres)
	assert.Equal(t, uint32(2), items[0].TicketAmount)
}
