package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticketing/internal/repository"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestOpenShowings_RejectsBadRoomCode(t *testing.T) {
	h := NewShowingHandler(nil)
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 4, "max_seats": 50, "room_code": "A-102",
		"start_time": "September 02, 2026 18:00:00",
		"finish_time": "September 02, 2026 20:10:00"
	}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "letters and numbers")
}

func TestOpenShowings_RejectsBadDateFormat(t *testing.T) {
	h := NewShowingHandler(nil)
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 4, "max_seats": 50, "room_code": "A102",
		"start_time": "2026-09-02 18:00:00",
		"finish_time": "2026-09-02 20:10:00"
	}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Month DD, YYYY HH:mm:ss")
}

func TestOpenShowings_RejectsSeatsOverCapacity(t *testing.T) {
	h := NewShowingHandler(nil)
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 4, "available_seats": 60, "max_seats": 50, "room_code": "A102",
		"start_time": "September 02, 2026 18:00:00",
		"finish_time": "September 02, 2026 20:10:00"
	}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenShowings_RejectsInvertedWindow(t *testing.T) {
	h := NewShowingHandler(nil)
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 4, "max_seats": 50, "room_code": "A102",
		"start_time": "September 02, 2026 20:10:00",
		"finish_time": "September 02, 2026 18:00:00"
	}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "finish_time must be after start_time")
}

func TestOpenShowings_MissingMovieReturns404(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM movies WHERE id = \\?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	h := NewShowingHandler(repository.NewShowingRepo(db, repository.NewMovieRepo(db)))
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 99, "max_seats": 50, "room_code": "A102",
		"start_time": "September 02, 2026 18:00:00",
		"finish_time": "September 02, 2026 20:10:00"
	}]`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "99")
}

func TestOpenShowings_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM movies WHERE id = \\?").
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO showings").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	h := NewShowingHandler(repository.NewShowingRepo(db, repository.NewMovieRepo(db)))
	rec := postJSON(t, h.OpenShowings, `[{
		"movie_id": 4, "max_seats": 50, "room_code": "A102",
		"start_time": "September 02, 2026 18:00:00",
		"finish_time": "September 02, 2026 20:10:00",
		"ticket_price": 75
	}]`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
