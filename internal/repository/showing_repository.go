// Package repository: data access for showings.  A showing is one scheduled
// screening of a movie with its own seat capacity and time window.  The
// available_seats column counts seats already sold and may only grow via
// the conditional increment in ReserveSeatsTx, which enforces
// available_seats <= max_seats at the SQL level.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/movie-ticketing/internal/model"
	"github.com/iliyamo/movie-ticketing/internal/utils"
)

// ShowingRepo manages persistence for showings.  The movie repository
// supplies the existence check for referenced catalog entries.
type ShowingRepo struct {
	db     *sql.DB
	movies *MovieRepo
}

// NewShowingRepo constructs a ShowingRepo with the given DB handle and
// movie repository.
func NewShowingRepo(db *sql.DB, movies *MovieRepo) *ShowingRepo {
	return &ShowingRepo{db: db, movies: movies}
}

// InsertBatch opens a batch of showings.  Every referenced movie ID is
// verified first; when any is missing the whole batch is rejected with an
// error naming the offending ID (wrapping ErrMovieNotFound) and nothing is
// persisted.  The insert itself runs as one multi-row statement inside a
// transaction, so partial persistence cannot occur either way.
func (r *ShowingRepo) InsertBatch(ctx context.Context, showings []model.Showing) error {
	if len(showings) == 0 {
		return nil
	}
	for _, s := range showings {
		ok, err := r.movies.ExistsByID(ctx, s.MovieID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("movie with the given id %d does not exist: %w", s.MovieID, ErrMovieNotFound)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO showings
              (movie_id, available_seats, max_seats, room_code, start_time, finish_time, ticket_price, status)
              VALUES `
	args := make([]interface{}, 0, len(showings)*8)
	for i, s := range showings {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, s.MovieID, s.AvailableSeats, s.MaxSeats, s.RoomCode,
			s.StartTime, s.FinishTime, s.TicketPrice, s.Status)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpcomingShowing is one row of the upcoming listing: a showing joined with
// its movie details.  StartTime and FinishTime are formatted for display as
// "Month DD, YYYY HH:mm:ss"; the stored values stay full DB timestamps.
type UpcomingShowing struct {
	ID             uint64   `json:"id"`
	AvailableSeats uint32   `json:"available_seats"`
	MaxSeats       uint32   `json:"max_seats"`
	RoomCode       string   `json:"room_code"`
	StartTime      string   `json:"start_time"`
	FinishTime     string   `json:"finish_time"`
	TicketPrice    uint32   `json:"ticket_price"`
	Status         string   `json:"status"`
	MovieID        uint64   `json:"movie_id"`
	MovieTitle     string   `json:"movie_title"`
	MovieGenres    []string `json:"movie_genres"`
	MovieDuration  string   `json:"movie_duration"`
	MovieRating    string   `json:"movie_rating"`
}

// ListUpcoming returns open showings starting between now and now+7 days
// that still have free capacity, joined with their movie and ordered by
// start time ascending.  An empty result is an empty slice, nil error.
func (r *ShowingRepo) ListUpcoming(ctx context.Context, now time.Time) ([]UpcomingShowing, error) {
	const q = `SELECT s.id, s.available_seats, s.max_seats, s.room_code,
                      s.start_time, s.finish_time, s.ticket_price, s.status,
                      m.id, m.title, m.genres, m.duration, m.rating
               FROM showings s
               JOIN movies m ON m.id = s.movie_id
               WHERE s.start_time >= ?
                 AND s.finish_time <= ?
                 AND s.available_seats < s.max_seats
                 AND s.status = 'open'
               ORDER BY s.start_time ASC`
	from := utils.ToDBTime(now)
	to := utils.ToDBTime(now.Add(7 * 24 * time.Hour))
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]UpcomingShowing, 0)
	for rows.Next() {
		var u UpcomingShowing
		var genres sql.NullString
		var duration, rating sql.NullString
		if err := rows.Scan(
			&u.ID, &u.AvailableSeats, &u.MaxSeats, &u.RoomCode,
			&u.StartTime, &u.FinishTime, &u.TicketPrice, &u.Status,
			&u.MovieID, &u.MovieTitle, &genres, &duration, &rating,
		); err != nil {
			return nil, err
		}
		u.StartTime = utils.FormatDisplayTime(u.StartTime)
		u.FinishTime = utils.FormatDisplayTime(u.FinishTime)
		u.MovieGenres = splitGenres(genres.String)
		u.MovieDuration = duration.String
		u.MovieRating = rating.String
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByMovieAndWindowTx resolves the showing for a movie at an exact time
// window inside a transaction.  The order ledger uses it to locate the
// showing an order targets.  Returns ErrShowingNotFound when absent.
func (r *ShowingRepo) FindByMovieAndWindowTx(ctx context.Context, tx *sql.Tx, movieID uint64, start, finish string) (*model.Showing, error) {
	const q = `SELECT id, movie_id, available_seats, max_seats, room_code,
                      start_time, finish_time, ticket_price, status, created_at, updated_at
               FROM showings
               WHERE movie_id = ? AND start_time = ? AND finish_time = ?
               LIMIT 1`
	var s model.Showing
	err := tx.QueryRowContext(ctx, q, movieID, start, finish).Scan(
		&s.ID, &s.MovieID, &s.AvailableSeats, &s.MaxSeats, &s.RoomCode,
		&s.StartTime, &s.FinishTime, &s.TicketPrice, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowingNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ReserveSeatsTx atomically consumes n seats on a showing within the given
// transaction.  The UPDATE only matches while the showing is open and the
// incremented counter stays within capacity, so two orders racing for the
// last seat serialize on the row lock and the loser matches zero rows.
// When zero rows match, the showing is read back under a shared lock so
// the reported failure reflects committed current state rather than the
// transaction's start snapshot: vanished (ErrShowingNotFound), closed in
// the meantime (ErrShowingClosed) or out of capacity (ErrSoldOut).
func (r *ShowingRepo) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, showingID uint64, n uint32) error {
	const q = `UPDATE showings
               SET available_seats = available_seats + ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status = 'open' AND available_seats + ? <= max_seats`
	res, err := tx.ExecContext(ctx, q, n, showingID, n)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	var status string
	var avail, max uint32
	err = tx.QueryRowContext(ctx,
		`SELECT status, available_seats, max_seats FROM showings WHERE id = ? FOR SHARE`, showingID,
	).Scan(&status, &avail, &max)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrShowingNotFound
	}
	if err != nil {
		return err
	}
	if status == model.ShowingClosed {
		return ErrShowingClosed
	}
	return ErrSoldOut
}

// ReleaseSeatsTx returns n seats to a showing within the given transaction,
// stamping updated_at.  The counter never drops below zero.  The release is
// best-effort: when no row matches (the showing was already purged) it
// returns zero rows affected and nil error.
func (r *ShowingRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, movieID uint64, start, finish string, n uint32) (int64, error) {
	const q = `UPDATE showings
               SET available_seats = available_seats - ?, updated_at = CURRENT_TIMESTAMP
               WHERE movie_id = ? AND start_time = ? AND finish_time = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, n, movieID, start, finish, n)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CloseExpiredAndFull transitions to closed every open showing whose finish
// time has passed or whose seat counter reached capacity, stamping
// updated_at, and returns the number of rows modified.  The status
// predicate makes the sweep idempotent: a second run right after the first
// modifies zero rows.
func (r *ShowingRepo) CloseExpiredAndFull(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE showings
               SET status = 'closed', updated_at = CURRENT_TIMESTAMP
               WHERE status = 'open' AND (finish_time < ? OR available_seats >= max_seats)`
	res, err := r.db.ExecContext(ctx, q, utils.ToDBTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeClosed permanently deletes every closed showing and returns the
// number of rows removed.  Open rows are never touched.  There is no
// archival: the deletion is irreversible.
func (r *ShowingRepo) PurgeClosed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM showings WHERE status = 'closed'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
