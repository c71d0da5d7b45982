package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticketing/internal/model"
)

// OrderRepo provides the order ledger: creating and cancelling ticket
// purchases and keeping the targeted showing's seat counter consistent
// with them.  Every mutation that touches both an order row and a seat
// counter runs inside a single transaction, so the pair is all-or-nothing.
type OrderRepo struct {
	db       *sql.DB
	users    *UserRepo
	showings *ShowingRepo
}

// NewOrderRepo returns an OrderRepo bound to the given database.  The
// user repository resolves client-supplied usernames; the showing
// repository supplies the seat accounting statements so the conditional
// increment lives in exactly one place.
func NewOrderRepo(db *sql.DB, users *UserRepo, showings *ShowingRepo) *OrderRepo {
	return &OrderRepo{db: db, users: users, showings: showings}
}

// CreateOrderInput carries the resolved client request for a new order.
// Start and finish are DB timestamps identifying the showing window;
// the display strings are stored verbatim on the order.
type CreateOrderInput struct {
	Username        string
	MovieTitle      string
	StartTime       string // DB timestamp ("2006-01-02 15:04:05" UTC)
	FinishTime      string // DB timestamp
	MovieStartTime  string // display-only string
	MovieFinishTime string // display-only string
	TicketAmount    uint32
}

// Create places an order.  It resolves the user by username, the movie by
// title and the showing by (movie, window); a closed showing rejects the
// order and an identical existing order is treated as a duplicate
// submission.  The seat increment and the order insert commit together:
// if the conditional increment matches no row (sold out, closed or
// vanished mid-flight) the transaction rolls back and no order exists.
func (r *OrderRepo) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	u, err := r.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	userID := u.ID
	var movieID uint64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM movies WHERE title = ? LIMIT 1`, in.MovieTitle).Scan(&movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	showing, err := r.showings.FindByMovieAndWindowTx(ctx, tx, movieID, in.StartTime, in.FinishTime)
	if err != nil {
		return nil, err
	}
	if showing.Status == model.ShowingClosed {
		return nil, ErrShowingClosed
	}
	total := uint64(showing.TicketPrice) * uint64(in.TicketAmount)

	// Duplicate-submission guard: an identical (user, movie, amounts,
	// window) order must not coexist with this one.
	var exists bool
	const dupQ = `SELECT EXISTS(
                      SELECT 1 FROM orders
                      WHERE user_id = ? AND movie_id = ?
                        AND ticket_amount = ? AND total_amount = ?
                        AND start_time = ? AND finish_time = ?)`
	if err := tx.QueryRowContext(ctx, dupQ,
		userID, movieID, in.TicketAmount, total, in.StartTime, in.FinishTime,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateOrder
	}

	if err := r.showings.ReserveSeatsTx(ctx, tx, showing.ID, in.TicketAmount); err != nil {
		return nil, err
	}

	const insQ = `INSERT INTO orders
                  (movie_id, user_id, ticket_amount, total_amount,
                   start_time, finish_time, movie_start_time, movie_finish_time)
                  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insQ,
		movieID, userID, in.TicketAmount, total,
		in.StartTime, in.FinishTime, in.MovieStartTime, in.MovieFinishTime)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &model.Order{
		ID:              uint64(id),
		MovieID:         movieID,
		UserID:          userID,
		TicketAmount:    in.TicketAmount,
		TotalAmount:     total,
		StartTime:       in.StartTime,
		FinishTime:      in.FinishTime,
		MovieStartTime:  in.MovieStartTime,
		MovieFinishTime: in.MovieFinishTime,
	}, nil
}

// OrderHistoryItem is one row of a user's order history: the order joined
// with the summary fields of the purchased movie.
type OrderHistoryItem struct {
	ID              uint64   `json:"id"`
	TicketAmount    uint32   `json:"ticket_purchase_amount"`
	TotalAmount     uint64   `json:"total_amount"`
	MovieStartTime  string   `json:"movie_start_time"`
	MovieFinishTime string   `json:"movie_finish_time"`
	MovieID         uint64   `json:"movie_id"`
	MovieTitle      string   `json:"movie_title"`
	MovieGenres     []string `json:"movie_genres"`
	MovieDuration   string   `json:"movie_duration"`
	MovieRating     string   `json:"movie_rating"`
}

// ListByUser returns the order history for a username joined with movie
// summaries, in insertion order (created_at ascending).  It returns
// ErrUserNotFound when the username does not resolve; a user with no
// orders yields an empty slice and nil error, which the handler reports
// as a "no orders" message rather than an empty list.
func (r *OrderRepo) ListByUser(ctx context.Context, username string) ([]OrderHistoryItem, error) {
	u, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	const q = `SELECT o.id, o.ticket_amount, o.total_amount,
                      o.movie_start_time, o.movie_finish_time,
                      m.id, m.title, m.genres, m.duration, m.rating
               FROM orders o
               JOIN movies m ON m.id = o.movie_id
               WHERE o.user_id = ?
               ORDER BY o.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]OrderHistoryItem, 0)
	for rows.Next() {
		var it OrderHistoryItem
		var genres, duration, rating sql.NullString
		if err := rows.Scan(
			&it.ID, &it.TicketAmount, &it.TotalAmount,
			&it.MovieStartTime, &it.MovieFinishTime,
			&it.MovieID, &it.MovieTitle, &genres, &duration, &rating,
		); err != nil {
			return nil, err
		}
		it.MovieGenres = splitGenres(genres.String)
		it.MovieDuration = duration.String
		it.MovieRating = rating.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete cancels exactly one order matched by (username, movie title): the
// oldest such order is removed and its seats are handed back to the
// showing it was placed against.  The seat decrement is best-effort: when
// the showing has already been purged the decrement matches zero rows and
// the deletion still commits.  Returns the removed order so callers can
// report the released ticket count.
func (r *OrderRepo) Delete(ctx context.Context, username, title string) (*model.Order, error) {
	u, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	userID := u.ID
	var movieID uint64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM movies WHERE title = ? LIMIT 1`, title).Scan(&movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ord model.Order
	const selQ = `SELECT id, movie_id, user_id, ticket_amount, total_amount,
                         start_time, finish_time, movie_start_time, movie_finish_time
                  FROM orders
                  WHERE user_id = ? AND movie_id = ?
                  ORDER BY created_at ASC
                  LIMIT 1
                  FOR UPDATE`
	err = tx.QueryRowContext(ctx, selQ, userID, movieID).Scan(
		&ord.ID, &ord.MovieID, &ord.UserID, &ord.TicketAmount, &ord.TotalAmount,
		&ord.StartTime, &ord.FinishTime, &ord.MovieStartTime, &ord.MovieFinishTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, ord.ID); err != nil {
		return nil, err
	}
	// Hand the seats back; a zero-row match means the showing is gone and
	// is accepted, the cancellation itself still stands.
	if _, err := r.showings.ReleaseSeatsTx(ctx, tx, ord.MovieID, ord.StartTime, ord.FinishTime, ord.TicketAmount); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &ord, nil
}
