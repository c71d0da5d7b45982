package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticketing/internal/model"
)

// MovieRepo manages persistence for catalog entries in the `movies` table.
// Titles are unique; showings and orders reference movies by numeric ID.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// isDuplicateEntry reports whether err is a MySQL unique-key violation
// (error 1062).  The driver does not export a typed error for it, so the
// code is matched in the message, same as the rest of the data layer.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isConstraintViolation reports whether err is a MySQL enum/check
// constraint failure (1265 data truncated, 3819 check violated), meaning
// a value slipped past the upstream validation.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1265") || strings.Contains(msg, "3819")
}

// joinGenres flattens a genre list into the comma-separated column value.
func joinGenres(genres []string) string {
	trimmed := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			trimmed = append(trimmed, g)
		}
	}
	return strings.Join(trimmed, ",")
}

// splitGenres expands the stored column value back into a list.  An empty
// column yields an empty (non-nil) slice.
func splitGenres(col string) []string {
	if col == "" {
		return []string{}
	}
	parts := strings.Split(col, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InsertMany inserts a batch of movies in a single multi-row statement
// inside a transaction, so a duplicate title rejects the whole batch.
// Returns ErrDuplicateTitle when any title already exists.
func (r *MovieRepo) InsertMany(ctx context.Context, movies []model.Movie) error {
	if len(movies) == 0 {
		return nil
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

	query := `INSERT INTO movies (title, genres, duration, rating) VALUES `
	args := make([]interface{}, 0, len(movies)*4)
	for i, m := range movies {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, m.Title, joinGenres(m.Genres), m.Duration, m.Rating)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateTitle
		}
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

// GetAll returns every movie in the catalog ordered by title.  When the
// catalog is empty it returns an empty slice and nil error.
func (r *MovieRepo) GetAll(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, genres, duration, rating, created_at, updated_at
               FROM movies ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByTitle retrieves a single movie by its unique title.  It returns
// ErrMovieNotFound when no matching row exists.
func (r *MovieRepo) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	const q = `SELECT id, title, genres, duration, rating, created_at, updated_at
               FROM movies WHERE title = ? LIMIT 1`
	row := r.db.QueryRowContext(ctx, q, title)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExistsByID reports whether a movie row with the given ID exists.
// ShowingRepo.InsertBatch validates movie references with it before
// opening showings.
func (r *MovieRepo) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateMany applies partial updates addressed by title.  For each item
// only the supplied fields (genres, duration, rating) are written; absent
// fields keep their stored values.  All items run in one transaction and
// the number of modified rows is returned.  Unknown titles are skipped
// silently, matching bulk-update semantics elsewhere in the data layer.
func (r *MovieRepo) UpdateMany(ctx context.Context, updates []model.MovieUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var modified int64
	for _, u := range updates {
		sets := make([]string, 0, 4)
		args := make([]interface{}, 0, 5)
		if u.Genres != nil {
			sets = append(sets, "genres = ?")
			args = append(args, joinGenres(*u.Genres))
		}
		if u.Duration != nil {
			sets = append(sets, "duration = ?")
			args = append(args, *u.Duration)
		}
		if u.Rating != nil {
			sets = append(sets, "rating = ?")
			args = append(args, *u.Rating)
		}
		if len(sets) == 0 {
			continue // nothing to change for this title
		}
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		query := "UPDATE movies SET " + strings.Join(sets, ", ") + " WHERE title = ?"
		args = append(args, u.Title)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		modified += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return modified, nil
}

// DeleteManyByTitles removes the movies with the given titles and returns
// the number of rows deleted.  Deletion is refused with ErrMovieInUse when
// any of the movies is still referenced by a showing or an order, so no
// dangling references are ever created from this side.
func (r *MovieRepo) DeleteManyByTitles(ctx context.Context, titles []string) (int64, error) {
	if len(titles) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(titles)), ",")
	args := make([]interface{}, 0, len(titles))
	for _, t := range titles {
		args = append(args, t)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var refs int
	checkQ := `SELECT COUNT(*) FROM movies m
               LEFT JOIN showings s ON s.movie_id = m.id
               LEFT JOIN orders o ON o.movie_id = m.id
               WHERE m.title IN (` + placeholders + `) AND (s.id IS NOT NULL OR o.id IS NOT NULL)`
	if err := tx.QueryRowContext(ctx, checkQ, args...).Scan(&refs); err != nil {
		return 0, err
	}
	if refs > 0 {
		return 0, ErrMovieInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE title IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(s rowScanner) (model.Movie, error) {
	var m model.Movie
	var genres sql.NullString
	var duration, rating sql.NullString
	if err := s.Scan(&m.ID, &m.Title, &genres, &duration, &rating, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return model.Movie{}, err
	}
	m.Genres = splitGenres(genres.String)
	m.Duration = duration.String
	m.Rating = rating.String
	return m, nil
}
