package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-ticketing/internal/model"
	"github.com/iliyamo/movie-ticketing/internal/utils"
)

// UserRepo manages account rows.  Usernames and emails are unique at the
// schema level; violations surface as ErrUserExists.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The password is hashed with
// bcrypt at the given cost before it touches the database.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, hash, role)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,role,access_token,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &token, &u.CreatedAt, &u.UpdatedAt)
	u.AccessToken = token.String
	return u, err
}

// GetByUsername fetches a user by username.  Returns ErrUserNotFound when
// absent, since callers use it to resolve client-supplied names.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,role,access_token,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &token, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	u.AccessToken = token.String
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,role,access_token,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &token, &u.CreatedAt, &u.UpdatedAt)
	u.AccessToken = token.String
	return u, err
}

// StoreAccessToken records the newest issued access token on the user row.
// The column is informational (the token is self-validating); failures
// here should be logged by the caller, not fail the sign-in.
func (r *UserRepo) StoreAccessToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET access_token=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		token, id)
	return err
}
