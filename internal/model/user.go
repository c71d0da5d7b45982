package model

// User roles.  Admins manage the catalog and open showings; regular users
// place and cancel orders.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account row in the `users` table.  Username and email
// are both unique.  AccessToken holds the most recently issued access token
// (refreshed on every successful sign-in); it is informational and never
// consulted for authentication, which relies on JWT verification alone.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – RoleUser or RoleAdmin.
//	AccessToken  – newest issued access token (may be empty).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64 // users.id
	Username     string // users.username
	Email        string // users.email
	PasswordHash string // users.password_hash
	Role         string // users.role
	AccessToken  string // users.access_token
	CreatedAt    string // users.created_at
	UpdatedAt    string // users.updated_at
}
