package model

// Ratings accepted for movies.  The values follow the Indonesian film
// classification board: SU (all ages), BO-A (parental guidance, all ages),
// BO (parental guidance), R (teen) and D (adult).
var MovieRatings = []string{"SU", "BO-A", "BO", "R", "D"}

// Movie represents a catalog entry in the `movies` table.  The title is
// unique and acts as the public lookup key; showings and orders reference
// the numeric ID.  Genres are stored as a single comma-separated column
// and split by the repository layer.
//
// Fields:
//
//	ID        – primary key identifier.
//	Title     – unique movie title.
//	Genres    – list of genre labels.
//	Duration  – human-readable running time (e.g. "2h 15m").
//	Rating    – classification code, one of MovieRatings.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Movie struct {
	ID        uint64   // movies.id
	Title     string   // movies.title
	Genres    []string // movies.genres (comma separated in the DB)
	Duration  string   // movies.duration
	Rating    string   // movies.rating
	CreatedAt string   // movies.created_at ("2006-01-02 15:04:05" UTC)
	UpdatedAt string   // movies.updated_at
}

// MovieUpdate carries a partial update for one movie addressed by title.
// Nil pointers mean "leave the stored value untouched"; only supplied
// fields are written.
type MovieUpdate struct {
	Title    string    // selects the movie to update
	Genres   *[]string // replacement genre list, when supplied
	Duration *string   // replacement duration, when supplied
	Rating   *string   // replacement rating, when supplied
}
