package model

// Showing statuses.  A showing is open for orders until it either fills up
// or its finish time passes; the expire sweep then flips it to closed and
// the purge sweep eventually removes it.
const (
	ShowingOpen   = "open"
	ShowingClosed = "closed"
)

// Showing represents one scheduled screening of a movie in the `showings`
// table.  AvailableSeats counts seats already sold (an increasing counter),
// never exceeding MaxSeats.  Start and finish times are stored as DB
// timestamps "2006-01-02 15:04:05" in UTC, matching how the repositories
// compare them in SQL.
//
// Fields:
//
//	ID             – primary key identifier.
//	MovieID        – referenced movie (must exist when the showing is opened).
//	AvailableSeats – seats consumed so far.
//	MaxSeats       – seat capacity of the room.
//	RoomCode       – alphanumeric studio code (e.g. "A102").
//	StartTime      – when the screening starts (DB timestamp, UTC).
//	FinishTime     – when the screening ends (DB timestamp, UTC).
//	TicketPrice    – price per ticket in the smallest currency unit.
//	Status         – ShowingOpen or ShowingClosed.
//	CreatedAt      – row creation time.
//	UpdatedAt      – last mutation time (seat changes and sweeps stamp it).
type Showing struct {
	ID             uint64 // showings.id
	MovieID        uint64 // showings.movie_id
	AvailableSeats uint32 // showings.available_seats
	MaxSeats       uint32 // showings.max_seats
	RoomCode       string // showings.room_code
	StartTime      string // showings.start_time ("2006-01-02 15:04:05" UTC)
	FinishTime     string // showings.finish_time ("2006-01-02 15:04:05" UTC)
	TicketPrice    uint32 // showings.ticket_price
	Status         string // showings.status
	CreatedAt      string // showings.created_at
	UpdatedAt      string // showings.updated_at
}
