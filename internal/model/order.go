package model

// Order records one ticket purchase against a showing in the `orders`
// table.  Movie and user are referenced by ID without cascading deletes.
// TotalAmount is computed once at creation (ticket price at that moment
// times the ticket count) and never recomputed afterwards.
//
// Fields:
//
//	ID               – primary key identifier.
//	MovieID          – referenced movie.
//	UserID           – purchasing user.
//	TicketAmount     – number of tickets bought.
//	TotalAmount      – price snapshot: ticket_price × TicketAmount.
//	StartTime        – showing start (DB timestamp, UTC), identifies the showing window.
//	FinishTime       – showing finish (DB timestamp, UTC).
//	MovieStartTime   – display-only start string as submitted by the client.
//	MovieFinishTime  – display-only finish string as submitted by the client.
//	CreatedAt        – creation timestamp.
//	UpdatedAt        – last update timestamp.
type Order struct {
	ID              uint64 // orders.id
	MovieID         uint64 // orders.movie_id
	UserID          uint64 // orders.user_id
	TicketAmount    uint32 // orders.ticket_amount
	TotalAmount     uint64 // orders.total_amount
	StartTime       string // orders.start_time ("2006-01-02 15:04:05" UTC)
	FinishTime      string // orders.finish_time ("2006-01-02 15:04:05" UTC)
	MovieStartTime  string // orders.movie_start_time (display string)
	MovieFinishTime string // orders.movie_finish_time (display string)
	CreatedAt       string // orders.created_at
	UpdatedAt       string // orders.updated_at
}
