// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published once an order has been committed. It is
// self-contained so downstream consumers can log or notify without a
// round-trip to the primary database.
type OrderConfirmedEvent struct {
	OrderID      uint64 `json:"order_id"`
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	MovieID      uint64 `json:"movie_id"`
	MovieTitle   string `json:"movie_title"`
	TicketAmount uint32 `json:"ticket_amount"`
	TotalAmount  uint64 `json:"total_amount"`
	StartsAt     string `json:"starts_at"`
	FinishesAt   string `json:"finishes_at"`
	ConfirmedAt  string `json:"confirmed_at"`
}
