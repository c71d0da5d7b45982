// Package repository contains the data access layer.  This file defines
// sentinel errors shared across repositories so that handlers can map each
// failure to a distinct HTTP status and message.  The taxonomy covers
// missing references, invalid showing state, uniqueness violations and
// storage-level validation failures.
package repository

import "errors"

// Not-found family: the referenced entity does not exist.  Handlers
// translate these into HTTP 404 responses.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrShowingNotFound = errors.New("showing not found")
	ErrOrderNotFound   = errors.New("no order to delete")
)

// ErrShowingClosed is returned when an order targets a showing whose
// status is closed.  Handlers translate this into HTTP 400.
var ErrShowingClosed = errors.New("showing has been closed")

// ErrSoldOut is returned when a seat increment would push available_seats
// past max_seats.  The conditional UPDATE guarantees the counter never
// exceeds capacity even under concurrent orders.
var ErrSoldOut = errors.New("not enough seats available")

// Uniqueness violations.  Handlers translate these into HTTP 409.
var (
	ErrDuplicateOrder = errors.New("same order already exists")
	ErrDuplicateTitle = errors.New("movie title already exists")
	ErrUserExists     = errors.New("user already exists")
)

// ErrMovieInUse is returned when a movie deletion is refused because
// showings or orders still reference it.  Handlers translate this into
// HTTP 409.
var ErrMovieInUse = errors.New("movie is referenced by showings or orders")

// ErrValidation indicates a storage-level constraint fired on input that
// should have been rejected upstream.  Handlers translate this into 400.
var ErrValidation = errors.New("invalid input")
