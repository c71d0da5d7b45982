package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticketing/internal/model"
	"github.com/iliyamo/movie-ticketing/internal/repository"
	"github.com/iliyamo/movie-ticketing/internal/utils"
)

// ShowingHandler exposes showing scheduling.  Opening showings is an admin
// operation; the upcoming listing is public and sits behind the response
// cache.
type ShowingHandler struct {
	Showings *repository.ShowingRepo
}

func NewShowingHandler(s *repository.ShowingRepo) *ShowingHandler {
	return &ShowingHandler{Showings: s}
}

type openShowingReq struct {
	MovieID        uint64 `json:"movie_id"`
	AvailableSeats uint32 `json:"available_seats"`
	MaxSeats       uint32 `json:"max_seats"`
	RoomCode       string `json:"room_code"`
	StartTime      string `json:"start_time"`  // "Month DD, YYYY HH:mm:ss"
	FinishTime     string `json:"finish_time"` // "Month DD, YYYY HH:mm:ss"
	TicketPrice    uint32 `json:"ticket_price"`
	Status         string `json:"status"` // open | closed
}

// OpenShowings handles POST /v1/showings.  The body is an array of
// showings to open; if any references a missing movie the whole batch is
// rejected and nothing is persisted.
func (h *ShowingHandler) OpenShowings(c echo.Context) error {
	var reqs []openShowingReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one showing required"})
	}

	showings := make([]model.Showing, 0, len(reqs))
	for _, r := range reqs {
		if r.MovieID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id is required"})
		}
		if r.MaxSeats == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_seats must be positive"})
		}
		if r.AvailableSeats > r.MaxSeats {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "available_seats cannot exceed max_seats"})
		}
		if !utils.IsAlphanumeric(r.RoomCode) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "room code only accepts letters and numbers"})
		}
		status := r.Status
		if status == "" {
			status = model.ShowingOpen
		}
		if status != model.ShowingOpen && status != model.ShowingClosed {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "only open and closed status accepted"})
		}
		start, err := utils.ParseDisplayTime(r.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, expected `Month DD, YYYY HH:mm:ss`"})
		}
		finish, err := utils.ParseDisplayTime(r.FinishTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, expected `Month DD, YYYY HH:mm:ss`"})
		}
		if !finish.After(start) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "finish_time must be after start_time"})
		}
		showings = append(showings, model.Showing{
			MovieID:        r.MovieID,
			AvailableSeats: r.AvailableSeats,
			MaxSeats:       r.MaxSeats,
			RoomCode:       r.RoomCode,
			StartTime:      utils.ToDBTime(start),
			FinishTime:     utils.ToDBTime(finish),
			TicketPrice:    r.TicketPrice,
			Status:         status,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Showings.InsertBatch(ctx, showings); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		if errors.Is(err, repository.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing data"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open showings failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"opened": len(showings)})
}

// ListUpcoming handles GET /v1/showings/upcoming.  It returns open
// showings within the next seven days that still have seats, joined with
// movie details and ordered by start time.
func (h *ShowingHandler) ListUpcoming(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Showings.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list showings failed"})
	}
	return c.JSON(http.StatusOK, items)
}
