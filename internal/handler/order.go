package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticketing/internal/queue"
	"github.com/iliyamo/movie-ticketing/internal/repository"
	queue_publisher "github.com/iliyamo/movie-ticketing/internal/service"
	"github.com/iliyamo/movie-ticketing/internal/utils"
)

// OrderHandler exposes the order ledger: placing orders, viewing history
// and cancelling.  All routes sit behind JWT authentication; the handler
// trusts the identity middleware and treats the body's username as the
// acting user the way the upstream permission layer validated it.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(o *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Orders: o}
}

type createOrderReq struct {
	Username        string `json:"username"`
	Title           string `json:"title"`
	StartTime       string `json:"start_time"`  // "Month DD, YYYY HH:mm:ss"
	FinishTime      string `json:"finish_time"` // "Month DD, YYYY HH:mm:ss"
	MovieStartTime  string `json:"movie_start_time"`
	MovieFinishTime string `json:"movie_finish_time"`
	TicketAmount    uint32 `json:"ticket_purchase_amount"`
}

// CreateOrder handles POST /v1/orders.  The order succeeds only when a
// matching open showing exists with enough remaining capacity; the seat
// increment and order insert are committed atomically.  A confirmation
// event is published to the broker after the commit; publish failures are
// logged and never fail the order.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Title = strings.TrimSpace(req.Title)
	if req.Username == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and title are required"})
	}
	if req.TicketAmount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_purchase_amount must be positive"})
	}
	start, err := utils.ParseDisplayTime(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, expected `Month DD, YYYY HH:mm:ss`"})
	}
	finish, err := utils.ParseDisplayTime(req.FinishTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, expected `Month DD, YYYY HH:mm:ss`"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ord, err := h.Orders.Create(ctx, repository.CreateOrderInput{
		Username:        req.Username,
		MovieTitle:      req.Title,
		StartTime:       utils.ToDBTime(start),
		FinishTime:      utils.ToDBTime(finish),
		MovieStartTime:  req.MovieStartTime,
		MovieFinishTime: req.MovieFinishTime,
		TicketAmount:    req.TicketAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound),
			errors.Is(err, repository.ErrMovieNotFound),
			errors.Is(err, repository.ErrShowingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "data not found"})
		case errors.Is(err, repository.ErrShowingClosed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie has been closed"})
		case errors.Is(err, repository.ErrSoldOut):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough seats available"})
		case errors.Is(err, repository.ErrDuplicateOrder):
			return c.JSON(http.StatusConflict, echo.Map{"error": "same order already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishOrderConfirmed(pubCtx, queue.OrderConfirmedEvent{
			OrderID:      ord.ID,
			UserID:       ord.UserID,
			Username:     req.Username,
			MovieID:      ord.MovieID,
			MovieTitle:   req.Title,
			TicketAmount: ord.TicketAmount,
			TotalAmount:  ord.TotalAmount,
			StartsAt:     ord.StartTime,
			FinishesAt:   ord.FinishTime,
			ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":     ord.ID,
		"total_amount": ord.TotalAmount,
	})
}

// OrderHistory handles GET /v1/orders/history/:username.  A user without
// orders gets a sentinel message rather than an empty list, so clients can
// tell "no orders" apart from an error.
func (h *OrderHandler) OrderHistory(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Orders.ListByUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list orders failed"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "no orders found"})
	}
	return c.JSON(http.StatusOK, items)
}

type deleteOrderReq struct {
	Username string `json:"username"`
	Title    string `json:"title"`
}

// DeleteOrder handles DELETE /v1/orders.  Exactly one order matched by
// (username, movie title) is removed and its seats are handed back to the
// showing.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	var req deleteOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Title = strings.TrimSpace(req.Title)
	if req.Username == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and title are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ord, err := h.Orders.Delete(ctx, req.Username, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "data not found"})
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no order to delete"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete order failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"deleted_order_id": ord.ID,
		"released_seats":   ord.TicketAmount,
	})
}
