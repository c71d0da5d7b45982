package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticketing/internal/model"
	"github.com/iliyamo/movie-ticketing/internal/repository"
)

// MovieHandler exposes catalog management.  Insert, update and delete are
// admin operations; reads are open to any authenticated caller.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(m *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{Movies: m}
}

type newMovieReq struct {
	Title    string   `json:"title"`
	Genres   []string `json:"genres"`
	Duration string   `json:"duration"`
	Rating   string   `json:"rating"`
}

type updateMovieReq struct {
	Title    string    `json:"title"`
	Genres   *[]string `json:"genres,omitempty"`
	Duration *string   `json:"duration,omitempty"`
	Rating   *string   `json:"rating,omitempty"`
}

type movieResp struct {
	ID       uint64   `json:"id"`
	Title    string   `json:"title"`
	Genres   []string `json:"genres"`
	Duration string   `json:"duration"`
	Rating   string   `json:"rating"`
}

func validRating(r string) bool {
	for _, v := range model.MovieRatings {
		if r == v {
			return true
		}
	}
	return false
}

// InsertMovies handles POST /v1/movies.  The body is an array of movies;
// a duplicate title anywhere in the batch rejects the whole batch.
func (h *MovieHandler) InsertMovies(c echo.Context) error {
	var reqs []newMovieReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one movie required"})
	}
	movies := make([]model.Movie, 0, len(reqs))
	for _, r := range reqs {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		if r.Rating != "" && !validRating(r.Rating) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating: " + r.Rating})
		}
		movies = append(movies, model.Movie{
			Title:    r.Title,
			Genres:   r.Genres,
			Duration: r.Duration,
			Rating:   r.Rating,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Movies.InsertMany(ctx, movies); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie title already exists"})
		}
		if errors.Is(err, repository.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie data"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "insert movies failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"inserted": len(movies)})
}

// GetAllMovies handles GET /v1/movies.
func (h *MovieHandler) GetAllMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	movies, err := h.Movies.GetAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list movies failed"})
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieResp{ID: m.ID, Title: m.Title, Genres: m.Genres, Duration: m.Duration, Rating: m.Rating})
	}
	return c.JSON(http.StatusOK, out)
}

// GetMovieByTitle handles GET /v1/movies/:title.
func (h *MovieHandler) GetMovieByTitle(c echo.Context) error {
	title := strings.TrimSpace(c.Param("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	m, err := h.Movies.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, movieResp{ID: m.ID, Title: m.Title, Genres: m.Genres, Duration: m.Duration, Rating: m.Rating})
}

// UpdateMovies handles PATCH /v1/movies.  Each item updates one movie by
// title; only supplied fields change, absent fields keep their stored
// values.
func (h *MovieHandler) UpdateMovies(c echo.Context) error {
	var reqs []updateMovieReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one update required"})
	}
	updates := make([]model.MovieUpdate, 0, len(reqs))
	for _, r := range reqs {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		if r.Rating != nil && !validRating(*r.Rating) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating: " + *r.Rating})
		}
		updates = append(updates, model.MovieUpdate{
			Title:    r.Title,
			Genres:   r.Genres,
			Duration: r.Duration,
			Rating:   r.Rating,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	modified, err := h.Movies.UpdateMany(ctx, updates)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update movies failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"modified": modified})
}

// DeleteMovies handles DELETE /v1/movies.  The body carries a list of
// titles; movies still referenced by showings or orders are refused.
func (h *MovieHandler) DeleteMovies(c echo.Context) error {
	var body struct {
		Titles []string `json:"titles"`
	}
	if err := c.Bind(&body); err != nil || len(body.Titles) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "titles is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	deleted, err := h.Movies.DeleteManyByTitles(ctx, body.Titles)
	if err != nil {
		if errors.Is(err, repository.ErrMovieInUse) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie is referenced by showings or orders"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movies failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
