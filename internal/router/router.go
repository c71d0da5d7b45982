// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticketing/internal/config"
	"github.com/iliyamo/movie-ticketing/internal/handler"
	"github.com/iliyamo/movie-ticketing/internal/middleware"
)

// Deps bundles everything the route table needs. Redis is optional; when it
// is nil the cache middleware degrades to a pass-through.
type Deps struct {
	Auth     *handler.AuthHandler
	Movies   *handler.MovieHandler
	Showings *handler.ShowingHandler
	Orders   *handler.OrderHandler

	JWTSecret string
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// Register sets up the whole route table.
//
// Unauthenticated surface: the health check, the auth endpoints and the
// upcoming-showings listing (cached when Redis is available). Everything
// else requires a valid access token; catalog and showing writes further
// require the admin role.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	a := e.Group("/v1/auth")
	a.POST("/register", d.Auth.SignUp)
	a.POST("/login", d.Auth.SignIn)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/refresh-access", d.Auth.RefreshAccess)
	a.POST("/logout", d.Auth.Logout)

	cache := middleware.NewRedisCache(d.Cache, d.Redis)

	// Guests may browse what is playing soon without an account.
	e.GET("/v1/showings/upcoming", d.Showings.ListUpcoming, cache)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	auth.Use(middleware.RequireRole("user", "admin"))

	auth.GET("/me", d.Auth.Me)

	// Catalog responses are identical for every caller, so they share the
	// same cache entries.
	auth.GET("/movies", d.Movies.GetAllMovies, cache)
	auth.GET("/movies/:title", d.Movies.GetMovieByTitle, cache)

	auth.POST("/orders", d.Orders.CreateOrder)
	auth.GET("/orders/history/:username", d.Orders.OrderHistory)
	auth.DELETE("/orders", d.Orders.DeleteOrder)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(d.JWTSecret))
	admin.Use(middleware.RequireRole("admin"))

	// Writes drop the cached catalog and showing listings so a read right
	// after an admin change sees it.
	invalidate := middleware.NewCacheInvalidator(d.Cache, d.Redis, "/v1/movies", "/v1/showings")

	admin.POST("/movies", d.Movies.InsertMovies, invalidate)
	admin.PATCH("/movies", d.Movies.UpdateMovies, invalidate)
	admin.DELETE("/movies", d.Movies.DeleteMovies, invalidate)

	admin.POST("/showings", d.Showings.OpenShowings, invalidate)
}
