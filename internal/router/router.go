// Package router registers the catalog API routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/handler"
)

// RegisterRoutes registers routes that sit outside the versioned API.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the read-only browse endpoints under /v1. mw
// runs on every catalog route, typically the rate limiter followed by the
// response cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/movies", h.SearchMovies)
	g.GET("/movies/:id", h.GetMovie)
	g.GET("/movies/:id/showtimes", h.MovieShowtimes)
	g.GET("/genres/:genre/movies", h.GenreMovies)
}
