// Package handler exposes the read-only catalog API. Handlers reload the
// data store on every request so bookings made from the console show up
// in seat counts immediately.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/service"
)

// CatalogHandler serves movies and showtimes from a Store.
type CatalogHandler struct {
	Store repository.Store
	Log   *slog.Logger
}

// PublicMovie is a movie as returned by the API, with its star display.
type PublicMovie struct {
	ID       string  `json:"movie_id"`
	Title    string  `json:"title"`
	Genre    string  `json:"genre"`
	Rating   float64 `json:"rating"`
	Stars    string  `json:"stars"`
	Director string  `json:"director"`
}

// PublicShowtime is a bookable showtime.
type PublicShowtime struct {
	ID             string `json:"showtime_id"`
	MovieID        string `json:"movie_id"`
	CinemaName     string `json:"cinema_name"`
	Showtime       string `json:"showtime"`
	AvailableSeats int    `json:"available_seats"`
}

func toPublicMovie(m model.Movie) PublicMovie {
	return PublicMovie{
		ID:       m.MovieID,
		Title:    m.Title,
		Genre:    m.Genre,
		Rating:   m.Rating,
		Stars:    service.StarRating(m.Rating),
		Director: m.Director,
	}
}

func toPublicMovies(movies []model.Movie) []PublicMovie {
	out := make([]PublicMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, toPublicMovie(m))
	}
	return out
}

func (h *CatalogHandler) load(c echo.Context) (*repository.Dataset, error) {
	d, err := h.Store.Load(c.Request().Context())
	if err != nil && h.Log != nil {
		h.Log.Error("catalog load failed", "path", c.Path(), "err", err)
	}
	return d, err
}

func storeError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store_unavailable"})
}

// SearchMovies lists movies whose title contains ?q=, ignoring case, in
// storage order. Results are paged with ?page= and ?page_size= (max 100).
func (h *CatalogHandler) SearchMovies(c echo.Context) error {
	d, err := h.load(c)
	if err != nil {
		return storeError(c)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	ps = min(ps, 100)

	all := slices.Collect(service.NewCatalog(d).Search(c.QueryParam("q")))
	start := min((page-1)*ps, len(all))
	end := min(start+ps, len(all))

	return c.JSON(http.StatusOK, echo.Map{
		"data":      toPublicMovies(all[start:end]),
		"total":     len(all),
		"page":      page,
		"page_size": ps,
	})
}

// GetMovie returns one movie by ID.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	d, err := h.load(c)
	if err != nil {
		return storeError(c)
	}
	m, ok := service.NewCatalog(d).Movie(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	return c.JSON(http.StatusOK, toPublicMovie(m))
}

// MovieShowtimes lists the bookable showtimes of a movie, earliest first.
// A movie without any showtime is a 404; a sold-out movie yields an empty
// list.
func (h *CatalogHandler) MovieShowtimes(c echo.Context) error {
	d, err := h.load(c)
	if err != nil {
		return storeError(c)
	}
	id := c.Param("id")
	list, err := service.AvailableShowtimes(d.Showtimes, id)
	switch {
	case errors.Is(err, service.ErrNoShowtimes):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoAvailableShowtimes):
		list = nil
	case err != nil:
		return storeError(c)
	}
	out := make([]PublicShowtime, 0, len(list))
	for _, st := range list {
		out = append(out, PublicShowtime{
			ID:             st.ShowtimeID,
			MovieID:        st.MovieID,
			CinemaName:     st.CinemaName,
			Showtime:       st.Showtime,
			AvailableSeats: st.AvailableSeats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie_title": service.NewCatalog(d).MovieTitle(id),
		"items":       out,
	})
}

// GenreMovies returns the movies of a genre, highest rated first, the same
// list a user with that preferred genre is recommended.
func (h *CatalogHandler) GenreMovies(c echo.Context) error {
	genre := c.Param("genre")
	if !model.ValidGenre(genre) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre", "genres": model.Genres})
	}
	d, err := h.load(c)
	if err != nil {
		return storeError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toPublicMovies(service.ByGenre(d.Movies, genre))})
}
