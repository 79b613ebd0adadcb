package service

import (
	"cmp"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

// UnknownMovie is shown when a showtime references a movie not in the catalog.
const UnknownMovie = "Unknown Movie"

// Catalog provides read-only search and recommendation over the movies
// collection.
type Catalog struct {
	data *repository.Dataset
}

// NewCatalog returns a catalog over data.
func NewCatalog(data *repository.Dataset) *Catalog { return &Catalog{data: data} }

// Search yields movies whose title contains keyword, ignoring case, in
// storage order. An empty keyword matches every movie. The sequence scans
// the catalog again each time it is ranged over.
func (c *Catalog) Search(keyword string) iter.Seq[model.Movie] {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	return func(yield func(model.Movie) bool) {
		for _, m := range c.data.Movies {
			if strings.Contains(strings.ToLower(m.Title), kw) {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// Recommend returns the movies matching the user's preferred genre, highest
// rating first. Equal ratings keep storage order.
func (c *Catalog) Recommend(user *model.User) []model.Movie {
	return ByGenre(c.data.Movies, user.PreferredGenre)
}

// ByGenre filters movies whose genre is contained in genre and sorts them
// by rating descending with a stable sort.
func ByGenre(movies []model.Movie, genre string) []model.Movie {
	out := make([]model.Movie, 0)
	for _, m := range movies {
		if m.Genre != "" && strings.Contains(genre, m.Genre) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Movie) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	return out
}

// Movie looks up a movie by ID.
func (c *Catalog) Movie(id string) (model.Movie, bool) {
	for _, m := range c.data.Movies {
		if m.MovieID == id {
			return m, true
		}
	}
	return model.Movie{}, false
}

// MovieTitle returns the title for id or UnknownMovie.
func (c *Catalog) MovieTitle(id string) string {
	return movieTitle(c.data.Movies, id)
}

func movieTitle(movies []model.Movie, id string) string {
	for _, m := range movies {
		if m.MovieID == id {
			return m.Title
		}
	}
	return UnknownMovie
}

// StarRating renders a 0–10 rating as five stars, one filled star per two
// rating points. Out-of-range ratings are clamped.
func StarRating(rating float64) string {
	if math.IsNaN(rating) {
		rating = 0
	}
	filled := int(math.Floor(max(0, min(10, rating)) / 2))
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}
