package console

import (
	"strconv"
	"strings"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/service"
)

var genreList = strings.Join(model.Genres, ", ")

func formatRating(r float64) string { return strconv.FormatFloat(r, 'f', -1, 64) }

func (a *App) showSearchResults(keyword string, movies []model.Movie) {
	if len(movies) == 0 {
		a.p.printf("No movies found containing the keyword '%s'.\n", keyword)
		return
	}
	a.p.printf("\nMovies matching the keyword '%s':\n\n", keyword)
	for _, m := range movies {
		a.p.printf("Movie ID: %s - %s - %s (Rating: %s %s)\n",
			m.MovieID, m.Title, m.Genre, service.StarRating(m.Rating), formatRating(m.Rating))
	}
}

func (a *App) showRecommendations(movies []model.Movie) {
	if len(movies) == 0 {
		a.p.println("No recommendations available at the moment.")
		return
	}
	a.p.printf("\nRecommended Movies for You:\n\n")
	for _, m := range movies {
		a.p.printf("Movie ID: %s\n", m.MovieID)
		a.p.printf("Title: %s\n", m.Title)
		a.p.printf("Genre: %s\n", m.Genre)
		a.p.printf("Rating: %s (%s)\n", service.StarRating(m.Rating), formatRating(m.Rating))
		a.p.printf("Director: %s\n", m.Director)
		a.p.println(strings.Repeat("-", 40))
	}
}

func (a *App) showShowtimes(title string, showtimes []model.Showtime) {
	a.p.printf("Showtimes for Movie: %s:\n", title)
	for _, st := range showtimes {
		a.p.printf("%s - %s (Seats Available: %d) - %s\n", st.ShowtimeID, st.Showtime, st.AvailableSeats, st.CinemaName)
	}
}

func (a *App) showHistory(entries []service.BookingEntry) {
	if len(entries) == 0 {
		a.p.println("No bookings found.")
		return
	}
	for _, e := range entries {
		if e.Dangling {
			a.p.printf("Booking ID %s not found.\n", e.ShowtimeID)
			continue
		}
		a.p.printf("Movie: %s - %s - %s\n", e.MovieTitle, e.CinemaName, e.Showtime)
	}
}

func (a *App) showProfile(v service.UserView) {
	a.p.println("\n-- User Information --")
	a.p.printf("Name: %s %s\n", v.Name, v.Surname)
	a.p.printf("Username: %s\n", v.Username)
	a.p.printf("Preferred Genre: %s\n", v.PreferredGenre)
	a.p.printf("Registration Date: %s\n", v.RegistrationDate)
}
