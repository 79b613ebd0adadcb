package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/queue"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

// fakeStore records Persist calls and can be told to fail.
type fakeStore struct {
	persists []repository.Scope
	failErr  error
}

func (f *fakeStore) Load(ctx context.Context) (*repository.Dataset, error) { return nil, nil }

func (f *fakeStore) Persist(ctx context.Context, d *repository.Dataset, scope repository.Scope) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.persists = append(f.persists, scope)
	return nil
}

func (f *fakeStore) Close() error { return nil }

type fakePublisher struct {
	events  []queue.BookingConfirmedEvent
	failErr error
}

func (p *fakePublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.failErr
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newDataset() *repository.Dataset {
	return &repository.Dataset{
		Users: []*model.User{
			{UserID: "U0001", Name: "Ann", Surname: "Lee", Username: "ann", Password: "pw1",
				PreferredGenre: "Sci-Fi", RegistrationDate: "2024-11-01 10:00:00", BookedShowtimes: []string{}},
			{UserID: "U0002", Name: "Bob", Surname: "Ray", Username: "bob", Password: "pw2",
				PreferredGenre: "Romance", RegistrationDate: "2024-11-02 11:00:00", BookedShowtimes: []string{"S0001", "S9999"}},
		},
		Movies: []model.Movie{
			{MovieID: "M0001", Title: "Interstellar", Genre: "Sci-Fi", Rating: 8.6, Director: "Christopher Nolan"},
			{MovieID: "M0002", Title: "The Notebook", Genre: "Romance", Rating: 7.8, Director: "Nick Cassavetes"},
			{MovieID: "M0003", Title: "Arrival", Genre: "Sci-Fi", Rating: 7.9, Director: "Denis Villeneuve"},
			{MovieID: "M0004", Title: "Dune", Genre: "Sci-Fi", Rating: 8.6, Director: "Denis Villeneuve"},
			{MovieID: "M0005", Title: "Pride and Prejudice", Genre: "Romance", Rating: 7.8, Director: "Joe Wright"},
		},
		Showtimes: []*model.Showtime{
			{ShowtimeID: "S0001", MovieID: "M0001", CinemaName: "Moscow Cinema", Showtime: "2024-12-03 18:30", AvailableSeats: 1},
			{ShowtimeID: "S0002", MovieID: "M0001", CinemaName: "Kino Park", Showtime: "2024-12-01 20:00", AvailableSeats: 5},
			{ShowtimeID: "S0003", MovieID: "M0001", CinemaName: "Kino Park", Showtime: "2024-12-02 20:00", AvailableSeats: 0},
			{ShowtimeID: "S0004", MovieID: "M0002", CinemaName: "Kino Park", Showtime: "2024-12-02 21:00", AvailableSeats: 0},
			{ShowtimeID: "S0005", MovieID: "M0404", CinemaName: "Nowhere", Showtime: "2024-12-05 12:00", AvailableSeats: 2},
		},
		UserSeq: 2,
	}
}
