package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/queue"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

// BookingPublisher receives an event after each committed booking.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// Booking is the outcome of a successful BookingLedger.Book.
type Booking struct {
	UserID   string
	Showtime model.Showtime // state after the seat was taken
}

// BookingEntry is one line of a user's booking history. Dangling entries
// name a showtime that no longer exists; only ShowtimeID is set on them.
type BookingEntry struct {
	ShowtimeID string
	MovieTitle string
	CinemaName string
	Showtime   string
	Dangling   bool
}

// BookingLedger owns the showtimes collection and the booked_showtimes
// references inside user records.
type BookingLedger struct {
	store     repository.Store
	data      *repository.Dataset
	publisher BookingPublisher
	log       *slog.Logger

	Now func() time.Time
}

// NewBookingLedger returns a ledger over data. publisher may be nil.
func NewBookingLedger(store repository.Store, data *repository.Dataset, publisher BookingPublisher, log *slog.Logger) *BookingLedger {
	if log == nil {
		log = slog.Default()
	}
	return &BookingLedger{store: store, data: data, publisher: publisher, log: log, Now: time.Now}
}

// ShowtimesForMovie lists bookable showtimes of a movie, earliest first.
func (l *BookingLedger) ShowtimesForMovie(movieID string) ([]model.Showtime, error) {
	return AvailableShowtimes(l.data.Showtimes, movieID)
}

// AvailableShowtimes filters showtimes by exact movie ID and free seats and
// sorts them by start time. Times that do not parse sort last in storage
// order. It returns ErrNoShowtimes when the movie has no showtime at all and
// ErrNoAvailableShowtimes when all of them are sold out.
func AvailableShowtimes(showtimes []*model.Showtime, movieID string) ([]model.Showtime, error) {
	type timed struct {
		st model.Showtime
		at time.Time
		ok bool
	}
	found := false
	var open []timed
	for _, st := range showtimes {
		if st.MovieID != movieID {
			continue
		}
		found = true
		if st.AvailableSeats <= 0 {
			continue
		}
		at, err := st.StartsAt()
		open = append(open, timed{st: *st, at: at, ok: err == nil})
	}
	if !found {
		return nil, ErrNoShowtimes
	}
	if len(open) == 0 {
		return nil, ErrNoAvailableShowtimes
	}
	slices.SortStableFunc(open, func(a, b timed) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})
	out := make([]model.Showtime, len(open))
	for i, t := range open {
		out[i] = t.st
	}
	return out, nil
}

// Book takes one seat of the showtime for user. The seat decrement and the
// appended reference are persisted together; if persisting fails both are
// undone and the error is returned. An unknown or sold-out showtime yields
// ErrBookingUnavailable with no state changed.
func (l *BookingLedger) Book(ctx context.Context, user *model.User, showtimeID string) (*Booking, error) {
	if !slices.Contains(l.data.Users, user) {
		return nil, ErrUserNotFound
	}
	var st *model.Showtime
	for _, s := range l.data.Showtimes {
		if s.ShowtimeID == showtimeID && s.AvailableSeats > 0 {
			st = s
			break
		}
	}
	if st == nil {
		l.log.Info("booking unavailable", "showtime_id", showtimeID, "user_id", user.UserID)
		return nil, ErrBookingUnavailable
	}

	st.AvailableSeats--
	user.BookedShowtimes = append(user.BookedShowtimes, showtimeID)
	if err := l.store.Persist(ctx, l.data, repository.ScopeUsers|repository.ScopeShowtimes); err != nil {
		st.AvailableSeats++
		user.BookedShowtimes = user.BookedShowtimes[:len(user.BookedShowtimes)-1]
		return nil, fmt.Errorf("book %s: %w", showtimeID, err)
	}
	l.log.Info("showtime booked", "showtime_id", showtimeID, "user_id", user.UserID, "seats_left", st.AvailableSeats)

	l.publish(ctx, user, *st)
	return &Booking{UserID: user.UserID, Showtime: *st}, nil
}

func (l *BookingLedger) publish(ctx context.Context, user *model.User, st model.Showtime) {
	if l.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		ShowtimeID:  st.ShowtimeID,
		UserID:      user.UserID,
		Username:    user.Username,
		MovieID:     st.MovieID,
		MovieTitle:  movieTitle(l.data.Movies, st.MovieID),
		CinemaName:  st.CinemaName,
		Showtime:    st.Showtime,
		SeatsLeft:   st.AvailableSeats,
		ConfirmedAt: l.Now().UTC().Format(time.RFC3339),
	}
	// The booking is already committed; a lost event is only logged.
	if err := l.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		l.log.Warn("booking event not published", "showtime_id", st.ShowtimeID, "err", err)
	}
}

// History resolves each booked reference of user in order.
func (l *BookingLedger) History(user *model.User) []BookingEntry {
	out := make([]BookingEntry, 0, len(user.BookedShowtimes))
	for _, id := range user.BookedShowtimes {
		st := l.showtime(id)
		if st == nil {
			out = append(out, BookingEntry{ShowtimeID: id, Dangling: true})
			continue
		}
		out = append(out, BookingEntry{
			ShowtimeID: id,
			MovieTitle: movieTitle(l.data.Movies, st.MovieID),
			CinemaName: st.CinemaName,
			Showtime:   st.Showtime,
		})
	}
	return out
}

func (l *BookingLedger) showtime(id string) *model.Showtime {
	for _, s := range l.data.Showtimes {
		if s.ShowtimeID == id {
			return s
		}
	}
	return nil
}
