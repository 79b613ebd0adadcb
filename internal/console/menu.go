// Package console runs the interactive booking menus over line-oriented
// text input and output.
package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/service"
)

// App wires the services to a prompt loop. One user is logged in at a time
// and every action completes before the next line is read.
type App struct {
	users   *service.UserDirectory
	catalog *service.Catalog
	ledger  *service.BookingLedger
	session *Session
	log     *slog.Logger
	p       *prompter
}

// New returns an App that reads answers from in and writes to out.
func New(users *service.UserDirectory, catalog *service.Catalog, ledger *service.BookingLedger,
	session *Session, log *slog.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		users:   users,
		catalog: catalog,
		ledger:  ledger,
		session: session,
		log:     log,
		p:       newPrompter(in, out),
	}
}

// Run loops over the homepage and dashboard menus until the user exits or
// the input ends. Both cases return nil.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		user, err := a.session.Current()
		if err != nil {
			a.log.Info("session ended", "err", err)
			a.p.println("\nYour session has expired. Please log in again.")
		}
		var done bool
		if user == nil {
			done, err = a.homepage(ctx)
		} else {
			err = a.dashboard(ctx, user)
		}
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (a *App) homepage(ctx context.Context) (bool, error) {
	a.p.println("\n-- Homepage --")
	a.p.println("1. Login")
	a.p.println("2. Register")
	a.p.println("3. Exit")
	choice, err := a.p.ask("Enter your choice: ")
	if err != nil {
		return false, err
	}
	switch choice {
	case "1":
		return false, a.login(ctx)
	case "2":
		return false, a.register(ctx)
	case "3":
		a.p.println("Exiting the application. Goodbye!")
		return true, nil
	default:
		a.p.println("Invalid choice. Please try again.")
	}
	return false, nil
}

func (a *App) dashboard(ctx context.Context, user *model.User) error {
	a.p.println("\n-- User Dashboard --")
	for i, item := range []string{
		"Search Movies",
		"View Recommended Movies",
		"View Showtimes by Movie",
		"Book a Showtime",
		"View Booking History",
		"View User Info",
		"Delete Account",
		"Logout",
	} {
		a.p.printf("%d. %s\n", i+1, item)
	}
	choice, err := a.p.ask("Enter your choice: ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return a.search()
	case "2":
		a.p.println("\n-- Recommended Movies --")
		a.showRecommendations(a.catalog.Recommend(user))
	case "3":
		return a.showtimes()
	case "4":
		return a.book(ctx, user)
	case "5":
		a.p.println("\n-- Booking History --")
		a.showHistory(a.ledger.History(user))
	case "6":
		a.showProfile(a.users.Profile(user))
	case "7":
		return a.deleteAccount(ctx, user)
	case "8":
		a.session.End()
		a.p.println("Logged out successfully!")
	default:
		a.p.println("Invalid choice. Please try again.")
	}
	return nil
}

func (a *App) login(ctx context.Context) error {
	a.p.println("\n-- Login --")
	username, err := a.p.ask("Enter your username: ")
	if err != nil {
		return err
	}
	password, err := a.p.ask("Enter your password: ")
	if err != nil {
		return err
	}
	user, err := a.users.Authenticate(ctx, username, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		a.p.println("Incorrect username or password. Please try again.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.session.Start(user); err != nil {
		return err
	}
	a.p.println("Login successful!")
	return nil
}

func (a *App) register(ctx context.Context) error {
	a.p.println("\n-- Register --")
	username, err := a.p.ask("Enter a new username: ")
	if err != nil {
		return err
	}
	for !a.users.UsernameAvailable(username) {
		a.p.println("The username is not available, please try another one.")
		if username, err = a.p.ask("Enter a new username: "); err != nil {
			return err
		}
	}
	var r service.Registration
	r.Username = username
	if r.Password, err = a.p.ask("Enter a new password: "); err != nil {
		return err
	}
	if r.Name, err = a.p.ask("Enter your first name: "); err != nil {
		return err
	}
	if r.Surname, err = a.p.ask("Enter your surname: "); err != nil {
		return err
	}
	a.p.printf("Select your preferred genre from: %s\n", genreList)
	if r.Genre, err = a.p.ask("Enter your preferred genre: "); err != nil {
		return err
	}
	for !model.ValidGenre(strings.TrimSpace(r.Genre)) {
		a.p.printf("Invalid genre. Please select from: %s\n", genreList)
		if r.Genre, err = a.p.ask("Enter your preferred genre: "); err != nil {
			return err
		}
	}

	if _, err := a.users.Register(ctx, r); err != nil {
		if service.IsValidation(err) {
			a.p.printf("Registration failed: %v\n", err)
			return nil
		}
		a.log.Error("registration not saved", "err", err)
		a.p.println("Registration could not be saved. Please try again later.")
		return nil
	}
	a.p.println("Registration successful! Returning to the main menu...")
	return nil
}

func (a *App) search() error {
	a.p.println("\n-- Search Movies --")
	keyword, err := a.p.ask("Enter a keyword to search for movies: ")
	if err != nil {
		return err
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	a.showSearchResults(keyword, slices.Collect(a.catalog.Search(keyword)))
	return nil
}

func (a *App) showtimes() error {
	a.p.println("\n-- View Showtimes by Movie --")
	movieID, err := a.p.ask("Enter the movie ID: ")
	if err != nil {
		return err
	}
	list, err := a.ledger.ShowtimesForMovie(movieID)
	switch {
	case errors.Is(err, service.ErrNoShowtimes):
		a.p.println("There is no showtime for selected movie.")
	case errors.Is(err, service.ErrNoAvailableShowtimes):
		a.p.println("No available showtimes for the specified movie.")
	case err != nil:
		return err
	default:
		a.showShowtimes(a.catalog.MovieTitle(movieID), list)
	}
	return nil
}

func (a *App) book(ctx context.Context, user *model.User) error {
	a.p.println("\n-- Book a Showtime --")
	showtimeID, err := a.p.ask("Enter the showtime ID: ")
	if err != nil {
		return err
	}
	_, err = a.ledger.Book(ctx, user, showtimeID)
	switch {
	case err == nil:
		a.p.println("Successfully booked a showtime!")
	case errors.Is(err, service.ErrBookingUnavailable):
		a.p.println("Unfortunately, the showtime is not available for booking.")
	case errors.Is(err, service.ErrUserNotFound):
		a.session.End()
		a.p.println("Your account no longer exists.")
	default:
		a.log.Error("booking not saved", "showtime_id", showtimeID, "err", err)
		a.p.println("The booking could not be saved. Please try again later.")
	}
	return nil
}

func (a *App) deleteAccount(ctx context.Context, user *model.User) error {
	answer, err := a.p.ask("Are you sure you want to delete your account? (y/n): ")
	if err != nil {
		return err
	}
	deleted, err := a.users.Delete(ctx, user, strings.ToLower(answer) == "y")
	if err != nil {
		a.log.Error("account deletion not saved", "user_id", user.UserID, "err", err)
		a.p.println("The account could not be deleted. Please try again later.")
		return nil
	}
	if !deleted {
		a.p.println("Returning to the previous page.")
		return nil
	}
	a.session.End()
	a.p.println("Account successfully deleted!")
	return nil
}
