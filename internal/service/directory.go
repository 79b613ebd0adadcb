package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/utils"
)

// Registration is the input to UserDirectory.Register.
type Registration struct {
	Username string
	Password string
	Name     string
	Surname  string
	Genre    string
}

// UserView is the display projection of a user.
type UserView struct {
	Name             string
	Surname          string
	Username         string
	PreferredGenre   string
	RegistrationDate string
}

// UserDirectory owns the users collection: registration, login, account
// deletion and profile display.
type UserDirectory struct {
	store repository.Store
	data  *repository.Dataset
	log   *slog.Logger

	// BcryptCost > 0 hashes new passwords; zero keeps plain text.
	BcryptCost int
	// Now supplies registration timestamps.
	Now func() time.Time
}

// NewUserDirectory returns a directory over data that persists through store.
func NewUserDirectory(store repository.Store, data *repository.Dataset, log *slog.Logger) *UserDirectory {
	if log == nil {
		log = slog.Default()
	}
	return &UserDirectory{store: store, data: data, log: log, Now: time.Now}
}

// UsernameAvailable reports whether no user has exactly this username.
func (d *UserDirectory) UsernameAvailable(username string) bool {
	return d.findByUsername(username) == nil
}

// Register creates a user with the next ID from the persisted sequence and
// saves the users collection. Nothing changes in memory if saving fails.
func (d *UserDirectory) Register(ctx context.Context, r Registration) (*model.User, error) {
	if !d.UsernameAvailable(r.Username) {
		return nil, &ValidationError{Field: "username", Err: ErrUsernameTaken}
	}
	genre := strings.TrimSpace(r.Genre)
	if !model.ValidGenre(genre) {
		return nil, &ValidationError{Field: "preferred_genre", Err: ErrInvalidGenre}
	}
	stored, err := utils.HashPassword(r.Password, d.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	prevSeq := d.data.UserSeq
	seq := prevSeq
	var id string
	for {
		seq++
		id = model.FormatUserID(seq)
		if d.findByID(id) == nil {
			break
		}
	}

	u := &model.User{
		UserID:           id,
		Name:             r.Name,
		Surname:          r.Surname,
		Username:         r.Username,
		Password:         stored,
		PreferredGenre:   genre,
		RegistrationDate: d.Now().Format(model.RegistrationLayout),
		BookedShowtimes:  []string{},
	}
	d.data.Users = append(d.data.Users, u)
	d.data.UserSeq = seq
	if err := d.store.Persist(ctx, d.data, repository.ScopeUsers); err != nil {
		d.data.Users = d.data.Users[:len(d.data.Users)-1]
		d.data.UserSeq = prevSeq
		return nil, fmt.Errorf("register %q: %w", r.Username, err)
	}
	d.log.Info("user registered", "user_id", id, "username", u.Username)
	return u, nil
}

// Authenticate returns the user whose username and password both match.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	for _, u := range d.data.Users {
		if u.Username == username && utils.VerifyPassword(u.Password, password) {
			d.log.Info("login succeeded", "user_id", u.UserID)
			return u, nil
		}
	}
	d.log.Info("login failed")
	return nil, ErrInvalidCredentials
}

// Delete removes exactly this user record and saves the users collection.
// Without confirmation nothing happens and false is returned.
func (d *UserDirectory) Delete(ctx context.Context, user *model.User, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	idx := -1
	for i, u := range d.data.Users {
		if u == user {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrUserNotFound
	}

	prev := d.data.Users
	next := make([]*model.User, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	d.data.Users = next
	if err := d.store.Persist(ctx, d.data, repository.ScopeUsers); err != nil {
		d.data.Users = prev
		return false, fmt.Errorf("delete %s: %w", user.UserID, err)
	}
	d.log.Info("user deleted", "user_id", user.UserID)
	return true, nil
}

// Profile projects the fields shown on the profile screen.
func (d *UserDirectory) Profile(user *model.User) UserView {
	return UserView{
		Name:             user.Name,
		Surname:          user.Surname,
		Username:         user.Username,
		PreferredGenre:   user.PreferredGenre,
		RegistrationDate: user.RegistrationDate,
	}
}

// ByID returns the user with this ID, or nil.
func (d *UserDirectory) ByID(id string) *model.User { return d.findByID(id) }

func (d *UserDirectory) findByUsername(username string) *model.User {
	for _, u := range d.data.Users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (d *UserDirectory) findByID(id string) *model.User {
	for _, u := range d.data.Users {
		if u.UserID == id {
			return u
		}
	}
	return nil
}
