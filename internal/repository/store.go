package repository

import (
	"context"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
)

// Scope selects which collections Persist rewrites. Movies are never
// persisted.
type Scope uint8

const (
	ScopeUsers Scope = 1 << iota
	ScopeShowtimes
)

// Has reports whether s includes every bit of other.
func (s Scope) Has(other Scope) bool { return s&other == other }

// Dataset is the in-memory copy of all three collections. Users and
// showtimes are held by pointer so services can mutate records in place.
type Dataset struct {
	Users     []*model.User
	Movies    []model.Movie
	Showtimes []*model.Showtime
	// UserSeq is the highest user sequence ever assigned. It is persisted
	// with the users collection and never decreases.
	UserSeq int
}

// Store loads and persists a Dataset. Persist overwrites the selected
// collections wholesale; when both are selected they are committed as one
// unit.
type Store interface {
	Load(ctx context.Context) (*Dataset, error)
	Persist(ctx context.Context, d *Dataset, scope Scope) error
	Close() error
}

// deriveUserSeq returns the largest numeric suffix among users, for data
// written before the sequence was persisted.
func deriveUserSeq(users []*model.User) int {
	max := 0
	for _, u := range users {
		if n, err := model.ParseUserSeq(u.UserID); err == nil && n > max {
			max = n
		}
	}
	return max
}
