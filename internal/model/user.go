package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RegistrationLayout is the on-disk format of User.RegistrationDate.
const RegistrationLayout = "2006-01-02 15:04:05"

// User represents an account record as stored in the users collection.
// The json tags match the keys of the legacy data files so existing
// users.json files load unchanged.
//
// Fields:
//  UserID           – unique identifier formatted as U####.
//  Name, Surname    – display name.
//  Username         – unique, case-sensitive login name.
//  Password         – stored credential (plaintext unless hashing is enabled).
//  PreferredGenre   – one of Genres.
//  RegistrationDate – when the account was created (RegistrationLayout).
//  BookedShowtimes  – showtime IDs in booking order; duplicates allowed.
type User struct {
	UserID           string   `json:"user_id"`
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	Username         string   `json:"username"`
	Password         string   `json:"password"`
	PreferredGenre   string   `json:"preferred_genres"`
	RegistrationDate string   `json:"registration_date"`
	BookedShowtimes  []string `json:"booked_showtimes"`
}

// FormatUserID renders a user sequence number as a user ID.
func FormatUserID(seq int) string {
	return fmt.Sprintf("U%04d", seq)
}

// ParseUserSeq extracts the numeric suffix of a U#### user ID.
func ParseUserSeq(id string) (int, error) {
	if !strings.HasPrefix(id, "U") {
		return 0, fmt.Errorf("user id %q: missing U prefix", id)
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return 0, fmt.Errorf("user id %q: %w", id, err)
	}
	return n, nil
}

// RegisteredAt parses RegistrationDate in the local time zone.
func (u *User) RegisteredAt() (time.Time, error) {
	return time.ParseInLocation(RegistrationLayout, u.RegistrationDate, time.Local)
}
