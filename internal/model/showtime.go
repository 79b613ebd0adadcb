package model

import "time"

// ShowtimeLayout is the on-disk format of Showtime.Showtime.
const ShowtimeLayout = "2006-01-02 15:04"

// Showtime represents a scheduled screening of a movie at a cinema with an
// undifferentiated number of remaining seats.
//
// Fields:
//  ShowtimeID     – unique identifier.
//  MovieID        – catalog movie shown; not required to resolve.
//  CinemaName     – venue name.
//  Showtime       – start time (ShowtimeLayout).
//  AvailableSeats – seats left; only ever decremented.
type Showtime struct {
	ShowtimeID     string `json:"showtime_id"`
	MovieID        string `json:"movie_id"`
	CinemaName     string `json:"cinema_name"`
	Showtime       string `json:"showtime"`
	AvailableSeats int    `json:"available_seats"`
}

// StartsAt parses the Showtime field.
func (s *Showtime) StartsAt() (time.Time, error) {
	return time.Parse(ShowtimeLayout, s.Showtime)
}
