// Package queue defines message payloads exchanged over the message broker
// and the AMQP publisher and consumer that carry them.
package queue

// BookingConfirmedQueue is the durable queue booking events are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking has been committed to
// the data store. It contains enough information for downstream consumers
// to log or notify without reading the data files.
type BookingConfirmedEvent struct {
	ShowtimeID  string `json:"showtime_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	MovieID     string `json:"movie_id"`
	MovieTitle  string `json:"movie_title"`
	CinemaName  string `json:"cinema_name"`
	Showtime    string `json:"showtime"`
	SeatsLeft   int    `json:"seats_left"`
	ConfirmedAt string `json:"confirmed_at"`
}
