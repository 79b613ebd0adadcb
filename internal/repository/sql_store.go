package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
)

const userSeqKey = "user_sequence"

// SQLStore keeps the collections in relational tables. Storage order is
// preserved through a seq_no column. Statements use ? placeholders, which
// both MySQL and SQLite accept.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates the schema if needed and returns a store bound to db.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			seq_no            INT NOT NULL,
			user_id           VARCHAR(16) NOT NULL PRIMARY KEY,
			name              VARCHAR(255) NOT NULL,
			surname           VARCHAR(255) NOT NULL,
			username          VARCHAR(255) NOT NULL UNIQUE,
			password          VARCHAR(255) NOT NULL,
			preferred_genre   VARCHAR(32) NOT NULL,
			registration_date VARCHAR(19) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_bookings (
			user_id     VARCHAR(16) NOT NULL,
			seq_no      INT NOT NULL,
			showtime_id VARCHAR(32) NOT NULL,
			PRIMARY KEY (user_id, seq_no)
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			seq_no   INT NOT NULL,
			movie_id VARCHAR(32) NOT NULL PRIMARY KEY,
			title    VARCHAR(255) NOT NULL,
			genre    VARCHAR(64) NOT NULL,
			rating   DOUBLE NOT NULL,
			director VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS showtimes (
			seq_no          INT NOT NULL,
			showtime_id     VARCHAR(32) NOT NULL PRIMARY KEY,
			movie_id        VARCHAR(32) NOT NULL,
			cinema_name     VARCHAR(255) NOT NULL,
			showtime        VARCHAR(16) NOT NULL,
			available_seats INT NOT NULL CHECK (available_seats >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			meta_key   VARCHAR(64) NOT NULL PRIMARY KEY,
			meta_value BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return accessErr("schema", "migrate", err)
		}
	}
	return nil
}

// Load reads every table in storage order.
func (s *SQLStore) Load(ctx context.Context) (*Dataset, error) {
	d := &Dataset{
		Users:     []*model.User{},
		Movies:    []model.Movie{},
		Showtimes: []*model.Showtime{},
	}

	byID := map[string]*model.User{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, surname, username, password, preferred_genre, registration_date
		 FROM users ORDER BY seq_no`)
	if err != nil {
		return nil, accessErr("users", "read", err)
	}
	for rows.Next() {
		u := &model.User{BookedShowtimes: []string{}}
		if err := rows.Scan(&u.UserID, &u.Name, &u.Surname, &u.Username, &u.Password, &u.PreferredGenre, &u.RegistrationDate); err != nil {
			_ = rows.Close()
			return nil, accessErr("users", "decode", err)
		}
		d.Users = append(d.Users, u)
		byID[u.UserID] = u
	}
	if err := closeRows(rows); err != nil {
		return nil, accessErr("users", "read", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT user_id, showtime_id FROM user_bookings ORDER BY user_id, seq_no`)
	if err != nil {
		return nil, accessErr("user_bookings", "read", err)
	}
	for rows.Next() {
		var uid, sid string
		if err := rows.Scan(&uid, &sid); err != nil {
			_ = rows.Close()
			return nil, accessErr("user_bookings", "decode", err)
		}
		if u, ok := byID[uid]; ok {
			u.BookedShowtimes = append(u.BookedShowtimes, sid)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, accessErr("user_bookings", "read", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT movie_id, title, genre, rating, director FROM movies ORDER BY seq_no`)
	if err != nil {
		return nil, accessErr("movies", "read", err)
	}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.MovieID, &m.Title, &m.Genre, &m.Rating, &m.Director); err != nil {
			_ = rows.Close()
			return nil, accessErr("movies", "decode", err)
		}
		d.Movies = append(d.Movies, m)
	}
	if err := closeRows(rows); err != nil {
		return nil, accessErr("movies", "read", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT showtime_id, movie_id, cinema_name, showtime, available_seats FROM showtimes ORDER BY seq_no`)
	if err != nil {
		return nil, accessErr("showtimes", "read", err)
	}
	for rows.Next() {
		st := &model.Showtime{}
		if err := rows.Scan(&st.ShowtimeID, &st.MovieID, &st.CinemaName, &st.Showtime, &st.AvailableSeats); err != nil {
			_ = rows.Close()
			return nil, accessErr("showtimes", "decode", err)
		}
		d.Showtimes = append(d.Showtimes, st)
	}
	if err := closeRows(rows); err != nil {
		return nil, accessErr("showtimes", "read", err)
	}

	var seq int64
	err = s.db.QueryRowContext(ctx, `SELECT meta_value FROM store_meta WHERE meta_key = ?`, userSeqKey).Scan(&seq)
	if err != nil && err != sql.ErrNoRows {
		return nil, accessErr("store_meta", "read", err)
	}
	d.UserSeq = deriveUserSeq(d.Users)
	if int(seq) > d.UserSeq {
		d.UserSeq = int(seq)
	}
	return d, nil
}

// Persist rewrites the selected collections inside one transaction.
func (s *SQLStore) Persist(ctx context.Context, d *Dataset, scope Scope) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if scope.Has(ScopeUsers) {
			if err := writeUsers(ctx, tx, d); err != nil {
				return err
			}
		}
		if scope.Has(ScopeShowtimes) {
			if err := writeShowtimes(ctx, tx, d.Showtimes); err != nil {
				return err
			}
		}
		return nil
	})
}

// Import replaces every table, movies included, with the contents of d.
func (s *SQLStore) Import(ctx context.Context, d *Dataset) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := writeUsers(ctx, tx, d); err != nil {
			return err
		}
		if err := writeShowtimes(ctx, tx, d.Showtimes); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
			return accessErr("movies", "write", err)
		}
		for i, m := range d.Movies {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO movies (seq_no, movie_id, title, genre, rating, director) VALUES (?, ?, ?, ?, ?, ?)`,
				i, m.MovieID, m.Title, m.Genre, m.Rating, m.Director); err != nil {
				return accessErr("movies", "write", err)
			}
		}
		return nil
	})
}

// Close releases the underlying pool.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return accessErr("transaction", "begin", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return accessErr("transaction", "commit", err)
	}
	return nil
}

func writeUsers(ctx context.Context, tx *sql.Tx, d *Dataset) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_bookings`); err != nil {
		return accessErr("user_bookings", "write", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return accessErr("users", "write", err)
	}
	for i, u := range d.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (seq_no, user_id, name, surname, username, password, preferred_genre, registration_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, u.UserID, u.Name, u.Surname, u.Username, u.Password, u.PreferredGenre, u.RegistrationDate); err != nil {
			return accessErr("users", "write", fmt.Errorf("user %s: %w", u.UserID, err))
		}
		for j, sid := range u.BookedShowtimes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_bookings (user_id, seq_no, showtime_id) VALUES (?, ?, ?)`,
				u.UserID, j, sid); err != nil {
				return accessErr("user_bookings", "write", err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM store_meta WHERE meta_key = ?`, userSeqKey); err != nil {
		return accessErr("store_meta", "write", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO store_meta (meta_key, meta_value) VALUES (?, ?)`, userSeqKey, d.UserSeq); err != nil {
		return accessErr("store_meta", "write", err)
	}
	return nil
}

func writeShowtimes(ctx context.Context, tx *sql.Tx, showtimes []*model.Showtime) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM showtimes`); err != nil {
		return accessErr("showtimes", "write", err)
	}
	for i, st := range showtimes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO showtimes (seq_no, showtime_id, movie_id, cinema_name, showtime, available_seats)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, st.ShowtimeID, st.MovieID, st.CinemaName, st.Showtime, st.AvailableSeats); err != nil {
			return accessErr("showtimes", "write", fmt.Errorf("showtime %s: %w", st.ShowtimeID, err))
		}
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}
