package console

import (
	"errors"
	"time"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/utils"
)

// Session tracks the logged-in user. A signed token with an expiry is
// issued at login and checked before every dashboard prompt.
type Session struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time

	user  *model.User
	token string
}

// NewSession returns a logged-out session.
func NewSession(secret string, ttl time.Duration) *Session {
	return &Session{Secret: secret, TTL: ttl, Now: time.Now}
}

// Start logs user in and issues a fresh token.
func (s *Session) Start(user *model.User) error {
	tok, err := utils.NewSessionToken(s.Secret, user.UserID, s.TTL, s.Now())
	if err != nil {
		return err
	}
	s.user, s.token = user, tok.Token
	return nil
}

// Current returns the logged-in user, or nil. An expired or otherwise
// invalid token ends the session and its error is returned.
func (s *Session) Current() (*model.User, error) {
	if s.user == nil {
		return nil, nil
	}
	sub, err := utils.ParseSessionToken(s.Secret, s.token, s.Now())
	if err == nil && sub != s.user.UserID {
		err = errors.New("session token subject mismatch")
	}
	if err != nil {
		s.End()
		return nil, err
	}
	return s.user, nil
}

// End logs out.
func (s *Session) End() { s.user, s.token = nil, "" }
