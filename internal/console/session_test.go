package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/utils"
)

func TestSession(t *testing.T) {
	now := time.Date(2024, 11, 30, 9, 0, 0, 0, time.UTC)
	s := NewSession("k", 10*time.Minute)
	s.Now = func() time.Time { return now }
	u := &model.User{UserID: "U0001"}

	got, err := s.Current()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Start(u))
	got, err = s.Current()
	require.NoError(t, err)
	assert.Same(t, u, got)

	now = now.Add(11 * time.Minute)
	got, err = s.Current()
	assert.ErrorIs(t, err, utils.ErrSessionExpired)
	assert.Nil(t, got)

	got, err = s.Current()
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSession_EndClearsToken(t *testing.T) {
	s := NewSession("k", time.Minute)
	require.NoError(t, s.Start(&model.User{UserID: "U0002"}))
	s.End()
	assert.Empty(t, s.token)
	assert.Nil(t, s.user)
}
