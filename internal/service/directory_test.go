package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/service"
)

func newDirectory(store repository.Store, data *repository.Dataset) *service.UserDirectory {
	d := service.NewUserDirectory(store, data, discardLogger())
	d.Now = func() time.Time { return time.Date(2024, 11, 30, 9, 15, 0, 0, time.Local) }
	return d
}

func TestRegister_AssignsIncreasingIDs(t *testing.T) {
	store := &fakeStore{}
	data := newDataset()
	dir := newDirectory(store, data)
	ctx := context.Background()

	u, err := dir.Register(ctx, service.Registration{Username: "cy", Password: "pw", Name: "Cy", Surname: "Ng", Genre: "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, "U0003", u.UserID)
	assert.Equal(t, "pw", u.Password)
	assert.Equal(t, "2024-11-30 09:15:00", u.RegistrationDate)
	assert.Equal(t, []string{}, u.BookedShowtimes)
	assert.Same(t, u, data.Users[len(data.Users)-1])
	assert.Equal(t, []repository.Scope{repository.ScopeUsers}, store.persists)

	v, err := dir.Register(ctx, service.Registration{Username: "dee", Genre: " Musical "})
	require.NoError(t, err)
	assert.Equal(t, "U0004", v.UserID)
	assert.Equal(t, "Musical", v.PreferredGenre)
	assert.Equal(t, 4, data.UserSeq)
}

func TestRegister_DoesNotReuseIDAfterDeletingLastUser(t *testing.T) {
	data := newDataset()
	dir := newDirectory(&fakeStore{}, data)
	ctx := context.Background()

	ok, err := dir.Delete(ctx, data.Users[1], true)
	require.NoError(t, err)
	require.True(t, ok)

	u, err := dir.Register(ctx, service.Registration{Username: "cy", Genre: "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, "U0003", u.UserID)
}

func TestRegister_SkipsIDsAlreadyPresent(t *testing.T) {
	data := newDataset()
	data.UserSeq = 0
	dir := newDirectory(&fakeStore{}, data)

	u, err := dir.Register(context.Background(), service.Registration{Username: "cy", Genre: "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, "U0003", u.UserID)
}

func TestRegister_Validation(t *testing.T) {
	store := &fakeStore{}
	data := newDataset()
	dir := newDirectory(store, data)
	ctx := context.Background()

	_, err := dir.Register(ctx, service.Registration{Username: "ann", Genre: "Sci-Fi"})
	require.ErrorIs(t, err, service.ErrUsernameTaken)
	assert.True(t, service.IsValidation(err))

	_, err = dir.Register(ctx, service.Registration{Username: "Ann", Genre: "Horror"})
	require.ErrorIs(t, err, service.ErrInvalidGenre)
	assert.True(t, service.IsValidation(err))

	assert.Len(t, data.Users, 2)
	assert.Empty(t, store.persists)
	assert.True(t, dir.UsernameAvailable("Ann"), "usernames are case-sensitive")
	assert.False(t, dir.UsernameAvailable("ann"))
}

func TestRegister_PersistFailureRollsBack(t *testing.T) {
	store := &fakeStore{failErr: &repository.AccessError{Resource: "users.json", Op: "write", Err: errors.New("disk full")}}
	data := newDataset()
	dir := newDirectory(store, data)

	_, err := dir.Register(context.Background(), service.Registration{Username: "cy", Genre: "Fantasy"})
	require.ErrorIs(t, err, repository.ErrFileAccess)
	assert.Len(t, data.Users, 2)
	assert.Equal(t, 2, data.UserSeq)
	assert.True(t, dir.UsernameAvailable("cy"))
}

func TestRegister_HashesWhenConfigured(t *testing.T) {
	data := newDataset()
	dir := newDirectory(&fakeStore{}, data)
	dir.BcryptCost = bcrypt.MinCost
	ctx := context.Background()

	u, err := dir.Register(ctx, service.Registration{Username: "cy", Password: "s3cret", Genre: "Fantasy"})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", u.Password)

	got, err := dir.Authenticate(ctx, "cy", "s3cret")
	require.NoError(t, err)
	assert.Same(t, u, got)
}

func TestAuthenticate(t *testing.T) {
	data := newDataset()
	dir := newDirectory(&fakeStore{}, data)
	ctx := context.Background()

	u, err := dir.Authenticate(ctx, "bob", "pw2")
	require.NoError(t, err)
	assert.Same(t, data.Users[1], u)

	for _, tc := range []struct{ user, pass string }{
		{"bob", "pw1"},
		{"Bob", "pw2"},
		{"nobody", "pw2"},
		{"", ""},
	} {
		_, err := dir.Authenticate(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials, "%s/%s", tc.user, tc.pass)
	}
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	data := newDataset()
	showtimesBefore := len(data.Showtimes)
	moviesBefore := len(data.Movies)
	dir := newDirectory(store, data)
	ctx := context.Background()
	ann, bob := data.Users[0], data.Users[1]

	ok, err := dir.Delete(ctx, ann, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, data.Users, 2)
	assert.Empty(t, store.persists)

	ok, err = dir.Delete(ctx, ann, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []*model.User{bob}, data.Users)
	assert.Len(t, data.Showtimes, showtimesBefore)
	assert.Len(t, data.Movies, moviesBefore)
	assert.Equal(t, []repository.Scope{repository.ScopeUsers}, store.persists)

	_, err = dir.Delete(ctx, ann, true)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Same(t, bob, dir.ByID("U0002"))
}

func TestDelete_PersistFailureRollsBack(t *testing.T) {
	data := newDataset()
	dir := newDirectory(&fakeStore{failErr: errors.New("boom")}, data)
	ann := data.Users[0]

	ok, err := dir.Delete(context.Background(), ann, true)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Same(t, ann, data.Users[0])
	assert.Len(t, data.Users, 2)
}

func TestProfile(t *testing.T) {
	data := newDataset()
	dir := newDirectory(&fakeStore{}, data)

	assert.Equal(t, service.UserView{
		Name: "Ann", Surname: "Lee", Username: "ann", PreferredGenre: "Sci-Fi", RegistrationDate: "2024-11-01 10:00:00",
	}, dir.Profile(data.Users[0]))
}
