package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/database"
	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/repository"
)

func TestOpenStore_File(t *testing.T) {
	dir := t.TempDir()
	s, err := database.OpenStore(context.Background(), config.Config{StoreDriver: config.DriverFile, DataDir: dir})
	require.NoError(t, err)
	fs, ok := s.(*repository.FileStore)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Dir)
}

func TestOpenReadOnlyStore_File(t *testing.T) {
	s, err := database.OpenReadOnlyStore(context.Background(), config.Config{StoreDriver: config.DriverFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	fs, ok := s.(*repository.FileStore)
	require.True(t, ok)
	assert.True(t, fs.ReadOnly)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := database.OpenStore(context.Background(), config.Config{StoreDriver: "postgres"})
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t, "app:pw@tcp(db:3306)/movies?charset=utf8mb4&parseTime=true&loc=UTC",
		database.MySQLDSN("app", "pw", "db", "3306", "movies"))
	assert.Equal(t, "app@tcp(db:3306)/movies?charset=utf8mb4&parseTime=true&loc=UTC",
		database.MySQLDSN("app", "", "db", "3306", "movies"))
}
