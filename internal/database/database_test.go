package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "hunt", Password: "p@ss word", Name: "tickets", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5433 user=hunt password=p@ss word dbname=tickets sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://hunt:p%40ss%20word@db:5433/tickets?sslmode=disable", cfg.URL())
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
