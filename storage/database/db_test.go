package database

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/academia/fs"
)

func TestRunMigrations(t *testing.T) {
	origRunFunc := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = origRunFunc })

	db, err := sql.Open(driverName, "postgres://localhost/academia?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	type call struct {
		command string
		dir     string
		args    []string
	}
	var calls []call
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		if command == "lol" {
			return errors.New("unknown command")
		}
		calls = append(calls, call{command: command, dir: dir, args: args})
		return nil
	}

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, RunMigrations(context.Background(), db, "down-to", "1"))
	err = RunMigrations(context.Background(), db, "lol")
	assert.EqualError(t, err, `running migration command "lol": unknown command`)

	assert.Equal(t, []call{
		{command: "up", dir: migrationsDir},
		{command: "down-to", dir: migrationsDir, args: []string{"1"}},
	}, calls)
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(appfs.FS, migrationsDir+"/*.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}
