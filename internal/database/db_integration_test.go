package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hbomb79/Marquee/internal/database"
	"github.com/hbomb79/Marquee/internal/database/dbtest"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, db database.Queryable, table string) int {
	var count int
	require.NoError(t, db.GetContext(context.Background(), &count, "SELECT COUNT(*) FROM "+table))
	return count
}

func TestManager_Integration(t *testing.T) {
	manager := dbtest.StartPostgres(t)
	db := manager.GetSqlxDb()
	ctx := context.Background()

	t.Run("Seed catalog is migrated", func(t *testing.T) {
		assert.Equal(t, 10, countRows(t, db, "movies"))
		assert.Equal(t, 8, countRows(t, db, "genres"))
		assert.Equal(t, 30, countRows(t, db, "cast_members"))
		assert.Equal(t, 24, countRows(t, db, "movie_genres"))
	})

	t.Run("Genre names are unique", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO genres(name) VALUES ('Drama')")
		assert.Error(t, err)
	})

	t.Run("WrapTx rolls back on failure", func(t *testing.T) {
		errAbort := errors.New("abort")
		title := random.String(16)

		err := manager.WrapTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO movies(title, year, description, rating, director, runtime, release_date, poster)
				VALUES ($1, 2024, 'Fixture', 5.0, 'Nobody', 90, '2024-01-01', 'https://example.com/poster.png')`, title)
			require.NoError(t, err)
			assert.Equal(t, 11, countRows(t, tx, "movies"))

			return errAbort
		})

		assert.ErrorIs(t, err, errAbort)
		assert.Equal(t, 10, countRows(t, db, "movies"))
	})

	t.Run("Deleting a movie cascades", func(t *testing.T) {
		errAbort := errors.New("abort")
		err := manager.WrapTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = 3")
			require.NoError(t, err)

			assert.Equal(t, 27, countRows(t, tx, "cast_members"))
			assert.Equal(t, 21, countRows(t, tx, "movie_genres"))
			return errAbort
		})
		assert.ErrorIs(t, err, errAbort)
	})

	t.Run("Reset and re-apply migrations", func(t *testing.T) {
		require.NoError(t, manager.ResetMigrations())

		var exists bool
		require.NoError(t, db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'movies')"))
		assert.False(t, exists)

		require.NoError(t, manager.ExecuteMigrations())
		assert.Equal(t, 10, countRows(t, db, "movies"))
	})
}

func TestManager_NotConnected(t *testing.T) {
	manager := database.New()

	assert.Nil(t, manager.GetSqlxDb())
	assert.ErrorIs(t, manager.ExecuteMigrations(), database.ErrNotConnected)
	assert.ErrorIs(t, manager.ResetMigrations(), database.ErrNotConnected)
	assert.ErrorIs(t, manager.WrapTx(context.Background(), func(*sqlx.Tx) error { return nil }), database.ErrNotConnected)
	assert.NoError(t, manager.Close())
}
