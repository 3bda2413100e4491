package movie_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hbomb79/Marquee/internal/database/dbtest"
	"github.com/hbomb79/Marquee/internal/movie"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/random"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieIDs(movies []*movie.Movie) []int {
	out := make([]int, len(movies))
	for k, m := range movies {
		out[k] = m.ID
	}

	return out
}

func TestCatalog_Integration(t *testing.T) {
	manager := dbtest.StartPostgres(t)
	service := movie.NewService(manager.GetSqlxDb(), movie.Config{DefaultPopularLimit: 10, MaxLimit: 50})
	ctx := context.Background()

	t.Run("No constraints returns the full catalog by rating", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{Genre: "all", Year: "all"})
		require.NoError(t, err)

		assert.Equal(t, 10, result.Total)
		assert.Equal(t, []int{1, 2, 3, 4, 10, 5, 6, 7, 8, 9}, movieIDs(result.Movies))
		for i := 1; i < len(result.Movies); i++ {
			assert.GreaterOrEqual(t, result.Movies[i-1].Rating, result.Movies[i].Rating)
		}
	})

	t.Run("Genre inclusion and exclusion", func(t *testing.T) {
		all, err := service.Search(ctx, movie.Filter{})
		require.NoError(t, err)

		drama, err := service.Search(ctx, movie.Filter{Genre: "Drama"})
		require.NoError(t, err)
		comedy, err := service.Search(ctx, movie.Filter{Genre: "Comedy"})
		require.NoError(t, err)

		dramaIDs := movieIDs(drama.Movies)
		for _, m := range all.Movies {
			if contains(m.Genres, "Drama") {
				assert.Contains(t, dramaIDs, m.ID)
			} else {
				assert.NotContains(t, dramaIDs, m.ID)
			}
		}
		assert.Len(t, drama.Movies, 8)
		assert.Empty(t, comedy.Movies)

		// Filtering on one genre never narrows the genre list itself
		for _, m := range drama.Movies {
			if m.ID == 3 {
				assert.Equal(t, []string{"Action", "Crime", "Drama"}, m.Genres)
			}
		}
	})

	t.Run("Genre matching is exact", func(t *testing.T) {
		for _, genre := range []string{"drama", "Dram", "Sci"} {
			result, err := service.Search(ctx, movie.Filter{Genre: genre})
			require.NoError(t, err)
			assert.Empty(t, result.Movies, "genre %q", genre)
		}
	})

	t.Run("Director substrings match case-insensitively", func(t *testing.T) {
		all, err := service.Search(ctx, movie.Filter{})
		require.NoError(t, err)

		for _, m := range all.Movies {
			director := m.Director
			substrings := []string{director, strings.ToUpper(director), strings.ToLower(director[1 : len(director)-1])}
			for _, s := range substrings {
				result, err := service.Search(ctx, movie.Filter{Query: s})
				require.NoError(t, err)
				assert.Contains(t, movieIDs(result.Movies), m.ID, "query %q should include %q", s, m.Title)
			}
		}
	})

	t.Run("Cast matches keep the full cast list", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{Query: "heath LEDGER"})
		require.NoError(t, err)

		require.Len(t, result.Movies, 1)
		assert.Equal(t, []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart"}, result.Movies[0].Cast)
	})

	t.Run("Wildcards are matched literally", func(t *testing.T) {
		for _, query := range []string{"%", "_", `\`} {
			result, err := service.Search(ctx, movie.Filter{Query: query})
			require.NoError(t, err)
			assert.Empty(t, result.Movies, "query %q", query)
		}
	})

	t.Run("Repeated searches are identical", func(t *testing.T) {
		filter := movie.Filter{Query: "the", SortBy: movie.SortByTitle, SortOrder: movie.Ascending}
		first, err := service.Search(ctx, filter)
		require.NoError(t, err)
		second, err := service.Search(ctx, filter)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("The Dark Knight", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{Query: "dark knight"})
		require.NoError(t, err)

		require.Len(t, result.Movies, 1)
		m := result.Movies[0]
		assert.Equal(t, 3, m.ID)
		assert.Equal(t, "The Dark Knight", m.Title)
		assert.Equal(t, 2008, m.Year)
		assert.Equal(t, 9.0, m.Rating)
		assert.Equal(t, "Christopher Nolan", m.Director)
		assert.Equal(t, 152, m.Runtime)
		assert.Equal(t, "2008-07-18", m.ReleaseDate)
		assert.Equal(t, []string{"Action", "Crime", "Drama"}, m.Genres)
		assert.Equal(t, []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart"}, m.Cast)
	})

	t.Run("Year filter", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{Year: "1994"})
		require.NoError(t, err)

		require.Len(t, result.Movies, 3)
		assert.Equal(t, []string{"The Shawshank Redemption", "Pulp Fiction", "Forrest Gump"}, []string{
			result.Movies[0].Title, result.Movies[1].Title, result.Movies[2].Title,
		})
		assert.Equal(t, []float64{9.3, 8.9, 8.8}, []float64{
			result.Movies[0].Rating, result.Movies[1].Rating, result.Movies[2].Rating,
		})
	})

	t.Run("Combined constraints", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{Query: "nolan", Genre: "Sci-Fi", SortBy: movie.SortByYear, SortOrder: movie.Ascending})
		require.NoError(t, err)
		assert.Equal(t, []int{6, 9}, movieIDs(result.Movies))

		minRating := 8.9
		result, err = service.Search(ctx, movie.Filter{MinRating: &minRating})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 10}, movieIDs(result.Movies))
	})

	t.Run("Sort by title uses collation", func(t *testing.T) {
		result, err := service.Search(ctx, movie.Filter{SortBy: movie.SortByTitle, SortOrder: movie.Ascending})
		require.NoError(t, err)
		assert.Equal(t, "Forrest Gump", result.Movies[0].Title)
		assert.Equal(t, "The Shawshank Redemption", result.Movies[len(result.Movies)-1].Title)
	})

	t.Run("Popular", func(t *testing.T) {
		result, err := service.Popular(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, movieIDs(result.Movies))

		for _, limit := range []int{0, -1, 51} {
			_, err := service.Popular(ctx, limit)
			assert.ErrorIs(t, err, movie.ErrInvalidLimit)
		}
	})

	t.Run("Get", func(t *testing.T) {
		m, err := service.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "The Matrix", m.Title)
		assert.Equal(t, []string{"Action", "Sci-Fi"}, m.Genres)

		_, err = service.Get(ctx, 9999)
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("Genres", func(t *testing.T) {
		genres, err := service.Genres(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Action", "Adventure", "Biography", "Crime", "Drama", "Romance", "Sci-Fi", "Thriller"}, genres)
	})

	t.Run("Aggregation with commas and missing associations", func(t *testing.T) {
		errRollback := errors.New("rollback fixtures")
		title := "Fixture " + random.String(12, random.Alphanumeric)

		err := manager.WrapTx(ctx, func(tx *sqlx.Tx) error {
			var withAssociations, withoutAssociations int
			insertMovie := `
				INSERT INTO movies(title, year, description, rating, director, runtime, release_date, poster)
				VALUES ($1, 2024, 'Fixture', 7.5, 'Fixture Director', 100, '2024-01-01', 'https://example.com/poster.png')
				RETURNING id`
			require.NoError(t, tx.GetContext(ctx, &withAssociations, insertMovie, title))
			require.NoError(t, tx.GetContext(ctx, &withoutAssociations, insertMovie, title+" Bare"))

			_, err := tx.ExecContext(ctx, `INSERT INTO genres(name) VALUES ('Action, Adventure')`)
			require.NoError(t, err)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO movie_genres(movie_id, genre_id)
				SELECT $1, id FROM genres WHERE name IN ('Action', 'Sci-Fi', 'Action, Adventure')`, withAssociations)
			require.NoError(t, err)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO cast_members(movie_id, actor_name) VALUES ($1, 'Smith, Will'), ($1, 'Jr., Robert Downey')`, withAssociations)
			require.NoError(t, err)

			txService := movie.NewService(tx, movie.Config{})
			result, err := txService.Search(ctx, movie.Filter{Query: title, SortBy: movie.SortByTitle, SortOrder: movie.Ascending})
			require.NoError(t, err)
			require.Len(t, result.Movies, 2)

			assert.Equal(t, withAssociations, result.Movies[0].ID)
			assert.Equal(t, []string{"Action", "Action, Adventure", "Sci-Fi"}, result.Movies[0].Genres)
			assert.Equal(t, []string{"Smith, Will", "Jr., Robert Downey"}, result.Movies[0].Cast)

			assert.Equal(t, withoutAssociations, result.Movies[1].ID)
			assert.Empty(t, result.Movies[1].Genres)
			assert.Empty(t, result.Movies[1].Cast)

			return errRollback
		})
		assert.ErrorIs(t, err, errRollback)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, service.Ping(ctx))
	})
}

func TestCatalog_StorageUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	db, err := sqlx.Open("postgres", "host=127.0.0.1 port=1 user=nobody password=nobody dbname=none sslmode=disable connect_timeout=1")
	require.NoError(t, err)
	defer db.Close()

	service := movie.NewService(db, movie.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := service.Search(ctx, movie.Filter{})
	assert.ErrorIs(t, err, movie.ErrStorageUnavailable)
	assert.Nil(t, result)

	_, err = service.Get(ctx, 1)
	assert.ErrorIs(t, err, movie.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, movie.ErrMovieNotFound)

	assert.ErrorIs(t, service.Ping(ctx), movie.ErrStorageUnavailable)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}

	return false
}
