package movie

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/hbomb79/Marquee/internal/database"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store performs the reads against the catalog tables. It holds no
// state of its own; the database handle is provided on every call so
// that reads can participate in a transaction if required.
type Store struct{}

// ListMovies returns every movie satisfying all of the conditions, ordered
// by ID. The movie, genre and cast tables are read in a single query and
// aggregated in memory.
func (store *Store) ListMovies(ctx context.Context, db database.Queryable, conditions Conditions) ([]*Movie, error) {
	builder, err := selectMovieRowsBuilder(conditions)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct list movies query: %w", err)
	}

	var rows []movieRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to list movies: %w", ErrStorageUnavailable, err)
	}

	return aggregateRows(rows), nil
}

// ListGenres returns the name of every genre, alphabetically.
func (store *Store) ListGenres(ctx context.Context, db database.Queryable) ([]string, error) {
	query, args, err := psql.Select("name").From("genres").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct list genres query: %w", err)
	}

	genres := []string{}
	if err := db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to list genres: %w", ErrStorageUnavailable, err)
	}

	return genres, nil
}

// Ping checks that the catalog store can be reached.
func (store *Store) Ping(ctx context.Context, db database.Queryable) error {
	if _, err := db.ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return nil
}

// selectMovieRowsBuilder selects one row per movie/genre/cast combination. The
// ordering guarantees the genre names of a movie appear alphabetically, and its
// cast appears in billing order, which aggregateRows relies on.
func selectMovieRowsBuilder(conditions Conditions) (squirrel.SelectBuilder, error) {
	builder := psql.
		Select(
			"movies.id", "movies.title", "movies.year", "movies.description", "movies.rating",
			"movies.director", "movies.runtime", "to_char(movies.release_date, 'YYYY-MM-DD') AS release_date",
			"movies.poster", "genres.name AS genre_name", "cast_members.id AS cast_id", "cast_members.actor_name AS cast_name",
		).
		From("movies").
		LeftJoin("movie_genres ON movie_genres.movie_id = movies.id").
		LeftJoin("genres ON genres.id = movie_genres.genre_id").
		LeftJoin("cast_members ON cast_members.movie_id = movies.id").
		OrderBy("movies.id", "genres.name", "cast_members.id")

	where, err := conditions.Sqlizer()
	if err != nil {
		return builder, err
	}
	if where != nil {
		builder = builder.Where(where)
	}

	return builder, nil
}
