package movie

import "database/sql"

type (
	// Movie is a single catalog entry with its genre and
	// cast associations flattened in to ordered lists.
	Movie struct {
		ID          int
		Title       string
		Year        int
		Description string
		Rating      float64
		Director    string
		Runtime     int
		ReleaseDate string
		Poster      string

		// Genres is alphabetical, each genre appearing once.
		Genres []string

		// Cast is in billing order, each cast entry appearing once.
		Cast []string
	}

	// movieRow is a single row of the joined movie/genre/cast query. A movie
	// with several genres and several cast members produces one row per
	// genre/cast pairing, which aggregateRows collapses back down.
	movieRow struct {
		ID          int            `db:"id"`
		Title       string         `db:"title"`
		Year        int            `db:"year"`
		Description string         `db:"description"`
		Rating      float64        `db:"rating"`
		Director    string         `db:"director"`
		Runtime     int            `db:"runtime"`
		ReleaseDate string         `db:"release_date"`
		Poster      string         `db:"poster"`
		GenreName   sql.NullString `db:"genre_name"`
		CastID      sql.NullInt64  `db:"cast_id"`
		CastName    sql.NullString `db:"cast_name"`
	}
)
