package movie

// aggregateRows groups the joined rows by movie, preserving the order in which
// each movie first appears. Genre and cast lists are de-duplicated, keeping the
// order of first appearance (which the query orders by genre name and cast ID).
func aggregateRows(rows []movieRow) []*Movie {
	type accumulator struct {
		movie  *Movie
		genres map[string]struct{}
		cast   map[int64]struct{}
	}

	movies := make([]*Movie, 0)
	index := make(map[int]*accumulator)
	for _, row := range rows {
		acc, ok := index[row.ID]
		if !ok {
			acc = &accumulator{
				movie: &Movie{
					ID:          row.ID,
					Title:       row.Title,
					Year:        row.Year,
					Description: row.Description,
					Rating:      row.Rating,
					Director:    row.Director,
					Runtime:     row.Runtime,
					ReleaseDate: row.ReleaseDate,
					Poster:      row.Poster,
					Genres:      []string{},
					Cast:        []string{},
				},
				genres: make(map[string]struct{}),
				cast:   make(map[int64]struct{}),
			}

			index[row.ID] = acc
			movies = append(movies, acc.movie)
		}

		if row.GenreName.Valid {
			if _, seen := acc.genres[row.GenreName.String]; !seen {
				acc.genres[row.GenreName.String] = struct{}{}
				acc.movie.Genres = append(acc.movie.Genres, row.GenreName.String)
			}
		}

		if row.CastID.Valid {
			if _, seen := acc.cast[row.CastID.Int64]; !seen {
				acc.cast[row.CastID.Int64] = struct{}{}
				acc.movie.Cast = append(acc.movie.Cast, row.CastName.String)
			}
		}
	}

	return movies
}
