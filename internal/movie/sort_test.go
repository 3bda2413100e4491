package movie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(movies []*Movie) []int {
	out := make([]int, len(movies))
	for k, m := range movies {
		out[k] = m.ID
	}

	return out
}

func sortFixtures() []*Movie {
	return []*Movie{
		{ID: 1, Title: "The Shawshank Redemption", Year: 1994, Rating: 9.3},
		{ID: 4, Title: "Pulp Fiction", Year: 1994, Rating: 8.9},
		{ID: 5, Title: "Forrest Gump", Year: 1994, Rating: 8.8},
		{ID: 6, Title: "Inception", Year: 2010, Rating: 8.8},
		{ID: 10, Title: "amélie", Year: 2001, Rating: 8.3},
		{ID: 3, Title: "The Dark Knight", Year: 2008, Rating: 9.0},
	}
}

func Test_SortMovies(t *testing.T) {
	tests := []struct {
		summary  string
		by       SortField
		order    SortOrder
		expected []int
	}{
		{"Rating descending, ties by id", SortByRating, Descending, []int{1, 3, 4, 5, 6, 10}},
		{"Rating ascending, ties by id", SortByRating, Ascending, []int{10, 5, 6, 4, 3, 1}},
		{"Year ascending, ties by id", SortByYear, Ascending, []int{1, 4, 5, 10, 3, 6}},
		{"Year descending, ties by id", SortByYear, Descending, []int{6, 3, 10, 1, 4, 5}},
		{"Title ascending uses collation", SortByTitle, Ascending, []int{10, 5, 6, 4, 3, 1}},
		{"Title descending uses collation", SortByTitle, Descending, []int{1, 3, 4, 6, 5, 10}},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			movies := sortFixtures()
			sortMovies(movies, test.by, test.order)
			assert.Equal(t, test.expected, ids(movies))
		})
	}
}

func Test_SortMovies_RatingDescendingIsMonotonic(t *testing.T) {
	movies := sortFixtures()
	sortMovies(movies, SortByRating, Descending)

	for i := 1; i < len(movies); i++ {
		assert.GreaterOrEqual(t, movies[i-1].Rating, movies[i].Rating)
	}
}
