package movie

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortMovies orders the movies in place. Titles are compared using English
// collation rather than byte order; ties are always broken by ascending ID
// so the order is deterministic regardless of the requested direction.
func sortMovies(movies []*Movie, by SortField, order SortOrder) {
	compare := comparator(by)
	slices.SortFunc(movies, func(a, b *Movie) int {
		c := compare(a, b)
		if order == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}

func comparator(by SortField) func(a, b *Movie) int {
	switch by {
	case SortByTitle:
		// Collators keep internal buffers, so each sort gets its own
		collator := collate.New(language.English)
		return func(a, b *Movie) int { return collator.CompareString(a.Title, b.Title) }
	case SortByYear:
		return func(a, b *Movie) int { return cmp.Compare(a.Year, b.Year) }
	default:
		return func(a, b *Movie) int { return cmp.Compare(a.Rating, b.Rating) }
	}
}
