package movies

import "github.com/hbomb79/Marquee/internal/movie"

type (
	movieDto struct {
		ID          int      `json:"id"`
		Title       string   `json:"title"`
		Year        int      `json:"year"`
		Genre       []string `json:"genre"`
		Poster      string   `json:"poster"`
		Description string   `json:"description"`
		Rating      float64  `json:"rating"`
		Director    string   `json:"director"`
		Cast        []string `json:"cast"`
		Runtime     int      `json:"runtime"`
		ReleaseDate string   `json:"releaseDate"`
	}

	filtersDto struct {
		Query     string   `json:"query"`
		Genre     string   `json:"genre"`
		Year      string   `json:"year"`
		MinRating *float64 `json:"minRating,omitempty"`
		SortBy    string   `json:"sortBy"`
		SortOrder string   `json:"sortOrder"`
	}

	searchResponse struct {
		Movies  []movieDto `json:"movies"`
		Total   int        `json:"total"`
		Filters filtersDto `json:"filters"`
	}

	popularResponse struct {
		Movies []movieDto `json:"movies"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
	}
)

func movieToDto(m *movie.Movie) movieDto {
	return movieDto{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Genre:       m.Genres,
		Poster:      m.Poster,
		Description: m.Description,
		Rating:      m.Rating,
		Director:    m.Director,
		Cast:        m.Cast,
		Runtime:     m.Runtime,
		ReleaseDate: m.ReleaseDate,
	}
}

func filterToDto(f movie.Filter) filtersDto {
	return filtersDto{
		Query:     f.Query,
		Genre:     f.Genre,
		Year:      f.Year,
		MinRating: f.MinRating,
		SortBy:    string(f.SortBy),
		SortOrder: string(f.SortOrder),
	}
}
