package movie

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SortField string

const (
	SortByTitle  SortField = "title"
	SortByYear   SortField = "year"
	SortByRating SortField = "rating"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

const (
	// All is the sentinel value meaning 'no constraint' for the
	// genre and year axes of a Filter.
	All = "all"

	minYear = 1800
	maxYear = 9999
)

var validate = newValidator()

// Filter is the optional set of search, filter and sort parameters used
// to query the catalog. The zero value matches every movie, ordered by
// rating (highest first).
type Filter struct {
	// Query is matched as a case-insensitive substring against the title,
	// the director and every cast member of a movie.
	Query string `json:"query"`

	// Genre is matched exactly (case-sensitive) against the genres of a movie.
	Genre string `json:"genre"`

	// Year is an integer in string form, matched exactly against the year of a movie.
	Year string `json:"year"`

	MinRating *float64  `json:"minRating,omitempty" validate:"omitempty,min=0,max=10"`
	SortBy    SortField `json:"sortBy" validate:"oneof=title year rating"`
	SortOrder SortOrder `json:"sortOrder" validate:"oneof=asc desc"`
}

// Normalize returns a copy of the filter with the defaults
// applied to any absent fields.
func (f Filter) Normalize() Filter {
	f.Query = strings.TrimSpace(f.Query)
	if f.Genre == "" {
		f.Genre = All
	}
	if f.Year = strings.TrimSpace(f.Year); f.Year == "" {
		f.Year = All
	}
	if f.SortBy == "" {
		f.SortBy = SortByRating
	}
	if f.SortOrder == "" {
		f.SortOrder = Descending
	}

	return f
}

// Validate checks the filter for unrecognised sort parameters, unparsable
// years and out of range ratings. The filter should be normalized first,
// as empty sort parameters are rejected.
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			if fe.Tag() == "oneof" {
				return fmt.Errorf("%w: %s %q must be one of [%s]", ErrInvalidFilter, fe.Field(), fe.Value(), fe.Param())
			}

			return fmt.Errorf("%w: %s must satisfy %s=%s", ErrInvalidFilter, fe.Field(), fe.Tag(), fe.Param())
		}

		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	if _, err := f.year(); err != nil {
		return err
	}

	return nil
}

// Conditions translates the filter in to the list of conditions
// a movie must satisfy to be included in the results.
func (f Filter) Conditions() (Conditions, error) {
	conditions := Conditions{}
	if query := strings.TrimSpace(f.Query); query != "" {
		conditions = append(conditions, Condition{
			Kind:   TextMatch,
			Fields: []Field{TitleField, DirectorField, CastField},
			Value:  query,
		})
	}

	if isConstrained(f.Genre) {
		conditions = append(conditions, Condition{Kind: Equals, Fields: []Field{GenreField}, Value: f.Genre})
	}

	year, err := f.year()
	if err != nil {
		return nil, err
	}
	if year != nil {
		conditions = append(conditions, Condition{Kind: Equals, Fields: []Field{YearField}, Value: *year})
	}

	if f.MinRating != nil {
		conditions = append(conditions, Condition{Kind: Range, Fields: []Field{RatingField}, Value: Bounds{Min: f.MinRating}})
	}

	return conditions, nil
}

// year parses the year constraint, returning nil if the
// filter does not constrain the year.
func (f Filter) year() (*int, error) {
	raw := strings.TrimSpace(f.Year)
	if !isConstrained(raw) {
		return nil, nil
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: year %q is not an integer", ErrInvalidFilter, f.Year)
	}
	if year < minYear || year > maxYear {
		return nil, fmt.Errorf("%w: year %d is outside of the range %d-%d", ErrInvalidFilter, year, minYear, maxYear)
	}

	return &year, nil
}

// newValidator reports validation failures using the JSON
// names of the fields, as that's how callers know them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func isConstrained(v string) bool {
	return v != "" && v != All
}
