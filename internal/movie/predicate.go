package movie

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type Kind int

const (
	TextMatch Kind = iota
	Equals
	Range
)

func (e Kind) Values() []string {
	return []string{"TEXT_MATCH", "EQUALS", "RANGE"}
}

func (e Kind) String() string {
	values := e.Values()
	if e < 0 || int(e) >= len(values) {
		return "UNKNOWN"
	}

	return values[e]
}

type Field int

const (
	IDField Field = iota
	TitleField
	DirectorField
	CastField
	GenreField
	YearField
	RatingField
)

func (e Field) Values() []string {
	return []string{"ID", "TITLE", "DIRECTOR", "CAST", "GENRE", "YEAR", "RATING"}
}

func (e Field) String() string {
	values := e.Values()
	if e < 0 || int(e) >= len(values) {
		return "UNKNOWN"
	}

	return values[e]
}

// IsKindAcceptable returns true if a condition of the given kind
// can be applied to the field provided.
func IsKindAcceptable(field Field, kind Kind) bool {
	if kinds, ok := fieldAcceptableKinds()[field]; ok {
		for _, v := range kinds {
			if v == kind {
				return true
			}
		}
	}

	return false
}

func fieldAcceptableKinds() map[Field][]Kind {
	return map[Field][]Kind{
		IDField:       {Equals},
		TitleField:    {TextMatch, Equals},
		DirectorField: {TextMatch, Equals},
		CastField:     {TextMatch, Equals},
		GenreField:    {TextMatch, Equals},
		YearField:     {Equals, Range},
		RatingField:   {Equals, Range},
	}
}

type (
	// Bounds is the value of a Range condition. Either end may be
	// nil to leave that side of the range open.
	Bounds struct {
		Min *float64
		Max *float64
	}

	// Condition is a single predicate against the catalog. When more than
	// one field is given, a movie satisfies the condition if ANY of the
	// fields match the value.
	Condition struct {
		Kind   Kind
		Fields []Field
		Value  any
	}

	// Conditions is a list of conditions which must ALL hold for a
	// movie to be included.
	Conditions []Condition
)

func (c Condition) Validate() error {
	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: %s condition has no fields", ErrInvalidFilter, c.Kind)
	}

	for _, f := range c.Fields {
		if !IsKindAcceptable(f, c.Kind) {
			return fmt.Errorf("%w: %s condition cannot be applied to field %s", ErrInvalidFilter, c.Kind, f)
		}
	}

	switch c.Kind {
	case TextMatch:
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: %s condition requires a string value, found %T", ErrInvalidFilter, c.Kind, c.Value)
		}
	case Equals:
		switch c.Value.(type) {
		case string, int, float64:
		default:
			return fmt.Errorf("%w: %s condition requires a string or numeric value, found %T", ErrInvalidFilter, c.Kind, c.Value)
		}
	case Range:
		bounds, ok := c.Value.(Bounds)
		if !ok {
			return fmt.Errorf("%w: %s condition requires a Bounds value, found %T", ErrInvalidFilter, c.Kind, c.Value)
		}
		if bounds.Min == nil && bounds.Max == nil {
			return fmt.Errorf("%w: %s condition has neither a minimum nor maximum", ErrInvalidFilter, c.Kind)
		}
		if bounds.Min != nil && bounds.Max != nil && *bounds.Min > *bounds.Max {
			return fmt.Errorf("%w: %s condition minimum %v exceeds maximum %v", ErrInvalidFilter, c.Kind, *bounds.Min, *bounds.Max)
		}
	default:
		return fmt.Errorf("%w: unknown condition kind %d", ErrInvalidFilter, c.Kind)
	}

	return nil
}

// Sqlizer validates the condition and translates it in to a squirrel
// predicate. Multiple fields are combined with OR.
func (c Condition) Sqlizer() (squirrel.Sqlizer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if len(c.Fields) == 1 {
		return fieldPredicate(c.Fields[0], c.Kind, c.Value), nil
	}

	or := make(squirrel.Or, len(c.Fields))
	for k, f := range c.Fields {
		or[k] = fieldPredicate(f, c.Kind, c.Value)
	}

	return or, nil
}

// Sqlizer combines every condition in the list with AND. An empty
// list yields a nil Sqlizer, meaning no constraint.
func (conditions Conditions) Sqlizer() (squirrel.Sqlizer, error) {
	if len(conditions) == 0 {
		return nil, nil
	}

	and := make(squirrel.And, len(conditions))
	for k, c := range conditions {
		sqlizer, err := c.Sqlizer()
		if err != nil {
			return nil, err
		}

		and[k] = sqlizer
	}

	return and, nil
}

// fieldPredicate builds the predicate for a single field. Cast and genre
// are one-to-many relations, so they're tested using EXISTS rather than
// against the joined rows. This means that filtering on a cast member
// never hides the other cast members (or genres) of a matching movie.
func fieldPredicate(field Field, kind Kind, value any) squirrel.Sqlizer {
	switch field {
	case CastField:
		return exists(squirrel.
			Select("1").
			From("cast_members AS cm").
			Where("cm.movie_id = movies.id").
			Where(columnPredicate("cm.actor_name", kind, value)))
	case GenreField:
		return exists(squirrel.
			Select("1").
			From("movie_genres AS mg").
			InnerJoin("genres AS g ON g.id = mg.genre_id").
			Where("mg.movie_id = movies.id").
			Where(columnPredicate("g.name", kind, value)))
	default:
		return columnPredicate(movieColumns[field], kind, value)
	}
}

var movieColumns = map[Field]string{
	IDField:       "movies.id",
	TitleField:    "movies.title",
	DirectorField: "movies.director",
	YearField:     "movies.year",
	RatingField:   "movies.rating",
}

func columnPredicate(column string, kind Kind, value any) squirrel.Sqlizer {
	switch kind {
	case TextMatch:
		return squirrel.ILike{column: "%" + escapeLike(value.(string)) + "%"}
	case Range:
		bounds := value.(Bounds)
		and := squirrel.And{}
		if bounds.Min != nil {
			and = append(and, squirrel.GtOrEq{column: *bounds.Min})
		}
		if bounds.Max != nil {
			and = append(and, squirrel.LtOrEq{column: *bounds.Max})
		}

		return and
	default:
		return squirrel.Eq{column: value}
	}
}

func exists(sub squirrel.SelectBuilder) squirrel.Sqlizer {
	return squirrel.Expr("EXISTS (?)", sub)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the LIKE wildcards in s so that they are
// matched literally (backslash is the default ESCAPE character in PostgreSQL).
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
