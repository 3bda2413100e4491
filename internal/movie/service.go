package movie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hbomb79/Marquee/internal/database"
	"github.com/hbomb79/Marquee/internal/metrics"
	"github.com/hbomb79/Marquee/pkg/logger"
)

var log = logger.Get("Catalog")

type (
	Config struct {
		DefaultPopularLimit int `yaml:"default_popular_limit" env:"CATALOG_DEFAULT_POPULAR_LIMIT" env-default:"10"`
		MaxLimit            int `yaml:"max_limit" env:"CATALOG_MAX_LIMIT" env-default:"50"`
	}

	SearchResult struct {
		Movies []*Movie
		Total  int

		// Filter is the effective filter used for the search, with
		// all defaults applied.
		Filter Filter
	}

	PopularResult struct {
		Movies []*Movie
		Total  int
		Limit  int
	}

	// Service is the read-only query surface of the catalog. It holds no
	// mutable state and is safe for concurrent use.
	Service struct {
		db     database.Queryable
		store  *Store
		config Config
	}
)

func NewService(db database.Queryable, config Config) *Service {
	if config.MaxLimit < 1 {
		config.MaxLimit = 50
	}
	if config.DefaultPopularLimit < 1 || config.DefaultPopularLimit > config.MaxLimit {
		config.DefaultPopularLimit = min(10, config.MaxLimit)
	}

	return &Service{db: db, store: &Store{}, config: config}
}

// DefaultLimit is the limit used for Popular when the caller does not provide one.
func (service *Service) DefaultLimit() int { return service.config.DefaultPopularLimit }

// Search returns all movies matching the filter, sorted as requested.
func (service *Service) Search(ctx context.Context, filter Filter) (result *SearchResult, err error) {
	started := time.Now()
	defer func() {
		if result != nil {
			service.observe("search", started, result.Total, err)
		} else {
			service.observe("search", started, 0, err)
		}
	}()

	effective := filter.Normalize()
	if err := effective.Validate(); err != nil {
		return nil, err
	}

	movies, err := service.list(ctx, effective)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Movies: movies, Total: len(movies), Filter: effective}, nil
}

// Popular returns the highest rated movies, at most limit of them. The
// limit must be within 1 and the configured maximum.
func (service *Service) Popular(ctx context.Context, limit int) (result *PopularResult, err error) {
	started := time.Now()
	defer func() {
		if result != nil {
			service.observe("popular", started, result.Total, err)
		} else {
			service.observe("popular", started, 0, err)
		}
	}()

	if limit < 1 || limit > service.config.MaxLimit {
		return nil, fmt.Errorf("%w: limit %d must be between 1 and %d", ErrInvalidLimit, limit, service.config.MaxLimit)
	}

	movies, err := service.list(ctx, Filter{}.Normalize())
	if err != nil {
		return nil, err
	}

	if len(movies) > limit {
		movies = movies[:limit]
	}

	return &PopularResult{Movies: movies, Total: len(movies), Limit: limit}, nil
}

// Get returns the movie with the given ID, or ErrMovieNotFound.
func (service *Service) Get(ctx context.Context, id int) (movie *Movie, err error) {
	started := time.Now()
	defer func() {
		if movie != nil {
			service.observe("get", started, 1, err)
		} else {
			service.observe("get", started, 0, err)
		}
	}()

	movies, err := service.store.ListMovies(ctx, service.db, Conditions{{Kind: Equals, Fields: []Field{IDField}, Value: id}})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: no movie with id %d", ErrMovieNotFound, id)
	}

	return movies[0], nil
}

// Genres returns the name of every genre in the catalog, alphabetically.
func (service *Service) Genres(ctx context.Context) (genres []string, err error) {
	started := time.Now()
	defer func() { service.observe("genres", started, len(genres), err) }()

	return service.store.ListGenres(ctx, service.db)
}

// Ping checks the catalog storage is reachable.
func (service *Service) Ping(ctx context.Context) error {
	return service.store.Ping(ctx, service.db)
}

func (service *Service) list(ctx context.Context, filter Filter) ([]*Movie, error) {
	conditions, err := filter.Conditions()
	if err != nil {
		return nil, err
	}

	movies, err := service.store.ListMovies(ctx, service.db, conditions)
	if err != nil {
		return nil, err
	}

	sortMovies(movies, filter.SortBy, filter.SortOrder)
	return movies, nil
}

func (service *Service) observe(operation string, started time.Time, results int, err error) {
	errType := errorType(err)
	if errType == "storage_unavailable" {
		log.Errorf("Catalog %s failed: %v\n", operation, err)
	} else if err != nil {
		log.Debugf("Catalog %s rejected: %v\n", operation, err)
	}

	metrics.RecordCatalogQuery(operation, time.Since(started), results, errType)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, ErrInvalidFilter):
		return "invalid_filter"
	case errors.Is(err, ErrInvalidLimit):
		return "invalid_limit"
	case errors.Is(err, ErrMovieNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
