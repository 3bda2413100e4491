package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hbomb79/Marquee/internal/api"
	"github.com/hbomb79/Marquee/internal/database"
	"github.com/hbomb79/Marquee/internal/movie"
	"github.com/hbomb79/Marquee/pkg/docker"
	"github.com/hbomb79/Marquee/pkg/logger"
)

var log = logger.Get("Core")

const shutdownTimeout = time.Second * 10

type (
	RunnableService interface {
		Run(context.Context) error
	}

	// Marquee represents the top-level object for the server, and is responsible
	// for initialising the embedded database, the catalog and the REST gateway.
	Marquee struct {
		config        MarqueeConfig
		dockerManager docker.Manager
		db            database.Manager
	}
)

func New(config MarqueeConfig) *Marquee {
	log.Emit(logger.DEBUG, "Bootstrapping Marquee services using config: %#v\n", config)
	return &Marquee{config: config, db: database.New()}
}

// Run will start all of Marquee by bringing up the Docker services (if enabled),
// connecting to the database and then serving the catalog over HTTP.
//
// This function will not return until Marquee is stopped. To stop Marquee the
// provided context must be cancelled. Errors from which Marquee cannot recover
// will also cause it to stop, in which case the error is returned.
func (marquee *Marquee) Run(parent context.Context) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel(fmt.Errorf("%s crashed: %w", label, err))
	}

	if marquee.config.Services.EnablePostgres {
		if err := marquee.initialiseDockerServices(ctx, crashHandler); err != nil {
			return err
		}
		defer marquee.stopDockerServices()
	}

	log.Emit(logger.NEW, "Connecting to database...\n")
	if err := marquee.db.Connect(ctx, marquee.config.Database); err != nil {
		return err
	}
	defer marquee.db.Close()

	catalog := movie.NewService(marquee.db.GetSqlxDb(), marquee.config.Catalog)
	gateway, err := api.NewRestGateway(&marquee.config.RestConfig, catalog)
	if err != nil {
		return err
	}

	wg := &sync.WaitGroup{}
	spawnAsyncService(ctx, wg, gateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Marquee services spawned!\n")

	wg.Wait()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, parent.Err()) {
		return cause
	}

	return nil
}

// spawnAsyncService will run the provided service as it's own
// go-routine, ensuring that the service waitgroup is updated correctly
func spawnAsyncService(ctx context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crashHandler(serviceLabel, fmt.Errorf("panic %v", r))
			}
		}()

		if err := service.Run(ctx); err != nil {
			crashHandler(serviceLabel, err)
		}
	}()
}

func (marquee *Marquee) initialiseDockerServices(ctx context.Context, crashHandler func(string, error)) error {
	manager, err := docker.NewManager()
	if err != nil {
		return fmt.Errorf("failed to connect to docker: %w", err)
	}
	marquee.dockerManager = manager

	log.Emit(logger.INFO, "Initialising embedded database...\n")
	if _, err := database.InitialiseDockerDatabase(ctx, manager, marquee.config.Database, func(err error) {
		crashHandler("docker-postgres", err)
	}); err != nil {
		manager.Shutdown(shutdownTimeout)
		return err
	}

	return nil
}

// stopDockerServices closes the embedded database container before tearing
// down the rest of the docker manager. The database connection must already
// be closed.
func (marquee *Marquee) stopDockerServices() {
	marquee.dockerManager.CloseContainer(database.EmbeddedContainerLabel, shutdownTimeout)
	marquee.dockerManager.Shutdown(shutdownTimeout)
}
