package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/hbomb79/Marquee/pkg/docker"
	"github.com/mitchellh/go-homedir"
)

const (
	postgresImage = "postgres:14.1-alpine"

	// EmbeddedContainerLabel is the docker label of the container
	// spawned by InitialiseDockerDatabase.
	EmbeddedContainerLabel = "marquee-db"
)

// InitialiseDockerDatabase spawns a PostgreSQL container using the credentials in
// the config provided. The data directory of the database is bind-mounted to
// a folder in the users home directory so the catalog survives restarts.
//
// The crashHandler is called if the container crashes after it has started.
func InitialiseDockerDatabase(ctx context.Context, dockerManager docker.Manager, config DatabaseConfig, crashHandler func(error)) (docker.Container, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("cannot initialise docker db volume mount as user home dir is unknown: %w", err)
	}

	dataPath := filepath.Join(home, ".marquee", "db.dat")
	if err := os.MkdirAll(dataPath, os.ModePerm); err != nil {
		return nil, err
	}

	containerConfig := &container.Config{
		Image: postgresImage,
		Env: []string{
			fmt.Sprintf("POSTGRES_PASSWORD=%s", config.Password),
			fmt.Sprintf("POSTGRES_USER=%s", config.User),
			fmt.Sprintf("POSTGRES_DB=%s", config.Name),
		},
		ExposedPorts: nat.PortSet{"5432/tcp": struct{}{}},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			"5432/tcp": []nat.PortBinding{{HostIP: config.Host, HostPort: config.Port}},
		},
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: dataPath, Target: "/var/lib/postgresql/data"},
		},
	}

	db := docker.NewContainer(EmbeddedContainerLabel, postgresImage, containerConfig, hostConfig)
	if err := dockerManager.SpawnContainer(ctx, db); err != nil {
		return nil, err
	}

	go func() {
		status, err := dockerManager.WaitForContainer(context.Background(), db, docker.CRASHED)
		if status != docker.CRASHED || err != nil {
			return
		}

		crashHandler(fmt.Errorf("container %s has crashed", db))
	}()

	return db, nil
}
