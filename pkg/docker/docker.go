package docker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/hbomb79/Marquee/pkg/logger"
)

// The docker package provides utilities for spawning and tearing down
// local docker containers. Marquee uses this to optionally run its own
// PostgreSQL instance.

const DockerNetwork = "marquee_network"

var (
	dockerLogger = logger.Get("Docker")

	ErrContainerDead = errors.New("container is DEAD")
)

type Manager interface {
	SpawnContainer(context.Context, Container) error
	WaitForContainer(context.Context, Container, ...ContainerStatus) (ContainerStatus, error)
	CloseContainer(label string, timeout time.Duration)
	Shutdown(timeout time.Duration)
}

type manager struct {
	sync.Mutex
	containers map[string]Container
	cli        client.APIClient
	networkID  string
}

// NewManager connects to the docker daemon described by the environment.
// The network which spawned containers join is created lazily.
func NewManager() (Manager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &manager{containers: make(map[string]Container), cli: cli}, nil
}

func (docker *manager) SpawnContainer(ctx context.Context, container Container) error {
	docker.Lock()
	if _, ok := docker.containers[container.Label()]; ok {
		docker.Unlock()
		return fmt.Errorf("cannot spawn container %s as label is already in use", container)
	}
	docker.containers[container.Label()] = container
	docker.Unlock()

	if err := docker.ensureNetwork(ctx); err != nil {
		return err
	}

	if err := container.Start(ctx, docker.cli); err != nil {
		_ = container.Close(context.Background(), docker.cli, time.Second*10)
		return err
	}

	if err := docker.cli.NetworkConnect(ctx, docker.networkID, container.ID(), nil); err != nil {
		dockerLogger.Emit(logger.ERROR, "Failed to connect container %s to network: %v\n", container, err)
	}

	dockerLogger.Emit(logger.SUCCESS, "Container %s is UP!\n", container)
	return nil
}

// WaitForContainer blocks until the container enters one of the statuses
// provided, the container dies, or the context is cancelled.
func (docker *manager) WaitForContainer(ctx context.Context, container Container, statuses ...ContainerStatus) (ContainerStatus, error) {
	for {
		current, changed := container.Changed()
		for _, s := range statuses {
			if current == s {
				return s, nil
			}
		}

		if current == DEAD {
			return DEAD, fmt.Errorf("cannot wait on container %s: %w", container, ErrContainerDead)
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return current, ctx.Err()
		}
	}
}

// CloseContainer stops and removes the container with the given label, and
// forgets it so a later Shutdown does not attempt to close it again. Unknown
// labels are ignored.
func (docker *manager) CloseContainer(label string, timeout time.Duration) {
	docker.Lock()
	container, ok := docker.containers[label]
	delete(docker.containers, label)
	docker.Unlock()
	if !ok {
		return
	}

	docker.closeContainer(container, timeout)
}

func (docker *manager) Shutdown(timeout time.Duration) {
	docker.Lock()
	containers := make([]Container, 0, len(docker.containers))
	for label, c := range docker.containers {
		containers = append(containers, c)
		delete(docker.containers, label)
	}
	docker.Unlock()

	for _, c := range containers {
		docker.closeContainer(c, timeout)
	}

	if docker.networkID != "" {
		if err := docker.cli.NetworkRemove(context.Background(), docker.networkID); err != nil {
			dockerLogger.Emit(logger.WARNING, "Failed to remove docker network %s: %v\n", DockerNetwork, err)
		}
	}
}

func (docker *manager) closeContainer(container Container, timeout time.Duration) {
	dockerLogger.Emit(logger.STOP, "Closing container %s...\n", container)
	if err := container.Close(context.Background(), docker.cli, timeout); err != nil {
		dockerLogger.Emit(logger.ERROR, "Failed to close container %s: %v\n", container, err)
	}
}

func (docker *manager) ensureNetwork(ctx context.Context) error {
	docker.Lock()
	defer docker.Unlock()
	if docker.networkID != "" {
		return nil
	}

	resp, err := docker.cli.NetworkCreate(ctx, DockerNetwork, types.NetworkCreate{Driver: "bridge"})
	if err != nil {
		return fmt.Errorf("failed to create docker network %s: %w", DockerNetwork, err)
	}

	docker.networkID = resp.ID
	return nil
}
