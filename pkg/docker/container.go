package docker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/hbomb79/Marquee/pkg/logger"
)

type ContainerStatus int

const (
	// Container struct instance has just been created
	INIT ContainerStatus = iota

	// Container image has been pulled to local docker daemon, but the container has not yet been created
	PULLED

	// Container has been created from a previously PULLED image
	CREATED

	// Container is UP and working normally
	UP

	// Container has CRASHED
	CRASHED

	// Container is being closed intentionally, next status should always be DOWN
	CLOSING

	// Container is DOWN (intentionally closed)
	DOWN

	// Container has been removed
	DEAD
)

func (e ContainerStatus) String() string {
	names := []string{"INIT", "PULLED", "CREATED", "UP", "CRASHED", "CLOSING", "DOWN", "DEAD"}
	if e < 0 || int(e) >= len(names) {
		return "UNKNOWN"
	}

	return names[e]
}

type pullEvent struct {
	Status   string `json:"status"`
	Error    string `json:"error"`
	Progress string `json:"progress"`
}

type Container interface {
	// Start pulls the image and creates and starts a container from it. Monitoring
	// of the container happens asynchronously, so a crash after a successful start
	// is reported via the containers status rather than via this error.
	Start(context.Context, client.APIClient) error

	// Close stops (if running) and removes the container. Closing a DEAD
	// container is a no-op.
	Close(context.Context, client.APIClient, time.Duration) error

	// Changed returns a channel which is closed the next time the
	// status of this container changes, along with the status at the
	// time of the call.
	Changed() (ContainerStatus, <-chan struct{})

	Label() string
	ID() string
	Status() ContainerStatus
}

type dockerContainer struct {
	sync.Mutex
	label       string
	image       string
	containerID string
	status      ContainerStatus
	changed     chan struct{}
	config      *container.Config
	hostConfig  *container.HostConfig
}

// NewContainer creates a container description which can later be started
// directly or via a Manager.
func NewContainer(label string, image string, conf *container.Config, hostConf *container.HostConfig) Container {
	return &dockerContainer{
		label:      label,
		image:      image,
		status:     INIT,
		changed:    make(chan struct{}),
		config:     conf,
		hostConfig: hostConf,
	}
}

func (c *dockerContainer) Start(ctx context.Context, cli client.APIClient) error {
	if c.Status() != INIT {
		return fmt.Errorf("cannot start container %s based on image %v as status is invalid", c, c.image)
	}

	out, err := cli.ImagePull(ctx, c.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %v for container %s: %w", c.image, c, err)
	}
	defer out.Close()

	events := json.NewDecoder(out)
	for {
		var ev pullEvent
		if err := events.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("failed to read image pull progress for container %s: %w", c, err)
		}

		c.logPullEvent(&ev)
	}
	c.setStatus(PULLED)

	resp, err := cli.ContainerCreate(ctx, c.config, c.hostConfig, nil, nil, c.label)
	if err != nil {
		return fmt.Errorf("failed to create container for %s: %w", c, err)
	}
	c.Lock()
	c.containerID = resp.ID
	c.Unlock()
	c.setStatus(CREATED)

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container for %s: %w", c, err)
	}
	c.setStatus(UP)

	go c.monitor(ctx, cli)
	return nil
}

func (c *dockerContainer) Close(ctx context.Context, cli client.APIClient, timeout time.Duration) error {
	status := c.Status()
	if status == DEAD {
		return nil
	}

	if status == CREATED || status == UP || status == CRASHED {
		c.setStatus(CLOSING)
		timeoutSeconds := int(timeout.Seconds())
		if err := cli.ContainerStop(ctx, c.ID(), container.StopOptions{Timeout: &timeoutSeconds}); err != nil {
			return fmt.Errorf("failed to stop container %s: %w", c, err)
		}

		c.setStatus(DOWN)
	}

	if c.ID() != "" {
		if err := cli.ContainerRemove(ctx, c.ID(), container.RemoveOptions{}); err != nil {
			return fmt.Errorf("failed to remove container %s: %w", c, err)
		}
	}

	c.setStatus(DEAD)
	return nil
}

func (c *dockerContainer) Changed() (ContainerStatus, <-chan struct{}) {
	c.Lock()
	defer c.Unlock()

	return c.status, c.changed
}

func (c *dockerContainer) ID() string {
	c.Lock()
	defer c.Unlock()

	return c.containerID
}

func (c *dockerContainer) Label() string { return c.label }

func (c *dockerContainer) Status() ContainerStatus {
	c.Lock()
	defer c.Unlock()

	return c.status
}

func (c *dockerContainer) String() string {
	id := c.ID()
	if id == "" {
		return fmt.Sprintf("%v[...]", c.label)
	}

	return fmt.Sprintf("%v[%v]", c.label, id[:10])
}

func (c *dockerContainer) setStatus(status ContainerStatus) {
	c.Lock()
	defer c.Unlock()

	if c.status == DEAD || c.status == status {
		return
	}

	c.status = status
	close(c.changed)
	c.changed = make(chan struct{})

	dockerLogger.Emit(logger.INFO, "Container %s - Status change: %s\n", c.label, status)
}

func (c *dockerContainer) logPullEvent(ev *pullEvent) {
	if ev.Error != "" {
		dockerLogger.Emit(logger.ERROR, "%s: %s\n", c, ev.Error)
	} else if ev.Progress != "" {
		dockerLogger.Emit(logger.VERBOSE, "%s: %s\n", c, ev.Progress)
	} else if ev.Status != "" {
		dockerLogger.Emit(logger.DEBUG, "%s: %s\n", c, ev.Status)
	}
}

// monitor follows the containers output until the stream closes. A stream
// closing while the container was not intentionally being closed is
// treated as a crash.
func (c *dockerContainer) monitor(ctx context.Context, cli client.APIClient) {
	reader, err := cli.ContainerLogs(ctx, c.ID(), container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		c.setStatus(CRASHED)
		return
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if c.Status() != UP {
			break
		}

		dockerLogger.Emit(logger.VERBOSE, "%s: %s\n", c, scanner.Bytes())
	}

	switch c.Status() {
	case CLOSING, DOWN, DEAD:
	default:
		c.setStatus(CRASHED)
	}
}
