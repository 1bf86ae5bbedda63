package container

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerNetwork "github.com/docker/docker/api/types/network"
	dockerClient "github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/harborview/harborview/pkg/types"
)

// Default timings for the client wrapper.
const (
	// defaultProbeInterval is the poll interval for the running-state probe.
	defaultProbeInterval = 500 * time.Millisecond
	// defaultStopTimeout is how long a container may take to stop before it is killed.
	defaultStopTimeout = 10 * time.Second
)

// Operations defines the minimal Docker API surface consumed by this package.
type Operations interface {
	ContainerInspect(
		ctx context.Context,
		containerID string,
	) (dockerContainer.InspectResponse, error)
	ContainerCreate(
		ctx context.Context,
		config *dockerContainer.Config,
		hostConfig *dockerContainer.HostConfig,
		networkingConfig *dockerNetwork.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string,
	) (dockerContainer.CreateResponse, error)
	ContainerStart(
		ctx context.Context,
		containerID string,
		options dockerContainer.StartOptions,
	) error
	ContainerStop(
		ctx context.Context,
		containerID string,
		options dockerContainer.StopOptions,
	) error
	ContainerRename(
		ctx context.Context,
		containerID, newContainerName string,
	) error
	ContainerRemove(
		ctx context.Context,
		containerID string,
		options dockerContainer.RemoveOptions,
	) error
}

// client is the concrete implementation of the types.Client interface.
//
// It wraps the Docker API client and applies custom behavior via ClientOptions.
type client struct {
	api Operations
	ClientOptions
}

// ClientOptions configures the behavior of the client wrapper around the Docker API.
type ClientOptions struct {
	ProbeInterval time.Duration // Poll interval for WaitForRunning; zero selects the default.
	StopTimeout   time.Duration // Stop grace period before SIGKILL; zero selects the default.
}

// NewClient initializes a new Client instance for Docker API interactions.
//
// It configures the client from environment variables (e.g., DOCKER_HOST,
// DOCKER_API_VERSION) with API version autonegotiation.
//
// Parameters:
//   - opts: Options to customize client behavior.
//
// Returns:
//   - types.Client: Initialized client instance (exits on failure).
func NewClient(opts ClientOptions) types.Client {
	ctx := context.Background()

	cli, err := dockerClient.NewClientWithOpts(
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize Docker client")
	}

	cli.NegotiateAPIVersion(ctx)

	logrus.WithFields(logrus.Fields{
		"client_version": strings.Trim(cli.ClientVersion(), "\""),
		"docker_host":    os.Getenv("DOCKER_HOST"),
	}).Debug("Initialized Docker client")

	return newClientWithAPI(cli, opts)
}

// newClientWithAPI wires a client around an existing API implementation.
// Split from NewClient so tests can inject fake Operations.
func newClientWithAPI(api Operations, opts ClientOptions) *client {
	if opts.ProbeInterval <= 0 {
		opts.ProbeInterval = defaultProbeInterval
	}

	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}

	return &client{
		api:           api,
		ClientOptions: opts,
	}
}

// Snapshot reads the complete current configuration of a container.
//
// Parameters:
//   - nameOrID: Name or ID of the container to snapshot.
//
// Returns:
//   - types.ContainerSpec: Captured configuration.
//   - error: Non-nil if inspection fails, nil on success.
func (c *client) Snapshot(nameOrID string) (types.ContainerSpec, error) {
	spec, err := SnapshotContainer(c.api, nameOrID)
	if err != nil {
		logrus.WithError(err).
			WithField("container", nameOrID).
			Debug("Failed to snapshot container")

		return types.ContainerSpec{}, err
	}

	logrus.WithFields(logrus.Fields{
		"container": spec.Name,
		"id":        spec.ID.ShortID(),
		"image":     spec.Image,
	}).Debug("Captured container snapshot")

	return spec, nil
}

// CreateContainer creates a new container from a spec under the spec's name.
//
// Parameters:
//   - spec: Complete configuration for the new container.
//
// Returns:
//   - types.ContainerID: ID of the created container.
//   - error: Non-nil if creation fails, nil on success.
func (c *client) CreateContainer(spec types.ContainerSpec) (types.ContainerID, error) {
	newID, err := CreateTargetContainer(c.api, spec)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"container": spec.Name,
			"image":     spec.Image,
		}).Debug("Failed to create container")

		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"container": spec.Name,
		"new_id":    newID.ShortID(),
	}).Debug("Created container")

	return newID, nil
}

// StartContainer starts a created or stopped container.
//
// Parameters:
//   - containerID: ID of the container to start.
//
// Returns:
//   - error: Non-nil if start fails, nil on success.
func (c *client) StartContainer(containerID types.ContainerID) error {
	return StartTargetContainer(c.api, containerID)
}

// StopContainer stops a running container, killing it after the timeout.
//
// Parameters:
//   - containerID: ID of the container to stop.
//   - timeout: Grace period before the stop is forced; zero selects the client default.
//
// Returns:
//   - error: Non-nil if stop fails, nil on success.
func (c *client) StopContainer(containerID types.ContainerID, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.StopTimeout
	}

	return StopTargetContainer(c.api, containerID, timeout)
}

// RenameContainer renames an existing container to a new name.
//
// Parameters:
//   - containerID: ID of the container to rename.
//   - newName: New name for the container.
//
// Returns:
//   - error: Non-nil if rename fails, nil on success.
func (c *client) RenameContainer(containerID types.ContainerID, newName string) error {
	err := RenameTargetContainer(c.api, containerID, newName)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"container_id": containerID.ShortID(),
			"new_name":     newName,
		}).Debug("Failed to rename container")

		return err
	}

	logrus.WithFields(logrus.Fields{
		"container_id": containerID.ShortID(),
		"new_name":     newName,
	}).Debug("Renamed container")

	return nil
}

// RemoveContainer force-removes a container from the host.
//
// Parameters:
//   - containerID: ID of the container to remove.
//
// Returns:
//   - error: Non-nil if removal fails, nil on success.
func (c *client) RemoveContainer(containerID types.ContainerID) error {
	return RemoveTargetContainer(c.api, containerID)
}

// WaitForRunning polls the container until its process-level state is
// running, or the timeout elapses.
//
// Parameters:
//   - containerID: ID of the container to probe.
//   - timeout: Maximum duration to wait.
//
// Returns:
//   - error: Non-nil on timeout, early exit, or inspect failure; nil once running.
func (c *client) WaitForRunning(containerID types.ContainerID, timeout time.Duration) error {
	return WaitForRunning(c.api, containerID, timeout, c.ProbeInterval)
}
