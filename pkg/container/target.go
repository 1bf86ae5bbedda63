package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	dockerContainerType "github.com/docker/docker/api/types/container"

	"github.com/harborview/harborview/pkg/types"
)

// CreateTargetContainer creates (without starting) a new container from a
// spec, under the spec's name.
//
// The spec's configuration is converted back into Docker create configs; all
// networks recorded in the snapshot are attached at creation time.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - spec: Complete configuration for the new container.
//
// Returns:
//   - types.ContainerID: ID of the created container.
//   - error: Non-nil if creation fails, nil on success.
func CreateTargetContainer(api Operations, spec types.ContainerSpec) (types.ContainerID, error) {
	ctx := context.Background()
	clog := logrus.WithFields(logrus.Fields{
		"container": spec.Name,
		"image":     spec.Image,
	})

	clog.Debug("Creating new container")

	createdContainer, err := api.ContainerCreate(
		ctx,
		createConfig(spec),
		createHostConfig(spec),
		createNetworkConfig(spec),
		nil,
		spec.Name,
	)
	if err != nil {
		clog.WithError(err).Debug("Failed to create new container")

		return "", fmt.Errorf("%w: %w", errCreateContainerFailed, err)
	}

	createdContainerID := types.ContainerID(createdContainer.ID)
	clog.WithField("new_id", createdContainerID.ShortID()).Debug("Created container successfully")

	return createdContainerID, nil
}

// StartTargetContainer starts a created or stopped container.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - containerID: ID of the container to start.
//
// Returns:
//   - error: Non-nil if start fails, nil on success.
func StartTargetContainer(api Operations, containerID types.ContainerID) error {
	ctx := context.Background()
	clog := logrus.WithField("container_id", containerID.ShortID())

	clog.Debug("Starting container")

	if err := api.ContainerStart(ctx, string(containerID), dockerContainerType.StartOptions{}); err != nil {
		clog.WithError(err).Debug("Failed to start container")

		return fmt.Errorf("%w: %w", errStartContainerFailed, err)
	}

	clog.Info("Started container")

	return nil
}

// StopTargetContainer stops a running container, killing it after the timeout.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - containerID: ID of the container to stop.
//   - timeout: Grace period before the stop is forced.
//
// Returns:
//   - error: Non-nil if stop fails, nil on success.
func StopTargetContainer(
	api Operations,
	containerID types.ContainerID,
	timeout time.Duration,
) error {
	ctx := context.Background()
	clog := logrus.WithField("container_id", containerID.ShortID())

	timeoutSeconds := int(timeout.Seconds())

	clog.WithField("timeout_s", timeoutSeconds).Debug("Stopping container")

	options := dockerContainerType.StopOptions{Timeout: &timeoutSeconds}
	if err := api.ContainerStop(ctx, string(containerID), options); err != nil {
		clog.WithError(err).Debug("Failed to stop container")

		return fmt.Errorf("%w: %w", errStopContainerFailed, err)
	}

	clog.Debug("Stopped container")

	return nil
}

// RenameTargetContainer renames an existing container to the specified target name.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - containerID: ID of the container to be renamed.
//   - targetName: New name for the container.
//
// Returns:
//   - error: Non-nil if rename fails, nil on success.
func RenameTargetContainer(
	api Operations,
	containerID types.ContainerID,
	targetName string,
) error {
	ctx := context.Background()
	clog := logrus.WithFields(logrus.Fields{
		"container_id": containerID.ShortID(),
		"target_name":  targetName,
	})

	clog.Debug("Renaming container")

	if err := api.ContainerRename(ctx, string(containerID), targetName); err != nil {
		clog.WithError(err).Debug("Failed to rename container")

		return fmt.Errorf("%w: %w", errRenameContainerFailed, err)
	}

	clog.Debug("Renamed container successfully")

	return nil
}

// RemoveTargetContainer force-removes a container from the host.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - containerID: ID of the container to remove.
//
// Returns:
//   - error: Non-nil if removal fails, nil on success.
func RemoveTargetContainer(api Operations, containerID types.ContainerID) error {
	ctx := context.Background()
	clog := logrus.WithField("container_id", containerID.ShortID())

	clog.Debug("Removing container")

	options := dockerContainerType.RemoveOptions{Force: true}
	if err := api.ContainerRemove(ctx, string(containerID), options); err != nil {
		clog.WithError(err).Debug("Failed to remove container")

		return fmt.Errorf("%w: %w", errRemoveContainerFailed, err)
	}

	clog.Debug("Removed container")

	return nil
}
