package container

import (
	"errors"
)

// Errors for snapshot operations in snapshot.go.
var (
	// errInspectContainerFailed indicates a failure to inspect a container's details.
	errInspectContainerFailed = errors.New("failed to inspect container")
	// errInvalidImageReference indicates the container's image reference could not be parsed.
	errInvalidImageReference = errors.New("invalid image reference")
)

// Errors for container create, start, stop, rename, and remove operations in target.go.
var (
	// errCreateContainerFailed indicates a failure to create a new container.
	errCreateContainerFailed = errors.New("failed to create container")
	// errStartContainerFailed indicates a failure to start a container.
	errStartContainerFailed = errors.New("failed to start container")
	// errStopContainerFailed indicates a failure to stop a container.
	errStopContainerFailed = errors.New("failed to stop container")
	// errRenameContainerFailed indicates a failure to rename an existing container.
	errRenameContainerFailed = errors.New("failed to rename container")
	// errRemoveContainerFailed indicates a failure to remove a container from the host.
	errRemoveContainerFailed = errors.New("failed to remove container")
)

// Errors for the running-state probe in probe.go.
var (
	// errRunningProbeTimeout indicates the container did not reach a running state in time.
	errRunningProbeTimeout = errors.New("timeout waiting for container to reach running state")
	// errContainerExited indicates the container left the running state while being probed.
	errContainerExited = errors.New("container exited before reaching a stable running state")
)
