package types

import "time"

// Client defines the runtime operations a recreate flow depends on.
//
// Every call is synchronous and surfaces errors individually; the runtime
// offers no cross-call atomicity, which is why the orchestrator layers a
// compensating-action sequence on top of this interface.
type Client interface {
	// Snapshot reads the complete current configuration of a container by
	// name or ID. Pure read, idempotent.
	Snapshot(nameOrID string) (ContainerSpec, error)

	// CreateContainer creates (without starting) a container from a spec,
	// under the spec's name.
	CreateContainer(spec ContainerSpec) (ContainerID, error)

	// StartContainer starts a created or stopped container.
	StartContainer(containerID ContainerID) error

	// StopContainer stops a running container, forcing after timeout.
	StopContainer(containerID ContainerID, timeout time.Duration) error

	// RenameContainer renames a container.
	RenameContainer(containerID ContainerID, newName string) error

	// RemoveContainer force-removes a container.
	RemoveContainer(containerID ContainerID) error

	// WaitForRunning polls a container until its process-level state is
	// running, or the timeout elapses.
	WaitForRunning(containerID ContainerID, timeout time.Duration) error
}
