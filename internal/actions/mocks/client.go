// Package mocks provides mock implementations for testing HarborView's
// recreate flow.
package mocks

import (
	"time"

	"github.com/harborview/harborview/pkg/types"
)

// RenameCall records one rename operation observed by the mock.
type RenameCall struct {
	ContainerID types.ContainerID // Container being renamed.
	NewName     string            // Name it was renamed to.
}

// TestData holds configuration data for MockClient's test behavior.
//
// Error fields inject failures at specific saga steps; the slices record the
// calls the orchestrator made so tests can assert ordering and arguments.
type TestData struct {
	Spec           types.ContainerSpec // Snapshot returned for the target container.
	NewContainerID types.ContainerID   // ID assigned to the created replacement.

	SnapshotError      error // Fails the snapshot step.
	BackupRenameError  error // Fails the first rename (original -> backup).
	RestoreRenameError error // Fails the second rename (backup -> original).
	StopError          error // Fails stopping the backup container.
	CreateError        error // Fails creating the replacement.
	StartNewError      error // Fails starting the replacement.
	RestoreStartError  error // Fails restarting the restored original.
	ProbeError         error // Fails the running-state probe.
	RemoveBackupError  error // Fails removing the backup after success.
	RemoveNewError     error // Fails removing the failed replacement.

	Renames []RenameCall          // Every rename, in order.
	Created []types.ContainerSpec // Specs passed to CreateContainer.
	Started []types.ContainerID   // Containers started, in order.
	Stopped []types.ContainerID   // Containers stopped, in order.
	Removed []types.ContainerID   // Containers removed, in order.
	Probed  []types.ContainerID   // Containers probed, in order.

	// CreateEntered is closed when CreateContainer is first called, and
	// ReleaseCreate, when non-nil, blocks CreateContainer until it is closed.
	// Together they let tests hold a flow in flight mid-saga.
	CreateEntered chan struct{}
	ReleaseCreate chan struct{}
}

// MockClient is a mock implementation of types.Client for testing the
// recreate orchestrator without a container runtime.
type MockClient struct {
	TestData *TestData
}

// CreateMockClient constructs a new MockClient around the given test data.
func CreateMockClient(data *TestData) MockClient {
	if data.NewContainerID == "" {
		data.NewContainerID = "new-container-id"
	}

	return MockClient{TestData: data}
}

// Snapshot returns the preconfigured spec, or the injected snapshot error.
func (client MockClient) Snapshot(_ string) (types.ContainerSpec, error) {
	if client.TestData.SnapshotError != nil {
		return types.ContainerSpec{}, client.TestData.SnapshotError
	}

	return client.TestData.Spec, nil
}

// CreateContainer records the spec and returns the configured replacement ID.
// The first call closes CreateEntered and then blocks on ReleaseCreate when
// those channels are set.
func (client MockClient) CreateContainer(spec types.ContainerSpec) (types.ContainerID, error) {
	data := client.TestData

	if data.CreateEntered != nil {
		select {
		case <-data.CreateEntered:
		default:
			close(data.CreateEntered)
		}
	}

	if data.ReleaseCreate != nil {
		<-data.ReleaseCreate
	}

	data.Created = append(data.Created, spec)

	if data.CreateError != nil {
		return "", data.CreateError
	}

	return data.NewContainerID, nil
}

// StartContainer records the start and injects the step-specific failure:
// StartNewError for the replacement, RestoreStartError for the original.
func (client MockClient) StartContainer(containerID types.ContainerID) error {
	data := client.TestData
	data.Started = append(data.Started, containerID)

	if containerID == data.NewContainerID {
		return data.StartNewError
	}

	return data.RestoreStartError
}

// StopContainer records the stop and returns the injected stop error.
func (client MockClient) StopContainer(containerID types.ContainerID, _ time.Duration) error {
	client.TestData.Stopped = append(client.TestData.Stopped, containerID)

	return client.TestData.StopError
}

// RenameContainer records the rename. The first rename is the backup rename,
// any later one the restore rename; errors are injected accordingly.
func (client MockClient) RenameContainer(containerID types.ContainerID, newName string) error {
	data := client.TestData

	isBackupRename := len(data.Renames) == 0
	data.Renames = append(data.Renames, RenameCall{ContainerID: containerID, NewName: newName})

	if isBackupRename {
		return data.BackupRenameError
	}

	return data.RestoreRenameError
}

// RemoveContainer records the removal and injects the step-specific failure:
// RemoveNewError for the replacement, RemoveBackupError for the original.
func (client MockClient) RemoveContainer(containerID types.ContainerID) error {
	data := client.TestData
	data.Removed = append(data.Removed, containerID)

	if containerID == data.NewContainerID {
		return data.RemoveNewError
	}

	return data.RemoveBackupError
}

// WaitForRunning records the probe and returns the injected probe error.
func (client MockClient) WaitForRunning(containerID types.ContainerID, _ time.Duration) error {
	client.TestData.Probed = append(client.TestData.Probed, containerID)

	return client.TestData.ProbeError
}
