package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harborview/harborview/pkg/types"
)

// WaitForRunning polls the runtime's inspect call at a fixed interval until
// the container's process-level state is "running" or the timeout elapses.
//
// No health-check command is executed: a running process is the success gate
// for committing a recreate operation. A container observed as exited or dead
// fails the probe immediately instead of burning the remaining timeout.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - containerID: ID of the container to probe.
//   - timeout: Maximum duration to wait.
//   - interval: Poll interval between inspect calls.
//
// Returns:
//   - error: Non-nil on timeout, early exit, or inspect failure; nil once running.
func WaitForRunning(
	api Operations,
	containerID types.ContainerID,
	timeout time.Duration,
	interval time.Duration,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clog := logrus.WithField("container_id", containerID.ShortID())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		running, err := probeOnce(ctx, api, containerID, clog)
		if err != nil {
			return err
		}

		if running {
			return nil
		}

		select {
		case <-ctx.Done():
			clog.Warn("Timeout waiting for container to reach running state")

			return fmt.Errorf("%w: %s", errRunningProbeTimeout, containerID.ShortID())
		case <-ticker.C:
		}
	}
}

// probeOnce inspects the container a single time and classifies its state.
func probeOnce(
	ctx context.Context,
	api Operations,
	containerID types.ContainerID,
	clog *logrus.Entry,
) (bool, error) {
	response, err := api.ContainerInspect(ctx, string(containerID))
	if err != nil {
		clog.WithError(err).Debug("Failed to inspect container for running-state probe")

		return false, fmt.Errorf("%w: %w", errInspectContainerFailed, err)
	}

	if response.State == nil {
		clog.Debug("Container has no state information yet")

		return false, nil
	}

	clog.WithField("state", response.State.Status).Debug("Checked container state")

	if response.State.Running {
		clog.Debug("Container is running")

		return true, nil
	}

	switch response.State.Status {
	case dockerStateExited, dockerStateDead:
		clog.WithField("exit_code", response.State.ExitCode).
			Warn("Container exited during running-state probe")

		return false, fmt.Errorf(
			"%w: %s (exit code %d)",
			errContainerExited,
			containerID.ShortID(),
			response.State.ExitCode,
		)
	default:
		return false, nil
	}
}

// Docker state strings relevant to the probe.
const (
	dockerStateExited = "exited"
	dockerStateDead   = "dead"
)
