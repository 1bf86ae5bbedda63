package actions

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/harborview/harborview/pkg/types"
)

// DefaultProbeTimeout bounds the running-state probe when the request does
// not supply its own timeout.
const DefaultProbeTimeout = 30 * time.Second

// Package-level coordination state. The runtime's own name uniqueness is the
// source of truth for which container holds a canonical name; these two
// tables are the only additional state the subsystem keeps.
var (
	recreateLocks = newContainerLocks()
	backupNames   = newNameAllocator()
)

// Recreate applies an environment change to a container by destroying and
// rebuilding it under its canonical name.
//
// The flow is a strictly sequential saga with the backup rename as its pivot:
// every failure before the rename aborts with no side effects, and every
// failure after it triggers the same bounded restore sequence. The sequence
// is: snapshot, rename original to backup name, stop backup, create
// replacement with the request's environment, start it, probe until running,
// then discard or retain the backup. Once past the rename the flow always
// runs to a terminal state; it is never abandoned mid-sequence.
//
// The request's env map is a full-set replace, not a patch: it becomes the
// entire environment of the replacement container.
//
// Parameters:
//   - client: Runtime client executing the individual steps.
//   - request: Reconfiguration request; request.Recreate must be true.
//
// Returns:
//   - types.RecreateResult: Outcome record; Status distinguishes success,
//     restored-after-failure, rollback-failed, and plain failure.
//   - error: Non-nil unless the replacement was verified running.
func Recreate(client types.Client, request types.RecreateRequest) (types.RecreateResult, error) {
	result := types.RecreateResult{Status: types.StatusFailed}

	if request.Name == "" {
		return result, errTargetRequired
	}

	if !request.Recreate {
		return result, errRecreateFlagRequired
	}

	fields := logrus.Fields{"container": request.Name}

	// Reject concurrent flows for the same name instead of queueing them:
	// a queued flow's target container no longer exists by the time it runs.
	if !recreateLocks.tryAcquire(request.Name) {
		logrus.WithFields(fields).Debug("Recreate already in progress, rejecting request")

		return result, errRecreateInProgress
	}
	defer recreateLocks.release(request.Name)

	// Snapshot strictly before the first mutating call. Everything needed to
	// restore the original container must be captured here.
	spec, err := client.Snapshot(request.Name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return result, fmt.Errorf("%w: %w", errTargetNotFound, err)
		}

		return result, fmt.Errorf("%w: %w", errSnapshotFailed, err)
	}

	result.PreviousContainerID = spec.ID

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"id":      spec.ID.ShortID(),
		"image":   spec.Image,
		"running": spec.Running,
	}).Debug("Starting container recreate flow")

	// The backup rename is the pivot: it is the one irreversible-looking step
	// that is actually reversible (another rename), so failures up to and
	// including it require no cleanup at all.
	backupName := backupNames.BackupName(spec.Name)
	if err := client.RenameContainer(spec.ID, backupName); err != nil {
		return result, fmt.Errorf("%w: %w", errBackupRenameFailed, err)
	}

	record := types.RollbackRecord{
		BackupName:   backupName,
		OriginalName: spec.Name,
		Spec:         spec,
		CreatedAt:    time.Now(),
	}
	result.RollbackContainerName = backupName
	result.RollbackAvailable = true

	logrus.WithFields(fields).
		WithField("backup_name", backupName).
		Debug("Renamed original container to backup name")

	// Quiesce the backup so the replacement can bind the same ports. This is
	// past the pivot, so a failure here goes through the restore sequence.
	if spec.Running {
		if err := client.StopContainer(spec.ID, 0); err != nil {
			return settleFailure(
				client,
				request,
				record,
				result,
				"",
				fmt.Errorf("%w: %w", errCreateFailed, err),
			)
		}
	}

	newID, err := client.CreateContainer(spec.WithEnv(request.Env))
	if err != nil {
		return settleFailure(client, request, record, result, "",
			fmt.Errorf("%w: %w", errCreateFailed, err))
	}

	if err := client.StartContainer(newID); err != nil {
		return settleFailure(client, request, record, result, newID,
			fmt.Errorf("%w: %w", errStartFailed, err))
	}

	timeout := request.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	if err := client.WaitForRunning(newID, timeout); err != nil {
		return settleFailure(client, request, record, result, newID,
			fmt.Errorf("%w: %w", errStartFailed, err))
	}

	result.NewContainerID = newID
	result.Status = types.StatusSuccess

	// The backup is only discarded after the replacement is verified running.
	if request.KeepRollbackContainer {
		logrus.WithFields(fields).
			WithField("backup_name", backupName).
			Info("Retaining backup container after successful recreate")
	} else if err := client.RemoveContainer(spec.ID); err != nil {
		// Cleanup failure never demotes a verified success; the backup simply
		// stays available.
		logrus.WithFields(fields).WithError(err).
			WithField("backup_name", backupName).
			Warn("Failed to remove backup container after successful recreate")
	} else {
		result.RollbackAvailable = false
		result.RollbackContainerName = ""
	}

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"previous_id": result.PreviousContainerID.ShortID(),
		"new_id":      newID.ShortID(),
	}).Info("Recreated container with updated environment")

	return result, nil
}

// settleFailure drives a post-pivot failure to its terminal state.
//
// With rollback enabled it runs the restore sequence and reports either
// StatusRestored (original container back under its canonical name) or
// StatusRollbackFailed (restore itself failed, operator intervention
// required). With rollback disabled it leaves the backup container in place
// under its backup name and reports StatusFailed.
func settleFailure(
	client types.Client,
	request types.RecreateRequest,
	record types.RollbackRecord,
	result types.RecreateResult,
	failedNewID types.ContainerID,
	cause error,
) (types.RecreateResult, error) {
	fields := logrus.Fields{
		"container":   record.OriginalName,
		"backup_name": record.BackupName,
	}

	if !request.RollbackOnFailure {
		logrus.WithFields(fields).WithError(cause).
			Warn("Recreate failed; rollback disabled, backup container retained")

		removeFailedContainer(client, failedNewID)

		result.Status = types.StatusFailed

		return result, cause
	}

	logrus.WithFields(fields).WithError(cause).
		Info("Recreate failed, restoring original container")

	if err := rollback(client, record, failedNewID); err != nil {
		logrus.WithFields(fields).WithError(err).
			Error("Rollback failed; no container holds the canonical name, manual intervention required")

		result.Status = types.StatusRollbackFailed

		// Never retried automatically: a retry loop on an already-failed
		// compensating action risks compounding the outage.
		return result, fmt.Errorf("%w: %w", ErrRollbackFailed, err)
	}

	result.Status = types.StatusRestored
	result.RollbackAvailable = false
	result.RollbackContainerName = ""

	logrus.WithFields(fields).Info("Restored original container after failed recreate")

	return result, cause
}

// rollback undoes forward progress after a post-pivot failure: it removes the
// failed replacement, renames the backup container back to the original name,
// and restarts it if it was running before the operation.
func rollback(client types.Client, record types.RollbackRecord, failedNewID types.ContainerID) error {
	// Best-effort removal of the failed replacement; a failure here must not
	// abort the restore, since the rename back is what re-establishes the
	// canonical name.
	removeFailedContainer(client, failedNewID)

	if err := client.RenameContainer(record.Spec.ID, record.OriginalName); err != nil {
		return fmt.Errorf("restoring name %q: %w", record.OriginalName, err)
	}

	if record.Spec.Running {
		if err := client.StartContainer(record.Spec.ID); err != nil {
			return fmt.Errorf("restarting restored container %q: %w", record.OriginalName, err)
		}
	}

	return nil
}

// removeFailedContainer force-removes a partially provisioned replacement,
// logging instead of failing when removal is impossible.
func removeFailedContainer(client types.Client, containerID types.ContainerID) {
	if containerID == "" {
		return
	}

	if err := client.RemoveContainer(containerID); err != nil {
		logrus.WithError(err).
			WithField("container_id", containerID.ShortID()).
			Warn("Failed to remove failed replacement container")
	}
}
