package actions

import (
	"errors"

	cerrdefs "github.com/containerd/errdefs"
)

// Error codes surfaced in the HTTP error envelope.
const (
	// CodeValidation indicates the request was rejected before any mutation.
	CodeValidation = "VALIDATION_ERROR"
	// CodeTargetNotFound indicates the target container does not exist.
	CodeTargetNotFound = "TARGET_NOT_FOUND"
	// CodeConflict indicates a recreate flow is already in progress for the container.
	CodeConflict = "CONFLICT"
	// CodeSnapshotFailed indicates the current configuration could not be read.
	CodeSnapshotFailed = "SNAPSHOT_FAILED"
	// CodeCreateFailed indicates the replacement container could not be provisioned.
	CodeCreateFailed = "CREATE_FAILED"
	// CodeStartFailed indicates the replacement failed to reach a running state.
	CodeStartFailed = "START_FAILED"
	// CodeRollbackFailed indicates the restore sequence itself failed.
	CodeRollbackFailed = "ROLLBACK_FAILED"
	// CodeInternal is the fallback for unclassified errors.
	CodeInternal = "INTERNAL_ERROR"
)

// Errors for recreate operations.
var (
	// errRecreateFlagRequired indicates the request did not set the recreate flag.
	errRecreateFlagRequired = errors.New(
		"environment changes require container recreation; set recreate to true",
	)
	// errTargetRequired indicates the request did not name a target container.
	errTargetRequired = errors.New("target container name is required")
	// errTargetNotFound indicates the target container does not exist in the runtime.
	errTargetNotFound = errors.New("target container not found")
	// errRecreateInProgress indicates another flow already holds the per-container lock.
	errRecreateInProgress = errors.New(
		"another recreate operation is already in progress for this container",
	)
	// errSnapshotFailed indicates the pre-mutation configuration snapshot failed.
	errSnapshotFailed = errors.New("failed to snapshot container configuration")
	// errBackupRenameFailed indicates the original container could not be renamed
	// to its backup name; nothing was mutated.
	errBackupRenameFailed = errors.New("failed to rename container to backup name")
	// errCreateFailed indicates the replacement container could not be created.
	errCreateFailed = errors.New("failed to create replacement container")
	// errStartFailed indicates the replacement container could not be started or
	// did not reach a running state within the probe timeout.
	errStartFailed = errors.New("replacement container failed to reach running state")
)

// ErrRollbackFailed is the fatal error returned when the restore sequence
// itself fails after a prior failure: the system is left without a container
// under the canonical name and requires operator intervention.
//
// The message is surfaced verbatim to the operator and must stay distinct
// from normal failure messages. It is never retried automatically.
var ErrRollbackFailed = errors.New("Rollback fallback also failed")

// ErrorCode classifies a recreate error into its taxonomy code.
//
// Parameters:
//   - err: Error returned by Recreate.
//
// Returns:
//   - string: Matching code constant, or CodeInternal if unclassified.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRollbackFailed):
		return CodeRollbackFailed
	case errors.Is(err, errRecreateInProgress):
		return CodeConflict
	case errors.Is(err, errTargetNotFound) || cerrdefs.IsNotFound(err):
		return CodeTargetNotFound
	case errors.Is(err, errRecreateFlagRequired) || errors.Is(err, errTargetRequired):
		return CodeValidation
	case errors.Is(err, errSnapshotFailed):
		return CodeSnapshotFailed
	case errors.Is(err, errBackupRenameFailed) || errors.Is(err, errCreateFailed):
		return CodeCreateFailed
	case errors.Is(err, errStartFailed):
		return CodeStartFailed
	case err != nil:
		return CodeInternal
	default:
		return ""
	}
}
