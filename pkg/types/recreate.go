package types

import "time"

// RecreateStatus describes the terminal state of a recreate flow.
type RecreateStatus string

// Terminal states reported in a RecreateResult.
const (
	// StatusSuccess indicates the replacement container was verified running.
	StatusSuccess RecreateStatus = "success"
	// StatusRestored indicates the operation failed but the original container
	// was restored under its canonical name.
	StatusRestored RecreateStatus = "restored"
	// StatusRollbackFailed indicates the restore sequence itself failed and no
	// container holds the canonical name.
	StatusRollbackFailed RecreateStatus = "rollback_failed"
	// StatusFailed indicates the operation failed without a restore attempt,
	// either before any mutation or because rollback was disabled.
	StatusFailed RecreateStatus = "failed"
)

// RecreateRequest is the input to a recreate flow.
//
// Env is a full-set replace: it becomes the entire environment of the
// replacement container. Callers must include every variable they want to
// persist, not just the changed ones.
type RecreateRequest struct {
	Name                  string            // Canonical name of the target container.
	Env                   map[string]string // Complete replacement environment.
	Recreate              bool              // Must be true; guards against accidental destruction.
	RollbackOnFailure     bool              // Restore the backup automatically on failure.
	KeepRollbackContainer bool              // Retain the backup container after success.
	Timeout               time.Duration     // Health probe timeout; zero selects the default.
}

// RecreateResult is the outcome record of a recreate flow.
type RecreateResult struct {
	PreviousContainerID   ContainerID    // ID of the replaced container.
	NewContainerID        ContainerID    // ID of the replacement; empty on failure.
	RollbackContainerName string         // Backup container name, when a backup exists.
	RollbackAvailable     bool           // Whether a backup container remains in the runtime.
	Status                RecreateStatus // Terminal state of the flow.
}
