package types

import (
	"maps"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerMount "github.com/docker/docker/api/types/mount"
	dockerNetwork "github.com/docker/docker/api/types/network"
)

// ContainerID is a hash string for a container instance.
type ContainerID string

// ShortID returns the 12-character short version of a container ID.
//
// Returns:
//   - string: Shortened ID without "sha256:" prefix.
func (id ContainerID) ShortID() string {
	return shortID(string(id))
}

// shortID shortens a hash string to 12 characters.
//
// Parameters:
//   - longID: Full hash string.
//
// Returns:
//   - string: Shortened ID, adjusted for "sha256:" prefix.
func shortID(longID string) string {
	prefixSep := strings.IndexRune(longID, ':')
	offset := 0
	length := 12

	// Adjust offset for "sha256:" prefix.
	if prefixSep >= 0 {
		if longID[0:prefixSep] == "sha256" {
			offset = prefixSep + 1
		} else {
			length += prefixSep + 1
		}
	}

	// Return shortened ID or full string if too short.
	if len(longID) >= offset+length {
		return longID[offset : offset+length]
	}

	return longID
}

// ContainerSpec is a point-in-time description of a container, captured once
// per recreate operation and never mutated in place.
//
// It holds every field needed to create an equivalent container: omitting a
// field here silently loses configuration on recreation and rollback, so the
// snapshot code in pkg/container must populate all of them.
type ContainerSpec struct {
	ID            ContainerID                                // Container ID at snapshot time.
	Name          string                                     // Canonical container name, without leading slash.
	Image         string                                     // Normalized image reference.
	Env           map[string]string                          // Environment variables, keys unique.
	Cmd           []string                                   // Command override.
	Entrypoint    []string                                   // Entrypoint override.
	User          string                                     // User the process runs as.
	WorkingDir    string                                     // Working directory.
	ExposedPorts  nat.PortSet                                // Ports exposed by the container.
	PortBindings  nat.PortMap                                // Host port bindings.
	Mounts        []dockerMount.Mount                        // Mount specifications.
	Binds         []string                                   // Legacy bind declarations.
	NetworkMode   dockerContainer.NetworkMode                // Network mode (bridge, host, ...).
	Networks      map[string]*dockerNetwork.EndpointSettings // Network attachments by name.
	Resources     dockerContainer.Resources                  // CPU/memory limits.
	RestartPolicy dockerContainer.RestartPolicy              // Restart policy.
	Labels        map[string]string                          // Container labels.
	Running       bool                                       // Whether the container was running at snapshot time.
}

// WithEnv derives a new spec with the environment replaced by the given map.
//
// The replacement is a full-set replace, not a patch: env becomes the entire
// environment of the container created from the derived spec. The receiver is
// left untouched so the original snapshot stays valid for rollback.
//
// Parameters:
//   - env: Complete environment mapping for the derived spec.
//
// Returns:
//   - ContainerSpec: Copy of the spec with env replaced.
func (s ContainerSpec) WithEnv(env map[string]string) ContainerSpec {
	derived := s
	derived.Env = make(map[string]string, len(env))
	maps.Copy(derived.Env, env)

	return derived
}

// RollbackRecord captures the state needed to restore the original container
// after the backup rename has occurred.
//
// The record lives only for the duration of one recreate flow; the renamed
// backup container itself is the persisted rollback state.
type RollbackRecord struct {
	BackupName   string        // Name the original container was renamed to.
	OriginalName string        // Canonical name to restore on rollback.
	Spec         ContainerSpec // Snapshot taken strictly before the rename.
	CreatedAt    time.Time     // When the backup rename was initiated.
}
