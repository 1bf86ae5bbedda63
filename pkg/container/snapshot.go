package container

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/distribution/reference"

	"github.com/harborview/harborview/pkg/types"
)

// SnapshotContainer captures the complete current configuration of a container.
//
// Every field needed to recreate an equivalent container is copied out of the
// inspect response into a detached ContainerSpec: image reference, full
// environment map, port, volume, and network bindings, resource limits, and
// labels. Dropping a field here is a silent data-loss bug on rollback.
//
// The read has no side effects and is idempotent.
//
// Parameters:
//   - api: Interface for container operations (Operations).
//   - nameOrID: Name or ID of the container to snapshot.
//
// Returns:
//   - types.ContainerSpec: Captured configuration.
//   - error: Non-nil if inspection or image parsing fails, nil on success.
func SnapshotContainer(api Operations, nameOrID string) (types.ContainerSpec, error) {
	ctx := context.Background()

	response, err := api.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return types.ContainerSpec{}, fmt.Errorf("%w: %w", errInspectContainerFailed, err)
	}

	// Validate the image reference up front; a spec with an unparsable image
	// could never be used to create the replacement container.
	imageRef, err := reference.ParseNormalizedNamed(response.Config.Image)
	if err != nil {
		return types.ContainerSpec{}, fmt.Errorf(
			"%w %q: %w",
			errInvalidImageReference,
			response.Config.Image,
			err,
		)
	}

	spec := types.ContainerSpec{
		ID:         types.ContainerID(response.ID),
		Name:       strings.TrimPrefix(response.Name, "/"),
		Image:      reference.FamiliarString(imageRef),
		Env:        parseEnvSlice(response.Config.Env),
		Cmd:        response.Config.Cmd,
		Entrypoint: response.Config.Entrypoint,
		User:       response.Config.User,
		WorkingDir: response.Config.WorkingDir,
		Labels:     maps.Clone(response.Config.Labels),
		Running:    response.State != nil && response.State.Running,
	}

	if response.Config.ExposedPorts != nil {
		spec.ExposedPorts = maps.Clone(response.Config.ExposedPorts)
	}

	if response.HostConfig != nil {
		spec.PortBindings = maps.Clone(response.HostConfig.PortBindings)
		spec.Mounts = append(spec.Mounts, response.HostConfig.Mounts...)
		spec.Binds = append(spec.Binds, response.HostConfig.Binds...)
		spec.NetworkMode = response.HostConfig.NetworkMode
		spec.Resources = response.HostConfig.Resources
		spec.RestartPolicy = response.HostConfig.RestartPolicy
	}

	if response.NetworkSettings != nil {
		spec.Networks = maps.Clone(response.NetworkSettings.Networks)
	}

	return spec, nil
}
