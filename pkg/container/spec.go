package container

import (
	"sort"
	"strings"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerNetwork "github.com/docker/docker/api/types/network"

	"github.com/harborview/harborview/pkg/types"
)

// envPartsCount is the number of parts in a KEY=VALUE environment entry.
const envPartsCount = 2

// parseEnvSlice converts Docker's KEY=VALUE environment slice into a map.
//
// Entries without a separator become keys with an empty value, matching how
// the runtime treats them.
func parseEnvSlice(env []string) map[string]string {
	parsed := make(map[string]string, len(env))

	for _, entry := range env {
		parts := strings.SplitN(entry, "=", envPartsCount)
		if len(parts) == envPartsCount {
			parsed[parts[0]] = parts[1]
		} else {
			parsed[parts[0]] = ""
		}
	}

	return parsed
}

// formatEnvMap converts an environment map back into Docker's KEY=VALUE
// slice, sorted by key so recreated containers get a deterministic config.
func formatEnvMap(env map[string]string) []string {
	formatted := make([]string, 0, len(env))
	for key, value := range env {
		formatted = append(formatted, key+"="+value)
	}

	sort.Strings(formatted)

	return formatted
}

// createConfig builds the container config for creating a container from a spec.
func createConfig(spec types.ContainerSpec) *dockerContainer.Config {
	return &dockerContainer.Config{
		Image:        spec.Image,
		Env:          formatEnvMap(spec.Env),
		Cmd:          spec.Cmd,
		Entrypoint:   spec.Entrypoint,
		User:         spec.User,
		WorkingDir:   spec.WorkingDir,
		ExposedPorts: spec.ExposedPorts,
		Labels:       spec.Labels,
	}
}

// createHostConfig builds the host config for creating a container from a spec.
func createHostConfig(spec types.ContainerSpec) *dockerContainer.HostConfig {
	return &dockerContainer.HostConfig{
		PortBindings:  spec.PortBindings,
		Mounts:        spec.Mounts,
		Binds:         spec.Binds,
		NetworkMode:   spec.NetworkMode,
		Resources:     spec.Resources,
		RestartPolicy: spec.RestartPolicy,
	}
}

// createNetworkConfig builds the networking config for creating a container
// from a spec, reattaching every network the snapshot recorded.
//
// Endpoint IDs and assigned addresses are cleared so the runtime allocates
// fresh ones for the replacement container; aliases, links, and user-assigned
// IPAM configuration are preserved.
func createNetworkConfig(spec types.ContainerSpec) *dockerNetwork.NetworkingConfig {
	config := &dockerNetwork.NetworkingConfig{
		EndpointsConfig: make(map[string]*dockerNetwork.EndpointSettings, len(spec.Networks)),
	}

	for name, endpoint := range spec.Networks {
		if endpoint == nil {
			config.EndpointsConfig[name] = nil

			continue
		}

		settings := *endpoint
		settings.EndpointID = ""
		settings.IPAddress = ""
		settings.GlobalIPv6Address = ""
		settings.Gateway = ""
		settings.IPv6Gateway = ""
		config.EndpointsConfig[name] = &settings
	}

	return config
}
