package container

import (
	"context"
	"errors"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerNetwork "github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// errNotImplemented marks fake operations a test did not script.
var errNotImplemented = errors.New("operation not scripted in this test")

// fakeAPI is a scriptable Operations implementation for unit tests.
type fakeAPI struct {
	inspectFn func(containerID string) (dockerContainer.InspectResponse, error)
	createFn  func(
		config *dockerContainer.Config,
		hostConfig *dockerContainer.HostConfig,
		networkingConfig *dockerNetwork.NetworkingConfig,
		containerName string,
	) (dockerContainer.CreateResponse, error)
	startFn  func(containerID string) error
	stopFn   func(containerID string) error
	renameFn func(containerID, newName string) error
	removeFn func(containerID string) error
}

func (f *fakeAPI) ContainerInspect(
	_ context.Context,
	containerID string,
) (dockerContainer.InspectResponse, error) {
	if f.inspectFn == nil {
		return dockerContainer.InspectResponse{}, errNotImplemented
	}

	return f.inspectFn(containerID)
}

func (f *fakeAPI) ContainerCreate(
	_ context.Context,
	config *dockerContainer.Config,
	hostConfig *dockerContainer.HostConfig,
	networkingConfig *dockerNetwork.NetworkingConfig,
	_ *ocispec.Platform,
	containerName string,
) (dockerContainer.CreateResponse, error) {
	if f.createFn == nil {
		return dockerContainer.CreateResponse{}, errNotImplemented
	}

	return f.createFn(config, hostConfig, networkingConfig, containerName)
}

func (f *fakeAPI) ContainerStart(
	_ context.Context,
	containerID string,
	_ dockerContainer.StartOptions,
) error {
	if f.startFn == nil {
		return errNotImplemented
	}

	return f.startFn(containerID)
}

func (f *fakeAPI) ContainerStop(
	_ context.Context,
	containerID string,
	_ dockerContainer.StopOptions,
) error {
	if f.stopFn == nil {
		return errNotImplemented
	}

	return f.stopFn(containerID)
}

func (f *fakeAPI) ContainerRename(_ context.Context, containerID, newName string) error {
	if f.renameFn == nil {
		return errNotImplemented
	}

	return f.renameFn(containerID, newName)
}

func (f *fakeAPI) ContainerRemove(
	_ context.Context,
	containerID string,
	_ dockerContainer.RemoveOptions,
) error {
	if f.removeFn == nil {
		return errNotImplemented
	}

	return f.removeFn(containerID)
}
