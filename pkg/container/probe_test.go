package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dockerContainer "github.com/docker/docker/api/types/container"
)

func stateResponse(status string, running bool, exitCode int) dockerContainer.InspectResponse {
	return dockerContainer.InspectResponse{
		ContainerJSONBase: &dockerContainer.ContainerJSONBase{
			ID: "abcdef123456",
			State: &dockerContainer.State{
				Status:   status,
				Running:  running,
				ExitCode: exitCode,
			},
		},
	}
}

func TestWaitForRunningSucceedsOnceRunning(t *testing.T) {
	t.Parallel()

	calls := 0
	api := &fakeAPI{
		inspectFn: func(_ string) (dockerContainer.InspectResponse, error) {
			calls++
			if calls < 3 {
				return stateResponse("created", false, 0), nil
			}

			return stateResponse("running", true, 0), nil
		},
	}

	err := WaitForRunning(api, "abcdef123456", time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, calls, 3)
}

func TestWaitForRunningTimesOut(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		inspectFn: func(_ string) (dockerContainer.InspectResponse, error) {
			return stateResponse("created", false, 0), nil
		},
	}

	err := WaitForRunning(api, "abcdef123456", 30*time.Millisecond, 5*time.Millisecond)
	require.ErrorIs(t, err, errRunningProbeTimeout)
}

func TestWaitForRunningFailsFastOnExit(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		inspectFn: func(_ string) (dockerContainer.InspectResponse, error) {
			return stateResponse("exited", false, 127), nil
		},
	}

	start := time.Now()
	err := WaitForRunning(api, "abcdef123456", 5*time.Second, 5*time.Millisecond)
	require.ErrorIs(t, err, errContainerExited)
	require.Less(t, time.Since(start), time.Second,
		"an exited container must not burn the whole timeout")
}
