package actions_test

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/harborview/harborview/internal/actions"
	"github.com/harborview/harborview/internal/actions/mocks"
	"github.com/harborview/harborview/pkg/types"
)

// envTestSpec builds a snapshot for a running container with the given name
// and the environment used throughout the suite.
func envTestSpec(name string) types.ContainerSpec {
	return types.ContainerSpec{
		ID:    "old-container-id",
		Name:  name,
		Image: "registry.example.com/app:1.2.3",
		Env: map[string]string{
			"APP_ENV":   "production",
			"API_TOKEN": "super-secret",
		},
		Labels:  map[string]string{"app": "env-test"},
		Running: true,
	}
}

// envTestRequest builds a full-replace request that carries the original
// environment plus FEATURE_FLAG, with rollback enabled and the backup kept.
func envTestRequest(name string) types.RecreateRequest {
	return types.RecreateRequest{
		Name: name,
		Env: map[string]string{
			"APP_ENV":      "production",
			"API_TOKEN":    "super-secret",
			"FEATURE_FLAG": "enabled",
		},
		Recreate:              true,
		RollbackOnFailure:     true,
		KeepRollbackContainer: true,
	}
}

var _ = ginkgo.Describe("the recreate flow", func() {
	ginkgo.When("the recreate flag is not set", func() {
		ginkgo.It("should reject the request before any mutation", func() {
			data := &mocks.TestData{Spec: envTestSpec("flag-check-svc")}
			client := mocks.CreateMockClient(data)

			request := envTestRequest("flag-check-svc")
			request.Recreate = false

			result, err := actions.Recreate(client, request)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeValidation))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusFailed))
			gomega.Expect(data.Renames).To(gomega.BeEmpty())
			gomega.Expect(data.Created).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("the target container does not exist", func() {
		ginkgo.It("should abort with a not-found error and no side effects", func() {
			data := &mocks.TestData{
				SnapshotError: cerrdefs.ErrNotFound,
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("missing-svc"))
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeTargetNotFound))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusFailed))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeFalse())
			gomega.Expect(data.Renames).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("the snapshot fails for another reason", func() {
		ginkgo.It("should abort with a snapshot error", func() {
			data := &mocks.TestData{
				SnapshotError: errors.New("daemon unreachable"),
			}
			client := mocks.CreateMockClient(data)

			_, err := actions.Recreate(client, envTestRequest("snapshot-err-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeSnapshotFailed))
			gomega.Expect(data.Renames).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("adding an environment variable to container-env-test", func() {
		ginkgo.It("should recreate the container and retain the backup", func() {
			data := &mocks.TestData{Spec: envTestSpec("container-env-test")}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("container-env-test"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusSuccess))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeTrue())
			gomega.Expect(result.RollbackContainerName).
				To(gomega.Equal("rollback_container_env_test"))
			gomega.Expect(result.PreviousContainerID).
				To(gomega.Equal(types.ContainerID("old-container-id")))
			gomega.Expect(result.NewContainerID).To(gomega.Equal(data.NewContainerID))

			// Exactly one rename: the original to its backup name.
			gomega.Expect(data.Renames).To(gomega.HaveLen(1))
			gomega.Expect(data.Renames[0].NewName).To(gomega.Equal("rollback_container_env_test"))

			// The backup was quiesced before the replacement was created, and
			// never started again.
			gomega.Expect(data.Stopped).
				To(gomega.Equal([]types.ContainerID{"old-container-id"}))
			gomega.Expect(data.Started).To(gomega.Equal([]types.ContainerID{data.NewContainerID}))

			// The replacement carries the full merged environment and the
			// original non-env configuration.
			gomega.Expect(data.Created).To(gomega.HaveLen(1))
			gomega.Expect(data.Created[0].Env).To(gomega.HaveKeyWithValue("FEATURE_FLAG", "enabled"))
			gomega.Expect(data.Created[0].Env).To(gomega.HaveKeyWithValue("APP_ENV", "production"))
			gomega.Expect(data.Created[0].Image).To(gomega.Equal(data.Spec.Image))
			gomega.Expect(data.Created[0].Labels).To(gomega.Equal(data.Spec.Labels))

			// Success was gated on the probe, and the kept backup was not removed.
			gomega.Expect(data.Probed).To(gomega.Equal([]types.ContainerID{data.NewContainerID}))
			gomega.Expect(data.Removed).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("the backup container is not kept", func() {
		ginkgo.It("should remove the backup after the probe succeeds", func() {
			data := &mocks.TestData{Spec: envTestSpec("discard-backup-svc")}
			client := mocks.CreateMockClient(data)

			request := envTestRequest("discard-backup-svc")
			request.KeepRollbackContainer = false

			result, err := actions.Recreate(client, request)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusSuccess))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeFalse())
			gomega.Expect(result.RollbackContainerName).To(gomega.BeEmpty())
			gomega.Expect(data.Removed).
				To(gomega.Equal([]types.ContainerID{"old-container-id"}))
		})

		ginkgo.It("should keep the operation successful when backup removal fails", func() {
			data := &mocks.TestData{
				Spec:              envTestSpec("cleanup-warn-svc"),
				RemoveBackupError: errors.New("device or resource busy"),
			}
			client := mocks.CreateMockClient(data)

			request := envTestRequest("cleanup-warn-svc")
			request.KeepRollbackContainer = false

			result, err := actions.Recreate(client, request)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusSuccess))
			// The backup is still there, so it stays reported as available.
			gomega.Expect(result.RollbackAvailable).To(gomega.BeTrue())
			gomega.Expect(result.RollbackContainerName).To(gomega.Equal("rollback_cleanup_warn_svc"))
		})
	})

	ginkgo.When("renaming the original to its backup name fails", func() {
		ginkgo.It("should abort without touching anything else", func() {
			data := &mocks.TestData{
				Spec:              envTestSpec("rename-fail-svc"),
				BackupRenameError: errors.New("name already in use"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("rename-fail-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeCreateFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusFailed))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeFalse())
			gomega.Expect(data.Renames).To(gomega.HaveLen(1))
			gomega.Expect(data.Stopped).To(gomega.BeEmpty())
			gomega.Expect(data.Created).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("creating the replacement fails", func() {
		ginkgo.It("should restore the original container, name, and running state", func() {
			data := &mocks.TestData{
				Spec:        envTestSpec("create-fail-svc"),
				CreateError: errors.New("invalid mount config"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("create-fail-svc"))
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeCreateFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRestored))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeFalse())

			// Rename out, rename back.
			gomega.Expect(data.Renames).To(gomega.HaveLen(2))
			gomega.Expect(data.Renames[1].ContainerID).
				To(gomega.Equal(types.ContainerID("old-container-id")))
			gomega.Expect(data.Renames[1].NewName).To(gomega.Equal("create-fail-svc"))

			// The restored container is the untouched original: nothing was
			// created with the requested environment, and it was started again
			// because it was running before the operation.
			gomega.Expect(data.Started).
				To(gomega.Equal([]types.ContainerID{"old-container-id"}))
		})
	})

	ginkgo.When("starting the replacement fails", func() {
		ginkgo.It("should remove the replacement before restoring the backup", func() {
			data := &mocks.TestData{
				Spec:          envTestSpec("start-fail-svc"),
				StartNewError: errors.New("port is already allocated"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("start-fail-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeStartFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRestored))

			gomega.Expect(data.Removed).To(gomega.Equal([]types.ContainerID{data.NewContainerID}))
			gomega.Expect(data.Renames).To(gomega.HaveLen(2))
			gomega.Expect(data.Started).To(gomega.Equal([]types.ContainerID{
				data.NewContainerID,
				"old-container-id",
			}))
		})

		ginkgo.It("should proceed with the restore even when removal fails", func() {
			data := &mocks.TestData{
				Spec:           envTestSpec("remove-fail-svc"),
				StartNewError:  errors.New("port is already allocated"),
				RemoveNewError: errors.New("removal already in progress"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("remove-fail-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeStartFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRestored))
			gomega.Expect(data.Renames).To(gomega.HaveLen(2))
		})
	})

	ginkgo.When("the running-state probe times out", func() {
		ginkgo.It("should roll back the same way as a start failure", func() {
			data := &mocks.TestData{
				Spec:       envTestSpec("probe-fail-svc"),
				ProbeError: errors.New("timeout waiting for container to reach running state"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("probe-fail-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeStartFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRestored))
			gomega.Expect(data.Probed).To(gomega.Equal([]types.ContainerID{data.NewContainerID}))
			gomega.Expect(data.Removed).To(gomega.Equal([]types.ContainerID{data.NewContainerID}))
		})
	})

	ginkgo.When("the restore itself fails", func() {
		ginkgo.It("should surface the distinct fatal rollback error", func() {
			data := &mocks.TestData{
				Spec:               envTestSpec("rollback-fail-svc"),
				CreateError:        errors.New("invalid mount config"),
				RestoreRenameError: errors.New("daemon unreachable"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("rollback-fail-svc"))
			gomega.Expect(err).To(gomega.MatchError(actions.ErrRollbackFailed))
			gomega.Expect(err.Error()).To(gomega.HavePrefix("Rollback fallback also failed"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeRollbackFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRollbackFailed))
		})

		ginkgo.It("should treat a failed restore start as fatal too", func() {
			data := &mocks.TestData{
				Spec:              envTestSpec("restore-start-fail-svc"),
				StartNewError:     errors.New("port is already allocated"),
				RestoreStartError: errors.New("no such container"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("restore-start-fail-svc"))
			gomega.Expect(err).To(gomega.MatchError(actions.ErrRollbackFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRollbackFailed))
		})
	})

	ginkgo.When("rollback on failure is disabled", func() {
		ginkgo.It("should leave the backup container in place under its backup name", func() {
			data := &mocks.TestData{
				Spec:        envTestSpec("no-rollback-svc"),
				CreateError: errors.New("invalid mount config"),
			}
			client := mocks.CreateMockClient(data)

			request := envTestRequest("no-rollback-svc")
			request.RollbackOnFailure = false

			result, err := actions.Recreate(client, request)
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeCreateFailed))
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusFailed))
			gomega.Expect(result.RollbackAvailable).To(gomega.BeTrue())
			gomega.Expect(result.RollbackContainerName).To(gomega.Equal("rollback_no_rollback_svc"))
			gomega.Expect(data.Renames).To(gomega.HaveLen(1))
		})
	})

	ginkgo.When("the target container is stopped", func() {
		ginkgo.It("should not stop the backup and not restart it on rollback", func() {
			spec := envTestSpec("stopped-svc")
			spec.Running = false

			data := &mocks.TestData{
				Spec:        spec,
				CreateError: errors.New("invalid mount config"),
			}
			client := mocks.CreateMockClient(data)

			result, err := actions.Recreate(client, envTestRequest("stopped-svc"))
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusRestored))
			gomega.Expect(data.Stopped).To(gomega.BeEmpty())
			gomega.Expect(data.Started).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("a flow is already in progress for the same name", func() {
		ginkgo.It("should reject the second request with a conflict", func() {
			data := &mocks.TestData{
				Spec:          envTestSpec("conflict-svc"),
				CreateEntered: make(chan struct{}),
				ReleaseCreate: make(chan struct{}),
			}
			client := mocks.CreateMockClient(data)

			firstDone := make(chan error, 1)
			go func() {
				_, err := actions.Recreate(client, envTestRequest("conflict-svc"))
				firstDone <- err
			}()

			// Wait until the first flow is mid-saga, past the backup rename.
			gomega.Eventually(data.CreateEntered).Should(gomega.BeClosed())

			_, err := actions.Recreate(client, envTestRequest("conflict-svc"))
			gomega.Expect(actions.ErrorCode(err)).To(gomega.Equal(actions.CodeConflict))

			close(data.ReleaseCreate)
			gomega.Eventually(firstDone).Should(gomega.Receive(gomega.BeNil()))

			// Only the first flow renamed anything.
			gomega.Expect(data.Renames).To(gomega.HaveLen(1))
		})
	})

	ginkgo.When("the same container is recreated twice", func() {
		ginkgo.It("should allocate a second-generation backup name", func() {
			data := &mocks.TestData{Spec: envTestSpec("second-gen-svc")}
			client := mocks.CreateMockClient(data)

			first, err := actions.Recreate(client, envTestRequest("second-gen-svc"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(first.RollbackContainerName).To(gomega.Equal("rollback_second_gen_svc"))

			second, err := actions.Recreate(client, envTestRequest("second-gen-svc"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(second.RollbackContainerName).
				To(gomega.Equal("rollback_second_gen_svc_2"))
		})
	})
})
