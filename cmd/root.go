// Package cmd contains the command-line interface definitions and execution logic for HarborView.
// It provides the root command, wiring the Docker client, the recreation actions, and the
// HTTP API together based on user-specified configuration.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harborview/harborview/internal/actions"
	internalApi "github.com/harborview/harborview/internal/api"
	"github.com/harborview/harborview/internal/flags"
	"github.com/harborview/harborview/internal/meta"
	"github.com/harborview/harborview/pkg/container"
	"github.com/harborview/harborview/pkg/metrics"
	"github.com/harborview/harborview/pkg/types"
)

// client is the Docker client instance used for all container operations.
//
// It is initialized during the preRun phase with options derived from
// command-line flags and environment variables such as DOCKER_HOST,
// DOCKER_TLS_VERIFY, and DOCKER_API_VERSION.
var client types.Client

// probeTimeout is the default health probe timeout applied to requests that
// do not carry their own. Populated during preRun from --probe-timeout.
var probeTimeout time.Duration

// rootCmd is the root command for the HarborView CLI.
var rootCmd = NewRootCommand()

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "harborview",
		Short: "Container dashboard backend with safe environment reconfiguration",
		Long: `HarborView exposes an HTTP API for reconfiguring the environment of
running containers. Environment changes recreate the target container from a
configuration snapshot, keeping the original as a rollback backup until the
replacement is verified running.`,
		Version: meta.Version,
		PreRun:  preRun,
		Run:     run,
	}
}

// init registers all flags with the root command.
func init() {
	flags.SetDefaults()
	flags.RegisterDockerFlags(rootCmd)
	flags.RegisterSystemFlags(rootCmd)
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun configures logging and the Docker client before the command body runs.
func preRun(cmd *cobra.Command, _ []string) {
	flagSet := cmd.PersistentFlags()

	if err := flags.SetupLogging(flagSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	if err := flags.EnvConfig(cmd); err != nil {
		logrus.WithError(err).Fatal("Failed to apply Docker environment configuration")
	}

	stopTimeout, err := flagSet.GetDuration("stop-timeout")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read stop-timeout flag")
	}

	probeInterval, err := flagSet.GetDuration("probe-interval")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read probe-interval flag")
	}

	probeTimeout, err = flagSet.GetDuration("probe-timeout")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read probe-timeout flag")
	}

	client = container.NewClient(container.ClientOptions{
		ProbeInterval: probeInterval,
		StopTimeout:   stopTimeout,
	})
}

// run starts the HTTP API and blocks until an interrupt or termination signal.
func run(c *cobra.Command, _ []string) {
	flagSet := c.PersistentFlags()

	token, err := flagSet.GetString("http-api-token")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read http-api-token flag")
	}

	apiHost, err := flagSet.GetString("http-api-host")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read http-api-host flag")
	}

	apiPort, err := flagSet.GetString("http-api-port")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read http-api-port flag")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metricsHandler := metrics.Default()
	defer metricsHandler.Shutdown()

	recreateFn := func(request types.RecreateRequest) (types.RecreateResult, error) {
		if request.Timeout <= 0 {
			request.Timeout = probeTimeout
		}

		return actions.Recreate(client, request)
	}

	logrus.WithField("version", meta.Version).Info("HarborView started")

	err = internalApi.SetupAndStartAPI(ctx, apiHost, apiPort, token, true, recreateFn, metricsHandler)
	if err != nil {
		logrus.WithError(err).Fatal("HTTP API server failed")
	}

	logrus.Info("HarborView shut down")
}
