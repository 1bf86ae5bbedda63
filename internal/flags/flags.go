package flags

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DockerAPIMinVersion specifies the minimum Docker API version required by HarborView.
// It ensures compatibility with the Docker client.
const DockerAPIMinVersion string = "1.44"

// defaultStopTimeoutSeconds defines the default timeout for stopping containers (10 seconds).
const defaultStopTimeoutSeconds = 10

// defaultProbeTimeoutSeconds defines the default health probe timeout (30 seconds).
const defaultProbeTimeoutSeconds = 30

// defaultProbeInterval defines the default polling interval of the running-state probe.
const defaultProbeInterval = 500 * time.Millisecond

// errInvalidLogFormat indicates an invalid log format was specified.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errSetEnvFailed indicates a failure to set an environment variable.
var errSetEnvFailed = errors.New("failed to set environment variable")

// errGetFlagFailed indicates a failure to read a flag's value.
var errGetFlagFailed = errors.New("failed to read flag value")

// RegisterDockerFlags adds flags used directly by the Docker API client to the root command.
// These flags configure the Docker connection settings.
func RegisterDockerFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP("host", "H", envString("DOCKER_HOST"), "daemon socket to connect to")
	flags.BoolP("tlsverify", "v", envBool("DOCKER_TLS_VERIFY"), "use TLS and verify the remote")
	flags.StringP(
		"api-version",
		"a",
		envString("DOCKER_API_VERSION"),
		"api version to use by docker client",
	)
}

// RegisterSystemFlags adds flags that modify HarborView's program flow to the root command.
// These flags control the HTTP API, recreation behavior, and logging.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.String(
		"http-api-token",
		envString("HARBORVIEW_HTTP_API_TOKEN"),
		"Sets an authentication token for HTTP API requests")

	flags.String(
		"http-api-host",
		envString("HARBORVIEW_HTTP_API_HOST"),
		"Sets the listen host for the HTTP API")

	flags.String(
		"http-api-port",
		envString("HARBORVIEW_HTTP_API_PORT"),
		"Sets the listen port for the HTTP API")

	flags.DurationP(
		"stop-timeout",
		"t",
		envDuration("HARBORVIEW_TIMEOUT"),
		"Timeout before a container is forcefully stopped")

	flags.Duration(
		"probe-timeout",
		envDuration("HARBORVIEW_PROBE_TIMEOUT"),
		"Timeout for the replacement container to reach a running state")

	flags.Duration(
		"probe-interval",
		envDuration("HARBORVIEW_PROBE_INTERVAL"),
		"Polling interval of the running-state probe")

	flags.String(
		"log-level",
		envString("HARBORVIEW_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.String(
		"log-format",
		envString("HARBORVIEW_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty or JSON")

	flags.Bool(
		"no-color",
		envBool("NO_COLOR"),
		"Disable ANSI color escape codes in log output")

	flags.BoolP(
		"debug",
		"d",
		envBool("HARBORVIEW_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.Bool(
		"trace",
		envBool("HARBORVIEW_TRACE"),
		"Enable trace mode with very verbose logging")
}

// SetDefaults registers environment variable defaults with viper.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("DOCKER_HOST", "unix:///var/run/docker.sock")
	viper.SetDefault("DOCKER_API_VERSION", DockerAPIMinVersion)
	viper.SetDefault("HARBORVIEW_HTTP_API_HOST", "")
	viper.SetDefault("HARBORVIEW_HTTP_API_PORT", "8080")
	viper.SetDefault("HARBORVIEW_TIMEOUT", time.Second*defaultStopTimeoutSeconds)
	viper.SetDefault("HARBORVIEW_PROBE_TIMEOUT", time.Second*defaultProbeTimeoutSeconds)
	viper.SetDefault("HARBORVIEW_PROBE_INTERVAL", defaultProbeInterval)
	viper.SetDefault("HARBORVIEW_LOG_LEVEL", "info")
	viper.SetDefault("HARBORVIEW_LOG_FORMAT", "auto")
}

// EnvConfig translates Docker connection flags into the environment variables
// read by the Docker client.
func EnvConfig(cmd *cobra.Command) error {
	flags := cmd.PersistentFlags()

	host, err := flags.GetString("host")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	tls, err := flags.GetBool("tlsverify")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	version, err := flags.GetString("api-version")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	if err = setEnvOptStr("DOCKER_HOST", host); err != nil {
		return err
	}

	if err = setEnvOptBool("DOCKER_TLS_VERIFY", tls); err != nil {
		return err
	}

	return setEnvOptStr("DOCKER_API_VERSION", version)
}

// SetupLogging configures logrus from the log-level, log-format and no-color flags.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errGetFlagFailed, err)
	}

	if debug, _ := flags.GetBool("debug"); debug {
		rawLogLevel = "debug"
	}

	if trace, _ := flags.GetBool("trace"); trace {
		rawLogLevel = "trace"
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat applies the requested logrus formatter.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

func setEnvOptStr(env string, opt string) error {
	if opt == "" || opt == os.Getenv(env) {
		return nil
	}

	if err := os.Setenv(env, opt); err != nil {
		return fmt.Errorf("%w: %s: %w", errSetEnvFailed, env, err)
	}

	return nil
}

func setEnvOptBool(env string, opt bool) error {
	if opt {
		return setEnvOptStr(env, "1")
	}

	return nil
}

func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}
