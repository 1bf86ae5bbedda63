// Package api wires HarborView's HTTP endpoints to the recreation actions,
// coordinating endpoint registration and server lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/harborview/harborview/pkg/api"
	"github.com/harborview/harborview/pkg/api/env"
	metricsAPI "github.com/harborview/harborview/pkg/api/metrics"
	"github.com/harborview/harborview/pkg/metrics"
)

// GetAPIAddr formats the API address string based on host and port.
func GetAPIAddr(host, port string) string {
	address := host + ":" + port
	if host != "" && strings.Contains(host, ":") && net.ParseIP(host) != nil {
		address = "[" + host + "]:" + port
	}

	return address
}

// SetupAndStartAPI configures and launches the HTTP API.
//
// It registers the env reconfiguration and metrics endpoints behind bearer
// token authentication and starts the server, blocking until shutdown when
// blocking is true.
//
// Parameters:
//   - ctx: Context controlling the API's lifecycle, enabling graceful shutdown.
//   - apiHost: Host to bind the HTTP API to.
//   - apiPort: Port for the HTTP API server.
//   - apiToken: Authentication token for HTTP API access.
//   - blocking: Whether to block until the server shuts down.
//   - recreateFn: Function executing a container recreation for the env endpoint.
//   - metricsHandler: Metrics handler shared by the env and metrics endpoints.
//   - server: Optional injected server for testing.
//
// Returns:
//   - error: An error if the API fails to start (excluding clean shutdown), nil otherwise.
func SetupAndStartAPI(
	ctx context.Context,
	apiHost, apiPort, apiToken string,
	blocking bool,
	recreateFn env.RecreateFunc,
	metricsHandler *metrics.Metrics,
	server ...api.HTTPServer,
) error {
	address := GetAPIAddr(apiHost, apiPort)

	var httpAPI *api.API
	if len(server) > 0 {
		httpAPI = api.New(apiToken, address, server[0])
	} else {
		httpAPI = api.New(apiToken, address)
	}

	envHandler := env.New(recreateFn, metricsHandler)
	httpAPI.RegisterFunc(envHandler.Path, httpAPI.RequireToken(envHandler.Handle))

	metricsEndpoint := metricsAPI.New(metricsHandler)
	httpAPI.RegisterFunc(metricsEndpoint.Path, httpAPI.RequireToken(metricsEndpoint.Handle))

	if err := httpAPI.Start(ctx, blocking); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("Failed to start API")

		return fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return nil
}
