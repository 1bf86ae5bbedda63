// Package metrics provides the JSON metrics summary endpoint.
package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/harborview/harborview/pkg/metrics"
)

// Handler is an HTTP handle for serving recreation metric data.
type Handler struct {
	Path    string
	Handle  http.HandlerFunc
	Metrics *metrics.Metrics
}

// New is a factory function creating a new metrics Handler instance.
func New(metricsHandler *metrics.Metrics) *Handler {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		data := map[string]any{
			"total":          metricsHandler.Total(),
			"succeeded":      metricsHandler.Succeeded(),
			"restored":       metricsHandler.Restored(),
			"rollbackFailed": metricsHandler.RollbackFailed(),
			"failed":         metricsHandler.Failed(),
		}
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("Failed to encode metrics response")
		}
	}

	return &Handler{
		Path:    "/v1/metrics",
		Handle:  handler,
		Metrics: metricsHandler,
	}
}
