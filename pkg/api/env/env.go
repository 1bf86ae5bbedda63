// Package env provides the HTTP endpoint for container environment reconfiguration.
package env

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harborview/harborview/internal/actions"
	"github.com/harborview/harborview/pkg/metrics"
	"github.com/harborview/harborview/pkg/types"
)

// RecreateFunc executes an environment reconfiguration for a single container.
type RecreateFunc func(request types.RecreateRequest) (types.RecreateResult, error)

// Handler serves PUT /v1/containers/{name}/env requests.
//
// It holds the recreation function and the metrics handler used to record outcomes.
type Handler struct {
	fn      RecreateFunc     // Recreation execution function.
	Path    string           // API endpoint pattern.
	metrics *metrics.Metrics // Outcome metrics, may be nil in tests.
}

// requestBody is the JSON payload accepted by the endpoint.
type requestBody struct {
	Env                   map[string]string `json:"env"`
	Recreate              bool              `json:"recreate"`
	RollbackOnFailure     *bool             `json:"rollbackOnFailure,omitempty"`
	KeepRollbackContainer bool              `json:"keepRollbackContainer,omitempty"`
	TimeoutSeconds        int               `json:"timeoutSeconds,omitempty"`
}

// successResponse is the JSON body returned when the recreation succeeds.
type successResponse struct {
	Success               bool   `json:"success"`
	PreviousContainerID   string `json:"previousContainerId"`
	NewContainerID        string `json:"newContainerId"`
	RollbackContainerName string `json:"rollbackContainerName,omitempty"`
	RollbackAvailable     bool   `json:"rollbackAvailable"`
}

// errorResponse is the JSON body returned when the recreation fails.
type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New creates a new Handler instance.
//
// Parameters:
//   - recreateFn: Function to execute the container recreation.
//   - metricsHandler: Metrics handler for recording outcomes, may be nil.
//
// Returns:
//   - *Handler: Initialized handler with the endpoint pattern set.
func New(recreateFn RecreateFunc, metricsHandler *metrics.Metrics) *Handler {
	return &Handler{
		fn:      recreateFn,
		Path:    "PUT /v1/containers/{name}/env",
		metrics: metricsHandler,
	}
}

// Handle processes environment reconfiguration requests.
//
// The request body carries the full replacement environment plus the recreate
// confirmation flag. The container name comes from the URL path. On success it
// returns HTTP 200 with the new container identity; failures map the error code
// to an HTTP status and return a structured error body.
//
// Parameters:
//   - w: HTTP response writer for sending status codes and responses.
//   - r: HTTP request with the container name path value and JSON body.
func (handle *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Info("Received HTTP API env update request")

	name := r.PathValue("name")

	var body requestBody

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&body); err != nil {
		logrus.WithError(err).Debug("Failed to decode request body")
		writeError(w, http.StatusBadRequest, actions.CodeValidation, "invalid request body: "+err.Error())

		return
	}

	// Rollback defaults to enabled unless the caller opts out.
	rollbackOnFailure := true
	if body.RollbackOnFailure != nil {
		rollbackOnFailure = *body.RollbackOnFailure
	}

	request := types.RecreateRequest{
		Name:                  name,
		Env:                   body.Env,
		Recreate:              body.Recreate,
		RollbackOnFailure:     rollbackOnFailure,
		KeepRollbackContainer: body.KeepRollbackContainer,
		Timeout:               time.Duration(body.TimeoutSeconds) * time.Second,
	}

	startTime := time.Now()
	result, err := handle.fn(request)
	duration := time.Since(startTime)

	if handle.metrics != nil && result.Status != "" {
		handle.metrics.Register(&metrics.Metric{Status: result.Status, Duration: duration})
	}

	if err != nil {
		code := actions.ErrorCode(err)
		logrus.WithError(err).WithFields(logrus.Fields{
			"container": name,
			"code":      code,
			"status":    result.Status,
		}).Info("Env update failed")

		message := err.Error()
		if code == actions.CodeRollbackFailed {
			// The fatal rollback message is a fixed, recognizable string; the
			// underlying cause stays in the logs.
			message = actions.ErrRollbackFailed.Error()
		}

		writeError(w, httpStatusForCode(code), code, message)

		return
	}

	logrus.WithFields(logrus.Fields{
		"container":   name,
		"new_id":      result.NewContainerID.ShortID(),
		"duration_ms": duration.Milliseconds(),
		"keep_backup": request.KeepRollbackContainer,
		"backup_name": result.RollbackContainerName,
	}).Info("Env update succeeded")

	writeJSON(w, http.StatusOK, successResponse{
		Success:               true,
		PreviousContainerID:   string(result.PreviousContainerID),
		NewContainerID:        string(result.NewContainerID),
		RollbackContainerName: result.RollbackContainerName,
		RollbackAvailable:     result.RollbackAvailable,
	})
}

// httpStatusForCode maps recreation error codes to HTTP status codes.
func httpStatusForCode(code string) int {
	switch code {
	case actions.CodeValidation:
		return http.StatusBadRequest
	case actions.CodeTargetNotFound:
		return http.StatusNotFound
	case actions.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   errorDetail{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(buf.Bytes()); err != nil {
		logrus.WithError(err).Error("Failed to write response")
	}
}
