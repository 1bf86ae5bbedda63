// Package metrics tracks container recreation outcomes and exposes them to Prometheus.
package metrics
