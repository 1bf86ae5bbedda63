// Package container wraps the Docker API client with the narrow set of
// runtime operations the recreate flow needs: configuration snapshots,
// rename/create/start/stop/remove, and a running-state probe.
package container
