// Package types defines the shared data model for HarborView's container
// recreation subsystem: container snapshots, recreate requests and results,
// and the runtime client interface.
package types
