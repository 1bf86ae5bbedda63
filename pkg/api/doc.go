// Package api provides the HTTP API server for HarborView.
package api
