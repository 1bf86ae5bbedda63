// Package actions provides the core logic for HarborView's container
// recreation flow: the saga that replaces a container's environment by
// snapshotting, renaming the original to a backup name, creating and probing
// a replacement, and rolling back on failure.
package actions
