package actions

import (
	"regexp"
	"strconv"
	"sync"
)

// backupNamePrefix prefixes every backup container name.
const backupNamePrefix = "rollback_"

// invalidNameChars matches characters replaced when deriving a backup name.
var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// nameAllocator derives collision-resistant backup names for containers being
// replaced.
//
// The first allocation for a name yields the bare base form
// ("rollback_<sanitized>"); repeated allocations for the same original name
// append a monotonically increasing generation suffix so consecutive recreate
// cycles with retained backups never collide. The original name is never
// recovered by re-parsing the generated name; the orchestrator carries it in
// the RollbackRecord instead.
type nameAllocator struct {
	mu          sync.Mutex
	generations map[string]uint64
}

// newNameAllocator creates an allocator with no recorded generations.
func newNameAllocator() *nameAllocator {
	return &nameAllocator{
		generations: make(map[string]uint64),
	}
}

// BackupName derives the next backup name for an original container name.
//
// Parameters:
//   - originalName: Canonical name of the container being replaced.
//
// Returns:
//   - string: Backup name, e.g. "rollback_container_env_test" or
//     "rollback_container_env_test_2" for the second generation.
func (a *nameAllocator) BackupName(originalName string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generations[originalName]++

	base := backupNamePrefix + sanitizeName(originalName)
	if generation := a.generations[originalName]; generation > 1 {
		return base + "_" + strconv.FormatUint(generation, 10)
	}

	return base
}

// sanitizeName replaces characters outside [a-zA-Z0-9_] with underscores.
func sanitizeName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "_")
}
