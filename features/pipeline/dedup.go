package pipeline

import (
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/internal/similarity"
)

// terminalStatuses are task states past which a near-duplicate is allowed
// through again: finished work can legitimately recur.
var terminalStatuses = map[string]struct{}{
	"done":      {},
	"completed": {},
}

type duplicatePolicy struct {
	// At or above this similarity the item is a duplicate regardless of the
	// matched task's state.
	hard float64
	// Between near and hard the item is a duplicate only while the matched
	// task is still open.
	near float64
}

// partitionDuplicates splits the extracted items against a snapshot of
// recently created tasks. Every comparison in a batch runs against the same
// snapshot, so two items in one batch can still both pass; that window is
// accepted.
func partitionDuplicates(items []ExtractedTask, recent []task.RecentTask, p duplicatePolicy) (fresh []ExtractedTask, duplicates []string) {
	fresh = make([]ExtractedTask, 0, len(items))
	for _, it := range items {
		if match := findDuplicate(it, recent, p); match != "" {
			duplicates = append(duplicates, it.Title)
			continue
		}
		fresh = append(fresh, it)
	}
	return fresh, duplicates
}

func findDuplicate(it ExtractedTask, recent []task.RecentTask, p duplicatePolicy) string {
	for _, r := range recent {
		sim := similarity.Jaccard(it.Title, r.Title)
		if sim >= p.hard {
			return r.ID
		}
		if sim >= p.near {
			if _, terminal := terminalStatuses[r.Status]; !terminal {
				return r.ID
			}
		}
	}
	return ""
}
