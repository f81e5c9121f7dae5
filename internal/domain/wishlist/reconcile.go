package wishlist

import "github.com/google/uuid"

// MergeResult describes how a local wishlist was folded into the server one
type MergeResult struct {
	// Merged is the final variant order: server items first, then added ones
	Merged []uuid.UUID
	// Added lists local ids that were back-filled
	Added []uuid.UUID
	// Skipped lists local ids whose variant no longer exists
	Skipped []uuid.UUID
}

// Reconcile merges a local wishlist into the server wishlist.
//
// Server items win and keep their order. Local ids missing on the server are
// appended in the order given. Repeated local ids count once. Ids for which
// exists returns false are reported as skipped. A nil exists accepts every id.
func Reconcile(server, local []uuid.UUID, exists func(uuid.UUID) bool) MergeResult {
	seen := make(map[uuid.UUID]bool, len(server)+len(local))
	merged := make([]uuid.UUID, 0, len(server)+len(local))
	for _, id := range server {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}

	result := MergeResult{Added: []uuid.UUID{}, Skipped: []uuid.UUID{}}
	skipped := make(map[uuid.UUID]bool)
	for _, id := range local {
		if id == uuid.Nil || seen[id] || skipped[id] {
			continue
		}
		if exists != nil && !exists(id) {
			skipped[id] = true
			result.Skipped = append(result.Skipped, id)
			continue
		}
		seen[id] = true
		merged = append(merged, id)
		result.Added = append(result.Added, id)
	}
	result.Merged = merged
	return result
}
