// Package rotation computes the round-robin successor mapping that
// decides which player receives a story's next prompt. The mapping is
// fixed when the game starts and is never recomputed afterwards, even
// if the roster changes.
package rotation

// Successors maps every name at index i to the name at index
// (i+1) mod n, so the last player wraps around to the first. A single
// player passes to themself.
func Successors(names []string) map[string]string {
	successors := make(map[string]string, len(names))

	for i, name := range names {
		successors[name] = names[(i+1)%len(names)]
	}

	return successors
}
