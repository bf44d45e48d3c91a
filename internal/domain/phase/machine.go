package phase

// Cache holds the per-phase validation summaries the transition gate
// reads. Only explicit validation writes it; CanTransition never
// re-validates, so entries may be stale relative to unvalidated edits.
type Cache map[Phase]*ValidationSummary

// CanTransition decides whether moving from current to target is
// permitted. Moving to target at or before current's order is always
// allowed; moving forward requires every earlier phase's cached
// summary to be complete. A nil return means the move is permitted.
func CanTransition(current, target Phase, cache Cache) *TransitionError {
	if Order(target) <= Order(current) {
		return nil
	}
	for _, p := range ordered {
		if Order(p) >= Order(target) {
			break
		}
		summary, ok := cache[p]
		if !ok || !summary.IsComplete {
			return &TransitionError{From: current, To: target, Blocking: p}
		}
	}
	return nil
}
