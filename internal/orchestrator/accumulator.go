package orchestrator

import "strings"

// accumulator collects translated chunk texts per unit until the
// writeback pass. Chunks arrive in batch emission order, which matches
// each unit's split sequence, so appending preserves concatenation
// order.
type accumulator struct {
	chunks map[int][]string
}

func newAccumulator() *accumulator {
	return &accumulator{chunks: make(map[int][]string)}
}

func (a *accumulator) Add(unitID int, text string) {
	a.chunks[unitID] = append(a.chunks[unitID], text)
}

// Take returns the concatenated text for a unit and removes its entry,
// so each unit can be committed at most once per run.
func (a *accumulator) Take(unitID int) (string, bool) {
	parts, ok := a.chunks[unitID]
	if !ok {
		return "", false
	}
	delete(a.chunks, unitID)
	return strings.Join(parts, ""), true
}

func (a *accumulator) Len() int {
	return len(a.chunks)
}
