package orchestrator

import "testing"

func TestAccumulator_TakeConcatenatesInArrivalOrder(t *testing.T) {
	acc := newAccumulator()
	acc.Add(7, "first ")
	acc.Add(3, "solo")
	acc.Add(7, "second")

	text, ok := acc.Take(7)
	if !ok {
		t.Fatal("expected entry for unit 7")
	}
	if text != "first second" {
		t.Errorf("expected concatenation in arrival order, got %q", text)
	}

	text, ok = acc.Take(3)
	if !ok || text != "solo" {
		t.Errorf("expected solo, got %q (ok=%v)", text, ok)
	}
}

func TestAccumulator_TakeRemovesEntry(t *testing.T) {
	acc := newAccumulator()
	acc.Add(1, "once")

	if _, ok := acc.Take(1); !ok {
		t.Fatal("expected entry on first take")
	}
	if _, ok := acc.Take(1); ok {
		t.Error("expected entry to be gone on second take")
	}
	if acc.Len() != 0 {
		t.Errorf("expected empty accumulator, got %d entries", acc.Len())
	}
}

func TestAccumulator_TakeUnknownUnit(t *testing.T) {
	acc := newAccumulator()
	if text, ok := acc.Take(42); ok || text != "" {
		t.Errorf("expected miss, got %q (ok=%v)", text, ok)
	}
}
