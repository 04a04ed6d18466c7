// Package batcher groups text units into size-bounded batches for
// translation. Oversized units are sliced into fixed-width chunks that
// each travel in their own singleton batch, tagged with a sequence index
// so the chunks can be reassembled in order after translation.
package batcher

import (
	"strings"
	"unicode/utf8"

	"github.com/alzakaria14/translator-program/internal"
	"github.com/alzakaria14/translator-program/internal/chunker"
)

const (
	// DefaultMaxChars bounds the total character volume of one batch.
	DefaultMaxChars = 20000
	// DefaultMaxItems bounds the number of items in one batch.
	DefaultMaxItems = 50
)

// Limits configures batch construction. Non-positive fields are replaced
// with the defaults by New, so tests can run with tiny limits.
type Limits struct {
	MaxChars int `json:"max_chars"`
	MaxItems int `json:"max_items"`
}

// DefaultLimits returns both limits at their default values.
func DefaultLimits() Limits {
	return Limits{MaxChars: DefaultMaxChars, MaxItems: DefaultMaxItems}
}

// Item is one unit, or one chunk of a split unit, inside a batch.
// Seq is 0 for an unsplit unit; for a split unit it is the chunk's
// 0-based position among the chunks of that unit.
type Item struct {
	UnitID int    `json:"unit_id"`
	Seq    int    `json:"seq"`
	Text   string `json:"text"`
}

// Batch is an ordered group of items sent together in one remote call.
type Batch struct {
	Items []Item `json:"items"`
}

// Texts returns the item payloads in batch order.
func (b Batch) Texts() []string {
	texts := make([]string, len(b.Items))
	for i, item := range b.Items {
		texts[i] = item.Text
	}
	return texts
}

// Builder emits batches one at a time, in unit order. Blank units are
// skipped. A unit longer than MaxChars flushes the pending batch, then
// yields one singleton batch per chunk; chunks are never combined with
// other units. Construction is a pure function of the input units and
// limits, so two builders over the same input emit identical sequences.
type Builder struct {
	units  []internal.TextUnit
	limits Limits

	pos     int
	queue   []Batch
	pending []Item
	chars   int
}

// New returns a Builder over units. Non-positive limit fields fall back
// to the defaults.
func New(units []internal.TextUnit, limits Limits) *Builder {
	if limits.MaxChars <= 0 {
		limits.MaxChars = DefaultMaxChars
	}
	if limits.MaxItems <= 0 {
		limits.MaxItems = DefaultMaxItems
	}
	return &Builder{units: units, limits: limits}
}

// Next returns the next batch. The second return value is false once all
// units have been consumed and every batch emitted.
func (b *Builder) Next() (Batch, bool) {
	for len(b.queue) == 0 && b.pos < len(b.units) {
		unit := b.units[b.pos]
		b.pos++

		if strings.TrimSpace(unit.Text) == "" {
			continue
		}

		n := utf8.RuneCountInString(unit.Text)
		if n > b.limits.MaxChars {
			b.flush()
			for seq, chunk := range chunker.Split(unit.Text, b.limits.MaxChars) {
				b.queue = append(b.queue, Batch{Items: []Item{{UnitID: unit.ID, Seq: seq, Text: chunk}}})
			}
			continue
		}

		if len(b.pending) > 0 && (len(b.pending)+1 > b.limits.MaxItems || b.chars+n > b.limits.MaxChars) {
			b.flush()
		}
		b.pending = append(b.pending, Item{UnitID: unit.ID, Seq: 0, Text: unit.Text})
		b.chars += n
	}

	if len(b.queue) > 0 {
		batch := b.queue[0]
		b.queue = b.queue[1:]
		return batch, true
	}

	if len(b.pending) > 0 {
		batch := Batch{Items: b.pending}
		b.pending = nil
		b.chars = 0
		return batch, true
	}

	return Batch{}, false
}

// All drains the builder and returns every remaining batch.
func (b *Builder) All() []Batch {
	var batches []Batch
	for {
		batch, ok := b.Next()
		if !ok {
			return batches
		}
		batches = append(batches, batch)
	}
}

func (b *Builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	b.queue = append(b.queue, Batch{Items: b.pending})
	b.pending = nil
	b.chars = 0
}

// TotalItems returns the number of batch items the builder's units will
// produce: one per non-blank unit, plus the extra chunks of oversized
// units. The count does not depend on how far iteration has advanced,
// so it can serve as the denominator for progress reporting.
func (b *Builder) TotalItems() int {
	total := 0
	for _, unit := range b.units {
		if strings.TrimSpace(unit.Text) == "" {
			continue
		}
		total += chunker.Count(utf8.RuneCountInString(unit.Text), b.limits.MaxChars)
	}
	return total
}
