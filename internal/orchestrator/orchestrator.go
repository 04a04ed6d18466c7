// Package orchestrator drives a document translation run: batch the
// document's units, translate each batch through the retrying client,
// then write every result back in a single pass. Batches are translated
// strictly sequentially, in emission order.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/alzakaria14/translator-program/internal"
	"github.com/alzakaria14/translator-program/internal/batcher"
	"github.com/alzakaria14/translator-program/internal/translator"
)

// Document supplies the text units of a run and receives their
// translations. IDs must be stable for the document's lifetime.
type Document interface {
	Units() []internal.TextUnit
	SetText(id int, text string) error
}

// Memory is an optional cache of previously completed translations.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, serviceUsed string) error
}

type Config struct {
	Limits     batcher.Limits
	SourceLang string
	TargetLang string
	Memory     Memory
	OnProgress func(done, total int)
	OnLog      func(message string)
}

// Result summarises a run. Counters are per unit; FallbackUnits lists
// the IDs whose committed text is the untranslated original.
type Result struct {
	Units         int
	Translated    int
	FromMemory    int
	Fallback      int
	Skipped       int
	Batches       int
	FallbackUnits []int
}

type Orchestrator struct {
	client *translator.Client
	config Config
}

func New(client *translator.Client, config Config) *Orchestrator {
	return &Orchestrator{
		client: client,
		config: config,
	}
}

// Run translates doc in place. Every unit is committed exactly once:
// blank units are skipped, memory hits reuse the cached text, and a
// batch that exhausted its retries commits the original text instead,
// so the output document is always structurally complete. Context
// cancellation aborts before any writeback.
func (o *Orchestrator) Run(ctx context.Context, doc Document) (*Result, error) {
	units := doc.Units()
	result := &Result{Units: len(units)}
	if len(units) == 0 {
		return result, nil
	}

	// Resolve exact memory hits up front; cached units bypass batching.
	cached := make(map[int]string)
	if o.config.Memory != nil {
		for _, u := range units {
			if strings.TrimSpace(u.Text) == "" {
				continue
			}
			text, found, err := o.config.Memory.GetCachedTranslation(ctx, u.Text, o.config.SourceLang, o.config.TargetLang)
			if err != nil {
				return nil, fmt.Errorf("failed to query translation memory: %w", err)
			}
			if found {
				cached[u.ID] = text
			}
		}
	}

	remaining := make([]internal.TextUnit, 0, len(units))
	for _, u := range units {
		if _, ok := cached[u.ID]; ok {
			continue
		}
		remaining = append(remaining, u)
	}

	builder := batcher.New(remaining, o.config.Limits)
	total := builder.TotalItems()
	acc := newAccumulator()
	fallback := make(map[int]bool)
	done := 0

	for {
		batch, ok := builder.Next()
		if !ok {
			break
		}

		res, err := o.client.TranslateBatch(ctx, translator.BatchRequest{
			Texts:      batch.Texts(),
			SourceLang: o.config.SourceLang,
			TargetLang: o.config.TargetLang,
		})
		if err != nil {
			return nil, err
		}

		for i, item := range batch.Items {
			acc.Add(item.UnitID, res.Texts[i])
			if res.Fallback {
				fallback[item.UnitID] = true
			}
		}
		result.Batches++
		if res.Fallback {
			o.logf("batch %d degraded after %d attempts, keeping original text for %d items", result.Batches, res.Attempts, len(batch.Items))
		}

		done += len(batch.Items)
		if o.config.OnProgress != nil {
			o.config.OnProgress(done, total)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Writeback in source order, one commit per unit.
	for _, u := range units {
		if strings.TrimSpace(u.Text) == "" {
			result.Skipped++
			continue
		}
		if text, ok := cached[u.ID]; ok {
			if err := doc.SetText(u.ID, text); err != nil {
				return nil, fmt.Errorf("failed to write unit %d: %w", u.ID, err)
			}
			result.FromMemory++
			continue
		}
		text, ok := acc.Take(u.ID)
		if !ok {
			continue
		}
		if err := doc.SetText(u.ID, text); err != nil {
			return nil, fmt.Errorf("failed to write unit %d: %w", u.ID, err)
		}
		if fallback[u.ID] {
			result.Fallback++
			result.FallbackUnits = append(result.FallbackUnits, u.ID)
			continue
		}
		result.Translated++
		if o.config.Memory != nil {
			if err := o.config.Memory.SaveToMemory(ctx, u.Text, o.config.SourceLang, o.config.TargetLang, text, o.client.ServiceName()); err != nil {
				o.logf("failed to save unit %d to translation memory: %v", u.ID, err)
			}
		}
	}

	return result, nil
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.config.OnLog != nil {
		o.config.OnLog(fmt.Sprintf(format, args...))
	}
}
