package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alzakaria14/translator-program/internal"
	"github.com/alzakaria14/translator-program/internal/batcher"
	"github.com/alzakaria14/translator-program/internal/translator"
)

type mockService struct {
	nameVal       string
	translateFunc func(ctx context.Context, req translator.BatchRequest) ([]string, error)
	callCount     atomic.Int32
}

func (m *mockService) Name() string {
	if m.nameVal == "" {
		return "mock"
	}
	return m.nameVal
}

func (m *mockService) TranslateBatch(ctx context.Context, req translator.BatchRequest) ([]string, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = strings.ToUpper(text)
	}
	return out, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

func (m *mockService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "id"}, nil
}

type fakeDoc struct {
	units   []internal.TextUnit
	written map[int]string
	failOn  int
}

func newFakeDoc(texts ...string) *fakeDoc {
	d := &fakeDoc{written: make(map[int]string), failOn: -1}
	for i, text := range texts {
		d.units = append(d.units, internal.TextUnit{ID: i, Text: text})
	}
	return d
}

func (d *fakeDoc) Units() []internal.TextUnit { return d.units }

func (d *fakeDoc) SetText(id int, text string) error {
	if id == d.failOn {
		return errors.New("paragraph is gone")
	}
	d.written[id] = text
	return nil
}

type fakeMemory struct {
	entries map[string]string
	saved   map[string]string
	service string
	getErr  error
}

func (m *fakeMemory) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	text, ok := m.entries[sourceText]
	return text, ok, nil
}

func (m *fakeMemory) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, serviceUsed string) error {
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[sourceText] = translatedText
	m.service = serviceUsed
	return nil
}

func newTestClient(svc translator.TranslationService) *translator.Client {
	return translator.NewClient(svc, translator.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})
}

func TestOrchestrator_Run_TranslatesAllUnits(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("Hello", "World")

	o := New(newTestClient(svc), Config{SourceLang: "en", TargetLang: "id"})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Units != 2 || result.Translated != 2 {
		t.Errorf("expected 2 units all translated, got %+v", result)
	}
	if result.Batches != 1 {
		t.Errorf("expected 1 batch, got %d", result.Batches)
	}
	if doc.written[0] != "HELLO" || doc.written[1] != "WORLD" {
		t.Errorf("unexpected writeback: %v", doc.written)
	}
}

func TestOrchestrator_Run_SkipsBlankUnits(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("", "   ", "text")

	o := New(newTestClient(svc), Config{TargetLang: "id"})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
	if result.Translated != 1 {
		t.Errorf("expected 1 translated, got %d", result.Translated)
	}
	if _, ok := doc.written[0]; ok {
		t.Error("blank unit 0 should not be written")
	}
	if _, ok := doc.written[1]; ok {
		t.Error("blank unit 1 should not be written")
	}
	if doc.written[2] != "TEXT" {
		t.Errorf("expected TEXT, got %q", doc.written[2])
	}
}

func TestOrchestrator_Run_OversizedUnitReassembled(t *testing.T) {
	// Each translation encodes the chunk's rune length, so the committed
	// text proves both chunk boundaries and concatenation order.
	svc := &mockService{
		translateFunc: func(_ context.Context, req translator.BatchRequest) ([]string, error) {
			out := make([]string, len(req.Texts))
			for i, text := range req.Texts {
				out[i] = fmt.Sprintf("<%d>", len([]rune(text)))
			}
			return out, nil
		},
	}
	doc := newFakeDoc("", "Halo dunia", strings.Repeat("x", 25000))

	o := New(newTestClient(svc), Config{
		Limits:     batcher.Limits{MaxChars: 20000, MaxItems: 50},
		TargetLang: "id",
	})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Batches != 3 {
		t.Errorf("expected 3 batches, got %d", result.Batches)
	}
	if result.Skipped != 1 || result.Translated != 2 {
		t.Errorf("expected 1 skipped and 2 translated, got %+v", result)
	}
	if doc.written[1] != "<10>" {
		t.Errorf("expected <10>, got %q", doc.written[1])
	}
	if doc.written[2] != "<20000><5000>" {
		t.Errorf("expected <20000><5000>, got %q", doc.written[2])
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 service calls, got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Run_FallbackKeepsOriginalText(t *testing.T) {
	svc := &mockService{
		translateFunc: func(context.Context, translator.BatchRequest) ([]string, error) {
			return nil, errors.New("remote down")
		},
	}
	doc := newFakeDoc("Hello", "World")
	mem := &fakeMemory{entries: map[string]string{}}
	var logged []string

	o := New(newTestClient(svc), Config{
		TargetLang: "id",
		Memory:     mem,
		OnLog:      func(message string) { logged = append(logged, message) },
	})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Fallback != 2 || result.Translated != 0 {
		t.Errorf("expected 2 fallback units, got %+v", result)
	}
	if len(result.FallbackUnits) != 2 {
		t.Errorf("expected 2 fallback IDs, got %v", result.FallbackUnits)
	}
	if doc.written[0] != "Hello" || doc.written[1] != "World" {
		t.Errorf("expected originals committed, got %v", doc.written)
	}
	if len(mem.saved) != 0 {
		t.Errorf("fallback output must not be cached, got %v", mem.saved)
	}
	if len(logged) == 0 {
		t.Error("expected a degradation log message")
	}
}

func TestOrchestrator_Run_MemoryHitBypassesService(t *testing.T) {
	var requested [][]string
	svc := &mockService{
		translateFunc: func(_ context.Context, req translator.BatchRequest) ([]string, error) {
			requested = append(requested, append([]string(nil), req.Texts...))
			out := make([]string, len(req.Texts))
			for i, text := range req.Texts {
				out[i] = strings.ToUpper(text)
			}
			return out, nil
		},
	}
	doc := newFakeDoc("Hello", "World")
	mem := &fakeMemory{entries: map[string]string{"Hello": "Halo"}}

	o := New(newTestClient(svc), Config{SourceLang: "en", TargetLang: "id", Memory: mem})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FromMemory != 1 || result.Translated != 1 {
		t.Errorf("expected 1 cached and 1 translated, got %+v", result)
	}
	if doc.written[0] != "Halo" {
		t.Errorf("expected cached text for unit 0, got %q", doc.written[0])
	}
	if doc.written[1] != "WORLD" {
		t.Errorf("expected WORLD for unit 1, got %q", doc.written[1])
	}
	if len(requested) != 1 || len(requested[0]) != 1 || requested[0][0] != "World" {
		t.Errorf("expected only uncached text sent to service, got %v", requested)
	}
}

func TestOrchestrator_Run_SavesTranslationsToMemory(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("Hello", "")
	mem := &fakeMemory{entries: map[string]string{}}

	o := New(newTestClient(svc), Config{SourceLang: "en", TargetLang: "id", Memory: mem})
	if _, err := o.Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if mem.saved["Hello"] != "HELLO" {
		t.Errorf("expected translation saved to memory, got %v", mem.saved)
	}
	if len(mem.saved) != 1 {
		t.Errorf("expected only the translated unit saved, got %v", mem.saved)
	}
	if mem.service != "mock" {
		t.Errorf("expected service name recorded, got %q", mem.service)
	}
}

func TestOrchestrator_Run_MemoryLookupErrorPropagates(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("Hello")
	mem := &fakeMemory{getErr: errors.New("database locked")}

	o := New(newTestClient(svc), Config{TargetLang: "id", Memory: mem})
	if _, err := o.Run(context.Background(), doc); err == nil {
		t.Fatal("expected memory lookup error, got nil")
	}
	if svc.callCount.Load() != 0 {
		t.Error("service should not be called when the memory lookup fails")
	}
}

func TestOrchestrator_Run_ZeroUnits(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc()

	o := New(newTestClient(svc), Config{TargetLang: "id"})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Units != 0 || result.Batches != 0 {
		t.Errorf("expected zero-valued result, got %+v", result)
	}
	if svc.callCount.Load() != 0 {
		t.Errorf("expected no service calls, got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Run_SequentialBatchOrder(t *testing.T) {
	var order [][]string
	svc := &mockService{
		translateFunc: func(_ context.Context, req translator.BatchRequest) ([]string, error) {
			order = append(order, append([]string(nil), req.Texts...))
			return append([]string(nil), req.Texts...), nil
		},
	}
	doc := newFakeDoc("a", "b", "c")

	o := New(newTestClient(svc), Config{
		Limits:     batcher.Limits{MaxItems: 1},
		TargetLang: "id",
	})
	result, err := o.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Batches != 3 {
		t.Fatalf("expected 3 batches, got %d", result.Batches)
	}
	want := [][]string{{"a"}, {"b"}, {"c"}}
	for i := range want {
		if len(order[i]) != 1 || order[i][0] != want[i][0] {
			t.Fatalf("expected batch order %v, got %v", want, order)
		}
	}
}

func TestOrchestrator_Run_ProgressReporting(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("a", "b", "c")
	var progress [][2]int

	o := New(newTestClient(svc), Config{
		Limits:     batcher.Limits{MaxItems: 2},
		TargetLang: "id",
		OnProgress: func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	if _, err := o.Run(context.Background(), doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := [][2]int{{2, 3}, {3, 3}}
	if len(progress) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress call %d: expected %v, got %v", i, want[i], progress[i])
		}
	}
}

func TestOrchestrator_Run_CommitErrorPropagates(t *testing.T) {
	svc := &mockService{}
	doc := newFakeDoc("Hello", "World")
	doc.failOn = 1

	o := New(newTestClient(svc), Config{TargetLang: "id"})
	if _, err := o.Run(context.Background(), doc); err == nil {
		t.Fatal("expected commit error, got nil")
	}
}

func TestOrchestrator_Run_ContextCancellation(t *testing.T) {
	svc := &mockService{
		translateFunc: func(context.Context, translator.BatchRequest) ([]string, error) {
			return nil, errors.New("remote down")
		},
	}
	doc := newFakeDoc("Hello")
	client := translator.NewClient(svc, translator.RetryPolicy{MaxAttempts: 2, Backoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	o := New(client, Config{TargetLang: "id"})
	_, err := o.Run(ctx, doc)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(doc.written) != 0 {
		t.Errorf("expected no writeback after cancellation, got %v", doc.written)
	}
}
