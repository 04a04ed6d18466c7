package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/alzakaria14/translator-program/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		service TEXT NOT NULL,
		units INTEGER NOT NULL,
		translated INTEGER NOT NULL,
		from_memory INTEGER NOT NULL,
		fallback INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetCachedTranslation returns the remembered translation for an exact
// source text and language pair, bumping its usage statistics on a hit.
// Invalidated entries behave as misses.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var translatedText string
	var invalidated bool

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(sourceText), sourceLang, targetLang).Scan(&translatedText, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(sourceText), sourceLang, targetLang)

	return translatedText, true, err
}

func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, serviceUsed string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, translated_text, service_used, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		uuid.New().String(), normalizeText(sourceText), sourceLang, targetLang, translatedText, serviceUsed, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID             string
	SourceText     string
	SourceLang     string
	TargetLang     string
	TranslatedText string
	ServiceUsed    string
	UsageCount     int
	Invalidated    bool
	LastUsed       time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, translated_text, service_used, usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.TranslatedText, &e.ServiceUsed, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SaveRun records the outcome of a translation run.
func (s *Store) SaveRun(ctx context.Context, rec internal.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_file, output_file, source_lang, target_lang, service, units, translated, from_memory, fallback, skipped, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.InputFile, rec.OutputFile, rec.SourceLang, rec.TargetLang, rec.Service,
		rec.Units, rec.Translated, rec.FromMemory, rec.Fallback, rec.Skipped, rec.CreatedAt)
	return err
}

// ListRuns returns the most recent run records, newest first. A limit of
// zero or less returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	query := `SELECT id, input_file, output_file, source_lang, target_lang, service, units, translated, from_memory, fallback, skipped, created_at FROM runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		if err := rows.Scan(&rec.ID, &rec.InputFile, &rec.OutputFile, &rec.SourceLang, &rec.TargetLang, &rec.Service,
			&rec.Units, &rec.Translated, &rec.FromMemory, &rec.Fallback, &rec.Skipped, &rec.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
