package internal

import "time"

// TextUnit is one translatable piece of a document. ID is the stable
// writeback key assigned at extraction time; two units never share an ID.
type TextUnit struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// RunRecord summarises one completed translate run for the history table.
type RunRecord struct {
	ID         string    `json:"id"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Service    string    `json:"service"`
	Units      int       `json:"units"`
	Translated int       `json:"translated"`
	FromMemory int       `json:"from_memory"`
	Fallback   int       `json:"fallback"`
	Skipped    int       `json:"skipped"`
	CreatedAt  time.Time `json:"created_at"`
}
