/*
Copyright © 2025 Al Zakaria <alzakaria14@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/alzakaria14/translator-program/internal"
	"github.com/alzakaria14/translator-program/internal/batcher"
	"github.com/alzakaria14/translator-program/internal/docx"
	"github.com/alzakaria14/translator-program/internal/orchestrator"
	"github.com/alzakaria14/translator-program/internal/store"
	"github.com/alzakaria14/translator-program/internal/translator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	noCache    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a Word document",
	Long: `Translate a .docx file paragraph by paragraph, preserving the document
structure, styles, and tables.

Paragraphs are sent in batches sized to the service's request limits.
A paragraph that exceeds the character budget on its own is split and
reassembled transparently. Batches that still fail after retries keep
their original text, so the output is always a complete document.

Available services:
  - libretranslate  LibreTranslate server (default, self-hosted)
  - google          Google Cloud Translation (requires credentials)
  - systran         Systran via RapidAPI (requires API key)

Previously translated paragraphs are reused from the translation memory
unless --no-cache is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		ctx := context.Background()

		for _, code := range []string{sourceLang, targetLang} {
			if code == "" || code == "auto" {
				continue
			}
			if _, err := language.Parse(code); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: unrecognized language code %q\n", code)
			}
		}

		doc, err := docx.Open(inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}

		svc, err := buildService(viper.GetString("service.name"), serviceConfigFromViper())
		if err != nil {
			return err
		}

		if err := svc.IsAvailable(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s availability check failed: %v\n", svc.Name(), err)
		}

		dbPath := viper.GetString("db.path")
		var db *store.Store
		var memory orchestrator.Memory
		if !noCache && dbPath != "" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			memory = db
		}

		client := translator.NewClient(svc, translator.RetryPolicy{
			MaxAttempts: viper.GetInt("retry.max_attempts"),
			Backoff:     viper.GetDuration("retry.backoff"),
		})
		client.Logf = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}

		var bar *progressbar.ProgressBar
		orch := orchestrator.New(client, orchestrator.Config{
			Limits: batcher.Limits{
				MaxChars: viper.GetInt("batch.max_chars"),
				MaxItems: viper.GetInt("batch.max_items"),
			},
			SourceLang: sourceLang,
			TargetLang: targetLang,
			Memory:     memory,
			OnProgress: func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "translating")
				}
				_ = bar.Set(done)
			},
			OnLog: func(message string) {
				fmt.Fprintf(os.Stderr, "%s\n", message)
			},
		})

		result, err := orch.Run(ctx, doc)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		if bar != nil {
			_ = bar.Finish()
		}

		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := doc.Save(outputFile); err != nil {
			return fmt.Errorf("failed to save output file: %w", err)
		}

		if db != nil {
			rec := internal.RunRecord{
				ID:         uuid.New().String(),
				InputFile:  inputFile,
				OutputFile: outputFile,
				SourceLang: sourceLang,
				TargetLang: targetLang,
				Service:    svc.Name(),
				Units:      result.Units,
				Translated: result.Translated,
				FromMemory: result.FromMemory,
				Fallback:   result.Fallback,
				Skipped:    result.Skipped,
				CreatedAt:  time.Now(),
			}
			if err := db.SaveRun(ctx, rec); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
			}
		}

		if result.Fallback > 0 {
			fmt.Printf("Translated %s to %s with degraded output\n", inputFile, outputFile)
		} else {
			fmt.Printf("Successfully translated %s to %s\n", inputFile, outputFile)
		}
		fmt.Printf("Paragraphs: %d total, %d translated, %d from memory, %d skipped\n",
			result.Units, result.Translated, result.FromMemory, result.Skipped)
		fmt.Printf("Batches sent: %d\n", result.Batches)
		if result.Fallback > 0 {
			fmt.Printf("Kept original text in %d paragraphs (translation failed after retries)\n", result.Fallback)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input .docx file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .docx file (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory and run history")

	retryDefaults := translator.DefaultRetryPolicy()
	translateCmd.Flags().String("service", "libretranslate", "Translation service (libretranslate, google, systran)")
	translateCmd.Flags().String("base-url", translator.DefaultLibreTranslateURL, "LibreTranslate base URL")
	translateCmd.Flags().String("api-key", "", "API key for the translation service")
	translateCmd.Flags().StringP("credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().Duration("timeout", translator.DefaultRequestTimeout, "Per-request timeout")
	translateCmd.Flags().Int("max-retries", retryDefaults.MaxAttempts, "Total attempts per batch including the first (1 = no retries)")
	translateCmd.Flags().Duration("backoff", retryDefaults.Backoff, "Base retry delay, grows linearly with the attempt number")
	translateCmd.Flags().Int("max-batch-chars", batcher.DefaultMaxChars, "Character budget per request batch")
	translateCmd.Flags().Int("max-batch-items", batcher.DefaultMaxItems, "Paragraph budget per request batch")
	translateCmd.Flags().String("db", "./data/translator-program.db", "Database path for translation memory and run history")

	viper.BindPFlag("service.name", translateCmd.Flags().Lookup("service"))
	viper.BindPFlag("service.base_url", translateCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("service.api_key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("service.credentials", translateCmd.Flags().Lookup("credentials"))
	viper.BindPFlag("service.timeout", translateCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("retry.max_attempts", translateCmd.Flags().Lookup("max-retries"))
	viper.BindPFlag("retry.backoff", translateCmd.Flags().Lookup("backoff"))
	viper.BindPFlag("batch.max_chars", translateCmd.Flags().Lookup("max-batch-chars"))
	viper.BindPFlag("batch.max_items", translateCmd.Flags().Lookup("max-batch-items"))
	viper.BindPFlag("db.path", translateCmd.Flags().Lookup("db"))

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("target")
}
