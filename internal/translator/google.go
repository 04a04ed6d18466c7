package translator

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService translates batches through the Google Cloud Translation
// v2 API, which accepts a list of inputs per call.
type GoogleService struct {
	credentials string
}

func NewGoogleService(credentials string) *GoogleService {
	return &GoogleService{credentials: credentials}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) newClient(ctx context.Context) (*translate.Client, error) {
	opts := []option.ClientOption{}
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}
	return translate.NewClient(ctx, opts...)
}

func (s *GoogleService) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, fmt.Errorf("invalid target language: %w", err)
	}

	client, err := s.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	opts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		sourceTag, err := language.Parse(req.SourceLang)
		if err != nil {
			return nil, fmt.Errorf("invalid source language: %w", err)
		}
		opts.Source = sourceTag
	}

	translations, err := client.Translate(ctx, req.Texts, targetTag, opts)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) != len(req.Texts) {
		return nil, fmt.Errorf("expected %d translations, got %d", len(req.Texts), len(translations))
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = tr.Text
	}
	return out, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	languages, err := client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}

	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Tag.String()
	}
	return codes, nil
}
