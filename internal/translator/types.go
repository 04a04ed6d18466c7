package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// BatchRequest carries one batch of source strings. Order is significant:
// the translated result must line up index by index with Texts.
type BatchRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

// TranslationService translates one batch per call. Implementations must
// return exactly len(req.Texts) strings with output[i] translating
// Texts[i], or an error; a short, long, or reordered response is a
// contract violation and must be reported as an error.
type TranslationService interface {
	Name() string
	TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}
