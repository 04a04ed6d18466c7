package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systranDefaultURL = "https://api-systran-systran-translation-v1.p.rapidapi.com"

// SystranService translates batches through the Systran API on RapidAPI.
// The endpoint accepts a list of inputs per call and returns one output
// per input.
type SystranService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSystranService(apiKey string, timeout time.Duration) *SystranService {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &SystranService{
		apiKey:  apiKey,
		baseURL: systranDefaultURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("Systran API key required")
	}

	payload := map[string]interface{}{
		"text":   req.Texts,
		"source": req.SourceLang,
		"target": req.TargetLang,
		"format": "text",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/translation/text/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", s.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", strings.TrimPrefix(systranDefaultURL, "https://"))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&systranResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(systranResp.Outputs) != len(req.Texts) {
		return nil, fmt.Errorf("expected %d translations, got %d", len(req.Texts), len(systranResp.Outputs))
	}

	out := make([]string, len(systranResp.Outputs))
	for i, o := range systranResp.Outputs {
		out[i] = o.Output
	}
	return out, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}

func (s *SystranService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "fr", "es", "de", "it", "pt", "ru", "zh", "ja", "ko", "ar"}, nil
}
