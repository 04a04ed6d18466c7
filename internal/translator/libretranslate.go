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

const (
	// DefaultLibreTranslateURL is the self-hosted LibreTranslate default.
	DefaultLibreTranslateURL = "http://localhost:5000"
	// DefaultRequestTimeout bounds one remote call, including retries'
	// individual attempts.
	DefaultRequestTimeout = 180 * time.Second
)

// LibreTranslateService talks to a LibreTranslate-compatible endpoint.
// One TranslateBatch call issues exactly one POST to /translate carrying
// the whole batch in the "q" field.
type LibreTranslateService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLibreTranslateService(baseURL, apiKey string, timeout time.Duration) *LibreTranslateService {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &LibreTranslateService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *LibreTranslateService) Name() string {
	return "libretranslate"
}

func (s *LibreTranslateService) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	source := req.SourceLang
	if source == "" {
		source = "auto"
	}

	payload := map[string]interface{}{
		"q":      req.Texts,
		"source": source,
		"target": req.TargetLang,
		"format": "text",
	}
	if s.apiKey != "" {
		payload["api_key"] = s.apiKey
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ltResp struct {
		TranslatedText json.RawMessage `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(ltResp.TranslatedText) == 0 {
		return nil, fmt.Errorf("empty translation response")
	}

	// translatedText is a list for a batch request, but a lone string
	// when exactly one input was sent.
	var list []string
	if err := json.Unmarshal(ltResp.TranslatedText, &list); err == nil {
		if len(list) != len(req.Texts) {
			return nil, fmt.Errorf("expected %d translations, got %d", len(req.Texts), len(list))
		}
		return list, nil
	}

	var single string
	if err := json.Unmarshal(ltResp.TranslatedText, &single); err == nil {
		if len(req.Texts) != 1 {
			return nil, fmt.Errorf("expected %d translations, got a single string", len(req.Texts))
		}
		return []string{single}, nil
	}

	return nil, fmt.Errorf("unexpected translatedText shape: %s", string(ltResp.TranslatedText))
}

func (s *LibreTranslateService) IsAvailable(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/languages", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *LibreTranslateService) SupportedLanguages(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var languages []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Code
	}
	return codes, nil
}
