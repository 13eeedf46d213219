package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

const defaultModel = "gemini-2.5-flash"

var ErrAPIKeyRequired = errors.New("translation: genai api key is required")

// ContentGenerator is the subset of *genai.Models used by the translator.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAITranslator translates keyed texts with a Gemini model that answers
// in JSON.
type GenAITranslator struct {
	models ContentGenerator
	model  string
	logger interfaces.Logger
}

var _ interfaces.Translator = (*GenAITranslator)(nil)

// NewGenAITranslator dials the Gemini API.
func NewGenAITranslator(ctx context.Context, apiKey, model string, logger interfaces.Logger) (*GenAITranslator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("translation: create genai client: %w", err)
	}
	return NewGenAITranslatorWithGenerator(client.Models, model, logger), nil
}

// NewGenAITranslatorWithGenerator builds a translator over an existing
// generator.
func NewGenAITranslatorWithGenerator(models ContentGenerator, model string, logger interfaces.Logger) *GenAITranslator {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &GenAITranslator{models: models, model: model, logger: logger}
}

func (t *GenAITranslator) Translate(ctx context.Context, req interfaces.TranslationRequest) (interfaces.TranslationResponse, error) {
	if len(req.Texts) == 0 {
		return interfaces.TranslationResponse{TranslatedTexts: map[string]string{}}, nil
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return interfaces.TranslationResponse{}, err
	}

	var temperature float32 = 0.2
	resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		t.logger.WithContext(ctx).Error("translation.genai.failed", "model", t.model, "error", err)
		return interfaces.TranslationResponse{}, apperrors.Integration("TRANSLATION_FAILED", err, "translation: genai generate")
	}

	translated, err := parseReply(resp.Text())
	if err != nil {
		t.logger.WithContext(ctx).Warn("translation.genai.reply_invalid", "model", t.model, "error", err)
		return interfaces.TranslationResponse{}, apperrors.Integration("TRANSLATION_REPLY_INVALID", err, "translation: decode reply")
	}
	return interfaces.TranslationResponse{TranslatedTexts: translated}, nil
}

func buildPrompt(req interfaces.TranslationRequest) (string, error) {
	texts, err := json.Marshal(req.Texts)
	if err != nil {
		return "", fmt.Errorf("translation: encode texts: %w", err)
	}
	source := req.SourceLanguage
	if source == "" {
		source = "en"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate the values of the JSON object below from %s to %s.\n", source, req.TargetLanguage)
	b.WriteString("The content is marketing copy for image quality testing equipment.\n")
	b.WriteString("Return only a JSON object with exactly the same keys. Keep HTML tags, placeholders and URLs unchanged.\n")
	if len(req.Hints) > 0 {
		b.WriteString("Glossary, source term => required rendering:\n")
		terms := make([]string, 0, len(req.Hints))
		for term := range req.Hints {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(&b, "- %s => %s\n", term, req.Hints[term])
		}
	}
	b.WriteString("\n")
	b.Write(texts)
	return b.String(), nil
}

func parseReply(text string) (map[string]string, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return nil, errors.New("empty reply")
	}

	var envelope struct {
		TranslatedTexts map[string]string `json:"translatedTexts"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil && len(envelope.TranslatedTexts) > 0 {
		return envelope.TranslatedTexts, nil
	}
	var flat map[string]string
	if err := json.Unmarshal([]byte(trimmed), &flat); err != nil {
		return nil, err
	}
	return flat, nil
}
