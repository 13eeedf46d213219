package interfaces

import "context"

// TranslationRequest is a batch of keyed source strings to translate.
type TranslationRequest struct {
	Texts          map[string]string `json:"texts"`
	TargetLanguage string            `json:"targetLanguage"`
	SourceLanguage string            `json:"sourceLanguage,omitempty"`
	// Hints carries glossary guidance keyed by source term.
	Hints map[string]string `json:"hints,omitempty"`
}

// TranslationResponse returns translated strings under the request keys.
type TranslationResponse struct {
	TranslatedTexts map[string]string `json:"translatedTexts"`
}

// Translator is an opaque string-to-string batch translator. Callers only rely
// on receiving the same keys back.
type Translator interface {
	Translate(ctx context.Context, req TranslationRequest) (TranslationResponse, error)
}
