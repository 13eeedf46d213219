package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	// maxEmbedBatch is the largest number of contents sent per request.
	maxEmbedBatch = 100
)

var ErrAPIKeyRequired = errors.New("search: genai api key is required")

// ContentEmbedder is the subset of *genai.Models used for embeddings.
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GenAIEmbedder generates embeddings with a Gemini embedding model.
type GenAIEmbedder struct {
	models   ContentEmbedder
	model    string
	taskType string
}

var _ interfaces.Embedder = (*GenAIEmbedder)(nil)

// NewGenAIEmbedder dials the Gemini API.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("search: create genai client: %w", err)
	}
	return NewGenAIEmbedderWithModels(client.Models, model), nil
}

func NewGenAIEmbedderWithModels(models ContentEmbedder, model string) *GenAIEmbedder {
	if strings.TrimSpace(model) == "" {
		model = defaultEmbeddingModel
	}
	return &GenAIEmbedder{models: models, model: model, taskType: "SEMANTIC_SIMILARITY"}
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("search: no embeddings returned")
	}
	return vectors[0], nil
}

func (e *GenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := start + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}
		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
		result, err := e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: e.taskType})
		if err != nil {
			return nil, fmt.Errorf("search: genai embed: %w", err)
		}
		if len(result.Embeddings) != len(contents) {
			return nil, fmt.Errorf("search: genai returned %d embeddings for %d texts", len(result.Embeddings), len(contents))
		}
		for _, embedding := range result.Embeddings {
			out = append(out, embedding.Values)
		}
	}
	return out, nil
}
