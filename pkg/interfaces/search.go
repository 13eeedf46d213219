package interfaces

import "context"

// Embedder converts texts into vectors used for semantic ranking.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
