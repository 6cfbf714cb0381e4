package core

import "context"

// CompletionProvider generates a free-text completion for a fully built prompt.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever returns the most relevant knowledge-base passages for a query,
// most relevant first, bounded to the store's configured top-K.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Passage, error)
}

// Embedder maps text to a vector in the knowledge-base embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
