package rag

import (
	"context"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/pkg/log"
)

// Store is the knowledge-base vector store backed by an embedded chromem
// database persisted on disk. It satisfies core.Retriever.
type Store struct {
	db         *chromem.DB
	embedder   core.Embedder
	collection string
	topK       int
}

func NewStore(path string, cfg *config.RetrieverConfig, embedder core.Embedder) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	s := &Store{
		db:         db,
		embedder:   embedder,
		collection: cfg.Collection,
		topK:       cfg.TopK,
	}

	if _, err := db.GetOrCreateCollection(cfg.Collection, nil, s.embeddingFunc()); err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", cfg.Collection, err)
	}

	return s, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

// Retrieve returns the topK most relevant passages, most relevant first.
// An empty collection yields an empty slice, not an error.
func (s *Store) Retrieve(ctx context.Context, query string) ([]core.Passage, error) {
	collection := s.db.GetCollection(s.collection, s.embeddingFunc())
	if collection == nil {
		return nil, fmt.Errorf("collection %s not found", s.collection)
	}

	// chromem requires k <= document count
	k := s.topK
	if count := collection.Count(); count < k {
		k = count
	}
	if k == 0 {
		return []core.Passage{}, nil
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", s.collection, err)
	}

	passages := make([]core.Passage, 0, len(results))
	for _, r := range results {
		passages = append(passages, core.Passage{
			ID:      r.ID,
			Content: r.Content,
			Score:   r.Similarity,
		})
	}
	return passages, nil
}

// IngestText chunks a document and adds the chunks to the collection.
// Chunk IDs are derived from sourceID so re-ingesting a document replaces
// its previous chunks.
func (s *Store) IngestText(ctx context.Context, sourceID, text string) (int, error) {
	chunks := ChunkText(text, DefaultChunkerConfig())
	if len(chunks) == 0 {
		return 0, nil
	}

	collection, err := s.db.GetOrCreateCollection(s.collection, nil, s.embeddingFunc())
	if err != nil {
		return 0, fmt.Errorf("failed to open collection %s: %w", s.collection, err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d of %s: %w", chunk.Index, sourceID, err)
		}
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%s#%d", sourceID, chunk.Index),
			Content:   chunk.Text,
			Metadata:  map[string]string{"source": sourceID},
			Embedding: embedding,
		})
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("failed to add documents: %w", err)
	}

	log.FromCtx(ctx).Info().Str("source", sourceID).Int("chunks", len(docs)).Msg("ingested document")
	return len(docs), nil
}
