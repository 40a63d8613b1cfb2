package vector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemConfig configures the embedded chromem provider.
//
// Chromem stores vectors in memory with optional gzip-compressed file
// persistence. It is single-process and memory-bound; use the http provider
// against a dedicated service for anything beyond local deployments.
type ChromemConfig struct {
	// Collection name. Defaults to "documents".
	Collection string

	// PersistPath enables file persistence when non-empty. The directory
	// is created if it does not exist.
	PersistPath string

	// Compress enables gzip compression for persistence.
	Compress bool
}

// ChromemProvider implements Provider using chromem-go for embedded vector
// storage.
type ChromemProvider struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
}

// NewChromemProvider creates an embedded vector provider. The embedding
// function is used both to index documents and to embed query text; pass
// chromem.NewEmbeddingFuncDefault() for the stock OpenAI-backed function.
func NewChromemProvider(cfg ChromemConfig, embed chromem.EmbeddingFunc) (*ChromemProvider, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is required for the chromem provider")
	}

	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = "documents"
	}

	var db *chromem.DB
	var err error

	if cfg.PersistPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.PersistPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create persist directory: %w", err)
		}

		db, err = chromem.NewPersistentDB(cfg.PersistPath, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open persistent vector database: %w", err)
		}
		slog.Info("opened persistent vector database", "path", cfg.PersistPath)
	} else {
		db = chromem.NewDB()
		slog.Debug("created in-memory vector database")
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collectionName, err)
	}

	return &ChromemProvider{
		db:         db,
		collection: collection,
	}, nil
}

// Add indexes one document. Used to seed the embedded store in local mode;
// the fetch pipeline itself never writes.
func (p *ChromemProvider) Add(ctx context.Context, id, content string, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	if content == "" {
		return fmt.Errorf("document content cannot be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collection.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	})
}

func (p *ChromemProvider) Query(ctx context.Context, text string, topK int, _ string) ([]Match, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := p.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem rejects nResults larger than the collection size.
	if topK <= 0 || topK > count {
		topK = count
	}

	results, err := p.collection.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedded vector query failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		var metadata map[string]any
		if len(r.Metadata) > 0 {
			metadata = make(map[string]any, len(r.Metadata))
			for k, v := range r.Metadata {
				metadata[k] = v
			}
		}
		matches = append(matches, Match{
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: metadata,
		})
	}

	return matches, nil
}

func (p *ChromemProvider) Close() error {
	return nil
}
