package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"hivemind/apps/ingestor/internal/ingest"
)

// Object is one embedded document ready to be written to the vector store.
type Object struct {
	DocID    string
	Text     string
	Vector   []float32
	Metadata map[string]any
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string) error
	StoreDocuments(ctx context.Context, collection string, objects []Object) error
}

// Pipeline embeds documents and writes them into a collection. It is the
// ingestion operation the orchestrator drives, one chunk per call.
type Pipeline struct {
	embedder Embedder
	store    VectorStore
}

func New(embedder Embedder, store VectorStore) *Pipeline {
	return &Pipeline{embedder: embedder, store: store}
}

// IngestDocuments embeds every document in the chunk and batch-writes
// the results to collection. Documents with empty text are rejected as
// permanent failures before any side effect; embedding and storage
// errors are left retryable.
func (p *Pipeline) IngestDocuments(ctx context.Context, docs []ingest.Document, collection string) error {
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			return ingest.Permanent(fmt.Errorf("document %s: empty text", doc.ID))
		}
	}

	if err := p.store.EnsureCollection(ctx, collection); err != nil {
		return fmt.Errorf("ensure collection %s: %w", collection, err)
	}

	objects := make([]Object, 0, len(docs))
	for _, doc := range docs {
		vector, err := p.embedder.Embed(ctx, EmbedText(doc))
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		objects = append(objects, Object{
			DocID:    doc.ID,
			Text:     doc.Text,
			Vector:   vector,
			Metadata: indexMetadata(doc),
		})
	}

	if err := p.store.StoreDocuments(ctx, collection, objects); err != nil {
		return fmt.Errorf("store documents in %s: %w", collection, err)
	}

	slog.DebugContext(ctx, "chunk written", "collection", collection, "documents", len(objects))
	return nil
}

// EmbedText builds the string handed to the embedder: metadata lines in
// key order (minus the document's excluded embed keys), a separator,
// then the raw text.
func EmbedText(doc ingest.Document) string {
	excluded := make(map[string]bool, len(doc.ExcludedEmbedKeys))
	for _, k := range doc.ExcludedEmbedKeys {
		excluded[k] = true
	}

	keys := make([]string, 0, len(doc.Metadata))
	for k := range doc.Metadata {
		if !excluded[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, doc.Metadata[k])
	}
	if b.Len() > 0 {
		b.WriteString("---\n")
	}
	b.WriteString(doc.Text)
	return b.String()
}

// indexMetadata copies the document metadata without the keys excluded
// from indexing.
func indexMetadata(doc ingest.Document) map[string]any {
	excluded := make(map[string]bool, len(doc.ExcludedIndexKeys))
	for _, k := range doc.ExcludedIndexKeys {
		excluded[k] = true
	}

	out := make(map[string]any, len(doc.Metadata))
	for k, v := range doc.Metadata {
		if !excluded[k] {
			out[k] = v
		}
	}
	return out
}
