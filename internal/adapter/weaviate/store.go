package weaviate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"hivemind/apps/ingestor/internal/pipeline"
	"hivemind/apps/ingestor/internal/vector"
)

type Store struct {
	client *weaviate.Client
	schema *vector.WeaviateClientAdapter
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{
		client: client,
		schema: vector.NewWeaviateClientAdapter(client),
	}
}

func (s *Store) EnsureCollection(ctx context.Context, collection string) error {
	return vector.EnsureCollection(ctx, s.schema, collection)
}

// StoreDocuments batch-writes embedded documents into the collection's
// class. Object ids are derived from the collection and docId, so
// re-ingesting the same document overwrites instead of duplicating.
func (s *Store) StoreDocuments(ctx context.Context, collection string, objects []pipeline.Object) error {
	className := vector.ClassName(collection)

	batcher := s.client.Batch().ObjectsBatcher()
	for _, obj := range objects {
		metadata, err := json.Marshal(obj.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", obj.DocID, err)
		}

		batcher = batcher.WithObjects(&models.Object{
			Class: className,
			ID:    objectID(collection, obj.DocID),
			Properties: map[string]interface{}{
				"docId":    obj.DocID,
				"content":  obj.Text,
				"metadata": string(metadata),
			},
			Vector: obj.Vector,
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return err
	}

	// The batch endpoint reports per-object failures in the response
	// rather than the transport error.
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("object %s: %s", r.ID, r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// objectID is a stable UUID per (collection, docId) pair.
func objectID(collection, docID string) strfmt.UUID {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+docID))
	return strfmt.UUID(id.String())
}
