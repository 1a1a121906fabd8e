package vector

import (
	"context"
	"strings"
	"unicode"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// ClassName maps a resolved collection id to a valid Weaviate class
// name. Class names must match ^[A-Z][_0-9A-Za-z]*$, so the first rune
// is upper-cased and anything outside the allowed set becomes '_'.
func ClassName(collection string) string {
	var b strings.Builder
	for i, r := range collection {
		valid := r == '_' || (r < 128 && (unicode.IsDigit(r) || unicode.IsLetter(r)))
		if !valid {
			b.WriteRune('_')
			continue
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	name := b.String()
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		name = "C" + name
	}
	return name
}

func documentProperties() []*models.Property {
	return []*models.Property{
		{
			Name:     "docId",
			DataType: []string{"string"}, // exact match for idempotent re-ingestion
		},
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "metadata",
			DataType: []string{"text"}, // JSON-serialized document metadata
		},
	}
}

// EnsureCollection checks that the class backing a collection exists and
// creates it if not. Collections are derived per request, so this runs
// lazily at ingestion time rather than at bootstrap. A concurrent create
// by a sibling chunk is tolerated.
func EnsureCollection(ctx context.Context, client SchemaClient, collection string) error {
	className := ClassName(collection)

	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "Documents ingested into collection " + collection,
			Vectorizer:  "none",
			Properties:  documentProperties(),
		}
		if err := client.CreateClass(ctx, class); err != nil {
			// A sibling chunk may have created the class between the
			// existence check and the create.
			if strings.Contains(err.Error(), "already exists") {
				return nil
			}
			return err
		}
		return nil
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, className)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range documentProperties() {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, className, p); err != nil {
				return err
			}
		}
	}

	return nil
}
