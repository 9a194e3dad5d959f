// Package schema publishes JSON Schemas for the persisted record format,
// reflected from the record types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/suykerbuyk/padroles/internal/record"
)

// Document names a schema the package can produce.
type Document string

const (
	// RecordDoc describes a whole conversation record. Unknown members are
	// allowed since they are preserved on every write.
	RecordDoc Document = "record"
	// ClassificationDoc is the strict contract a classification producer
	// must meet: only the known dimensions, nothing else.
	ClassificationDoc Document = "classification"
)

// Documents lists the available schemas.
var Documents = []Document{RecordDoc, ClassificationDoc}

// Generate returns the indented JSON Schema for doc.
func Generate(doc Document) ([]byte, error) {
	var s *jsonschema.Schema
	switch doc {
	case RecordDoc:
		s = reflect(&record.Record{}, true)
		s.Title = "padroles conversation record"
	case ClassificationDoc:
		s = reflect(&record.Classification{}, false)
		s.Title = "padroles classification"
	default:
		return nil, fmt.Errorf("unknown schema %q (want record or classification)", doc)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(b, '\n'), nil
}

func reflect(v any, open bool) *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  open,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return r.Reflect(v)
}
