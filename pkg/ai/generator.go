package ai

import "context"

// StructuredGenerator produces a JSON object that conforms to schema. schema
// is a JSON Schema document; implementations translate it to whatever their
// provider accepts.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}
