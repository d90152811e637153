package graph

import (
	"blueprints/internal/engine/blueprint"
)

// InferredEdge is a dependency edge derived from blueprint prose rather
// than an explicit reference declaration.
type InferredEdge struct {
	From string
	To   string
}

// SemanticAnalyzer augments the explicit reference graph with inferred
// edges before the ordering pass. Implementations are optional; an error
// degrades resolution to explicit references only.
type SemanticAnalyzer interface {
	InferEdges(blueprints []*blueprint.Blueprint) ([]InferredEdge, error)
}
