package verify

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// checkSyntax parses the source with the grammar registered for the
// target language and reports the first error or missing node.
func (v *Verifier) checkSyntax(_ context.Context, source string, bp *blueprint.Blueprint, _ *graph.ResolvedProject) Result {
	if v.lang == nil {
		return Result{
			Success:  true,
			Kind:     KindSyntax,
			Warnings: []string{fmt.Sprintf("no grammar registered for language %q, syntax check skipped", v.opts.Language)},
		}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(v.lang.grammar())

	tree := parser.Parse([]byte(source), nil)
	if tree == nil {
		return Result{Kind: KindSyntax, Message: "source could not be parsed"}
	}
	defer tree.Close()

	if node := firstErrorNode(tree.RootNode()); node != nil {
		line := int(node.StartPosition().Row) + 1
		message := "syntax error"
		if node.IsMissing() {
			message = fmt.Sprintf("missing %s", node.Kind())
		}
		return Result{
			Kind:    KindSyntax,
			Message: fmt.Sprintf("%s at line %d", message, line),
			Line:    line,
		}
	}

	return Result{Success: true, Kind: KindSyntax}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
