package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth bounds selection nesting. The schema itself is at most
// three levels deep.
const DefaultMaxDepth = 5

// calculateQueryDepth calculates the maximum depth of a GraphQL query
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if def, ok := definition.(*ast.OperationDefinition); ok {
			maxDepth = max(maxDepth, selectionSetDepth(def.SelectionSet, 1, fragments, map[string]bool{}))
		}
	}
	return maxDepth
}

// selectionSetDepth walks nested selections. Fragment spreads are expanded
// once per path so cyclic fragments terminate.
func selectionSetDepth(set *ast.SelectionSet, depth int, fragments map[string]*ast.FragmentDefinition, seen map[string]bool) int {
	if set == nil || len(set.Selections) == 0 {
		return depth
	}

	deepest := depth
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") || sel.SelectionSet == nil {
				continue
			}
			deepest = max(deepest, selectionSetDepth(sel.SelectionSet, depth+1, fragments, seen))

		case *ast.InlineFragment:
			deepest = max(deepest, selectionSetDepth(sel.SelectionSet, depth, fragments, seen))

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			deepest = max(deepest, selectionSetDepth(frag.SelectionSet, depth, fragments, seen))
			delete(seen, name)
		}
	}
	return deepest
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}
