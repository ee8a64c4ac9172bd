// Package graphql exposes the live workspace over a read-mostly GraphQL
// schema: nodes, edges, statistics and the current selection, plus click
// and closeMenu mutations.
package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

// Workspace is the part of *workspace.Workspace the schema needs.
type Workspace interface {
	Snapshot(ctx context.Context) (workspace.Snapshot, error)
	Click(ctx context.Context, ev interaction.ClickEvent) (interaction.Outcome, workspace.Snapshot, error)
	CloseMenu(ctx context.Context) (workspace.Snapshot, error)
}

// GenerateSchema builds the schema over ws.
func GenerateSchema(ws Workspace) (graphql.Schema, error) {
	r := &resolver{ws: ws}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"version": &graphql.Field{
				Type:    graphql.Int,
				Resolve: r.version,
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.node,
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"malicious": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.nodes,
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(edgeType),
				Args: graphql.FieldConfigArgument{
					"nodeId": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: r.edges,
			},
			"stats": &graphql.Field{
				Type:    statsType,
				Resolve: r.stats,
			},
			"selection": &graphql.Field{
				Type:    selectionType,
				Resolve: r.selection,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"click": &graphql.Field{
				Type: selectionType,
				Args: graphql.FieldConfigArgument{
					"nodes": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
				},
				Resolve: r.click,
			},
			"closeMenu": &graphql.Field{
				Type:    selectionType,
				Resolve: r.closeMenu,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
