package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

// nodeView joins the rendered node with its detail record.
type nodeView struct {
	viz    visualization.NodeViz
	detail records.Detail
	node   graph.Node
}

var attributeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Attribute",
	Fields: graphql.Fields{
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(records.Attribute).Name, nil
			},
		},
		"value": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(records.Attribute).Value, nil
			},
		},
	},
})

// nodeField builds a field resolved from a nodeView.
func nodeField(t graphql.Output, fn func(nodeView) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if n, ok := p.Source.(nodeView); ok {
				return fn(n), nil
			}
			return nil, nil
		},
	}
}

var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id":              nodeField(graphql.NewNonNull(graphql.ID), func(n nodeView) any { return n.viz.ID }),
		"label":           nodeField(graphql.String, func(n nodeView) any { return n.viz.Label }),
		"title":           nodeField(graphql.String, func(n nodeView) any { return n.viz.Title }),
		"image":           nodeField(graphql.String, func(n nodeView) any { return n.viz.Image }),
		"size":            nodeField(graphql.Int, func(n nodeView) any { return n.viz.Size }),
		"borderWidth":     nodeField(graphql.Int, func(n nodeView) any { return n.viz.BorderWidth }),
		"borderColor":     nodeField(graphql.String, func(n nodeView) any { return n.viz.Color.Border }),
		"backgroundColor": nodeField(graphql.String, func(n nodeView) any { return n.viz.Color.Background }),
		"x":               nodeField(graphql.Float, func(n nodeView) any { return n.viz.X }),
		"y":               nodeField(graphql.Float, func(n nodeView) any { return n.viz.Y }),
		"central":         nodeField(graphql.Boolean, func(n nodeView) any { return n.node.Central }),
		"malicious":       nodeField(graphql.Boolean, func(n nodeView) any { return n.node.Malicious }),
		"details": nodeField(graphql.NewList(attributeType), func(n nodeView) any {
			if n.detail == nil {
				return []records.Attribute{}
			}
			return n.detail.Attributes()
		}),
	},
})

func edgeField(t graphql.Output, fn func(visualization.EdgeViz) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if e, ok := p.Source.(visualization.EdgeViz); ok {
				return fn(e), nil
			}
			return nil, nil
		},
	}
}

var edgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Edge",
	Fields: graphql.Fields{
		"id":     edgeField(graphql.NewNonNull(graphql.ID), func(e visualization.EdgeViz) any { return e.ID }),
		"from":   edgeField(graphql.String, func(e visualization.EdgeViz) any { return e.From }),
		"to":     edgeField(graphql.String, func(e visualization.EdgeViz) any { return e.To }),
		"width":  edgeField(graphql.Float, func(e visualization.EdgeViz) any { return e.Width }),
		"color":  edgeField(graphql.String, func(e visualization.EdgeViz) any { return e.Color.Color }),
		"arrows": edgeField(graphql.String, func(e visualization.EdgeViz) any { return e.Arrows }),
		"roundness": edgeField(graphql.Float, func(e visualization.EdgeViz) any {
			if e.Smooth == nil {
				return nil
			}
			return e.Smooth.Roundness
		}),
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Stats",
	Fields: graphql.Fields{
		"nodes":          statsField(graphql.Int, func(s graph.Stats) any { return s.Nodes }),
		"edges":          statsField(graphql.Int, func(s graph.Stats) any { return s.Edges }),
		"peers":          statsField(graphql.Int, func(s graph.Stats) any { return s.Peers }),
		"maliciousPeers": statsField(graphql.Int, func(s graph.Stats) any { return s.MaliciousPeers }),
		"externalPeers":  statsField(graphql.Int, func(s graph.Stats) any { return s.ExternalPeers }),
		"totalBytes":     statsField(graphql.Float, func(s graph.Stats) any { return s.TotalBytes }),
	},
})

func statsField(t graphql.Output, fn func(graph.Stats) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if s, ok := p.Source.(graph.Stats); ok {
				return fn(s), nil
			}
			return nil, nil
		},
	}
}

var menuItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MenuItem",
	Fields: graphql.Fields{
		"action": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(menu.Item).Action), nil
			},
		},
		"title": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(menu.Item).Title, nil
			},
		},
	},
})

// selectionView is the resolver source for the Selection type.
type selectionView struct {
	state    interaction.SelectionState
	menu     *menu.Menu
	selected []string
	text     string
	outcome  string
}

func selectionField(t graphql.Output, fn func(selectionView) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if s, ok := p.Source.(selectionView); ok {
				return fn(s), nil
			}
			return nil, nil
		},
	}
}

var selectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Selection",
	Fields: graphql.Fields{
		"nodeId":        selectionField(graphql.String, func(s selectionView) any { return s.state.SelectedNodeID }),
		"label":         selectionField(graphql.String, func(s selectionView) any { return s.state.SelectedLabel }),
		"menuOpen":      selectionField(graphql.Boolean, func(s selectionView) any { return s.state.MenuOpen }),
		"selectedNodes": selectionField(graphql.NewList(graphql.String), func(s selectionView) any { return s.selected }),
		"selectedText":  selectionField(graphql.String, func(s selectionView) any { return s.text }),
		"outcome":       selectionField(graphql.String, func(s selectionView) any { return s.outcome }),
		"anchorX": selectionField(graphql.Float, func(s selectionView) any {
			if s.menu == nil {
				return nil
			}
			return s.menu.Anchor.X
		}),
		"anchorY": selectionField(graphql.Float, func(s selectionView) any {
			if s.menu == nil {
				return nil
			}
			return s.menu.Anchor.Y
		}),
		"menuItems": selectionField(graphql.NewList(menuItemType), func(s selectionView) any {
			if s.menu == nil {
				return []menu.Item{}
			}
			return s.menu.Items
		}),
	},
})
