package graphql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

type resolver struct {
	ws Workspace
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

func (r *resolver) snapshot(p graphql.ResolveParams) (workspace.Snapshot, error) {
	return r.ws.Snapshot(contextOf(p))
}

func (r *resolver) version(p graphql.ResolveParams) (any, error) {
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}
	return int(snap.Version), nil
}

func viewsOf(snap workspace.Snapshot) []nodeView {
	g := snap.Graph()
	views := make([]nodeView, 0, len(snap.Payload.Nodes))
	for _, viz := range snap.Payload.Nodes {
		n, _ := g.Node(viz.ID)
		views = append(views, nodeView{viz: viz, node: n, detail: n.Detail})
	}
	return views
}

func (r *resolver) node(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}
	for _, v := range viewsOf(snap) {
		if v.viz.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (r *resolver) nodes(p graphql.ResolveParams) (any, error) {
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}

	views := viewsOf(snap)
	if malicious, ok := p.Args["malicious"].(bool); ok {
		filtered := views[:0]
		for _, v := range views {
			if v.node.Malicious == malicious {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}
	if limit, ok := p.Args["limit"].(int); ok && limit >= 0 && limit < len(views) {
		views = views[:limit]
	}
	return views, nil
}

func (r *resolver) edges(p graphql.ResolveParams) (any, error) {
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}

	nodeID, ok := p.Args["nodeId"].(string)
	if !ok {
		return snap.Payload.Edges, nil
	}
	out := snap.Payload.Edges[:0:0]
	for _, e := range snap.Payload.Edges {
		if e.From == nodeID || e.To == nodeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *resolver) stats(p graphql.ResolveParams) (any, error) {
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}
	return snap.Payload.Stats, nil
}

func selectionOf(snap workspace.Snapshot, outcome string) selectionView {
	return selectionView{
		state:    snap.Selection,
		menu:     snap.Menu,
		selected: snap.SelectedNodes,
		text:     snap.SelectedText,
		outcome:  outcome,
	}
}

func (r *resolver) selection(p graphql.ResolveParams) (any, error) {
	snap, err := r.snapshot(p)
	if err != nil {
		return nil, err
	}
	return selectionOf(snap, ""), nil
}

func (r *resolver) click(p graphql.ResolveParams) (any, error) {
	var ev interaction.ClickEvent
	if raw, ok := p.Args["nodes"].([]any); ok {
		for _, v := range raw {
			if id, ok := v.(string); ok {
				ev.Nodes = append(ev.Nodes, id)
			}
		}
	}

	outcome, snap, err := r.ws.Click(contextOf(p), ev)
	if err != nil {
		return nil, err
	}
	return selectionOf(snap, outcome.String()), nil
}

func (r *resolver) closeMenu(p graphql.ResolveParams) (any, error) {
	snap, err := r.ws.CloseMenu(contextOf(p))
	if err != nil {
		return nil, err
	}
	return selectionOf(snap, ""), nil
}
