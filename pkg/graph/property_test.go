package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

func genDirection() gopter.Gen {
	return gen.OneConstOf(records.DirectionToClient, records.DirectionToHost, records.DirectionBoth)
}

func genRecord() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("10.0.0.1", "10.0.0.2", "example.com", "db.internal"),
		genDirection(),
		gen.Float64Range(0, 2e8),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []interface{}) records.ConnectionRecord {
		scope := records.ScopeInternal
		if v[4].(bool) {
			scope = records.ScopeExternal
		}
		return records.ConnectionRecord{
			PeerHost:    v[0].(string),
			Direction:   v[1].(records.Direction),
			ByteCount:   v[2].(float64),
			IsMalicious: v[3].(bool),
			Scope:       scope,
		}
	})
}

// TestBuildInvariants checks the structural rules every build must satisfy.
func TestBuildInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("one peer node per record plus the central node", prop.ForAll(
		func(rows []records.ConnectionRecord) bool {
			g := Build(rows, records.HostSummary{})
			return len(g.Nodes()) == len(rows)+1 && g.HasCentral()
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("edge count follows direction", prop.ForAll(
		func(rows []records.ConnectionRecord) bool {
			g := Build(rows, records.HostSummary{})
			nodes := g.Nodes()
			for i, rec := range rows {
				edges := g.ConnectedEdges(nodes[i].ID)
				switch rec.Direction {
				case records.DirectionBoth:
					if len(edges) != 2 || edges[0].From != edges[1].To || edges[0].To != edges[1].From {
						return false
					}
				case records.DirectionToClient:
					if len(edges) != 1 || edges[0].From != CentralID {
						return false
					}
				case records.DirectionToHost:
					if len(edges) != 1 || edges[0].To != CentralID {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("malicious records are red, benign graphs are green", prop.ForAll(
		func(rows []records.ConnectionRecord) bool {
			g := Build(rows, records.HostSummary{})
			nodes := g.Nodes()
			anyMalicious := false
			for i, rec := range rows {
				edges := g.ConnectedEdges(nodes[i].ID)
				if rec.IsMalicious {
					anyMalicious = true
					if nodes[i].Color.Border != style.Red {
						return false
					}
					for _, e := range edges {
						if e.Color != style.Red {
							return false
						}
					}
				}
			}
			if !anyMalicious {
				for _, e := range g.Edges() {
					if e.Color != style.Green {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("every peer id is unique and registered", prop.ForAll(
		func(rows []records.ConnectionRecord) bool {
			g := Build(rows, records.HostSummary{})
			seen := make(map[string]bool)
			for _, n := range g.Nodes() {
				if seen[n.ID] {
					return false
				}
				seen[n.ID] = true
			}
			return g.Registry().Len() == len(rows)
		},
		gen.SliceOf(genRecord()),
	))

	properties.TestingRun(t)
}
