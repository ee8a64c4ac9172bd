package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

// IDGenerator produces peer node ids.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator issues random version 4 UUIDs.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)

// PeerIdentity selects how records map to peer nodes.
type PeerIdentity int

const (
	// PerRecord builds one node per record, even for repeated hosts.
	PerRecord PeerIdentity = iota
	// PerHost builds one node per distinct peer host; edges accumulate and
	// the first record's detail is the one registered.
	PerHost
)

func (p PeerIdentity) String() string {
	switch p {
	case PerRecord:
		return "per-record"
	case PerHost:
		return "per-host"
	default:
		return "unknown"
	}
}

// ParsePeerIdentity converts a configuration string to a PeerIdentity.
func ParsePeerIdentity(s string) (PeerIdentity, error) {
	switch s {
	case "", "per-record":
		return PerRecord, nil
	case "per-host":
		return PerHost, nil
	}
	return PerRecord, fmt.Errorf("unknown peer identity %q", s)
}

type buildConfig struct {
	ids      IDGenerator
	identity PeerIdentity
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithIDGenerator replaces the UUID generator, mainly for tests.
func WithIDGenerator(g IDGenerator) BuildOption {
	return func(c *buildConfig) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithPeerIdentity selects the peer identity policy.
func WithPeerIdentity(p PeerIdentity) BuildOption {
	return func(c *buildConfig) { c.identity = p }
}

// Build constructs the graph for one snapshot of connection records. A nil
// record slice yields an empty graph with no central node; an empty but
// non-nil slice yields the central node alone.
func Build(rows []records.ConnectionRecord, summary records.HostSummary, opts ...BuildOption) *Graph {
	cfg := buildConfig{ids: UUIDGenerator, identity: PerRecord}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := Empty()
	g.summary = summary
	if rows == nil {
		return g
	}

	b := &builder{g: g, cfg: cfg, byHost: make(map[string]*Node)}
	for i := range rows {
		b.addRecord(rows[i])
	}
	b.addCentral()
	return g
}

type builder struct {
	g      *Graph
	cfg    buildConfig
	byHost map[string]*Node
}

func (b *builder) addRecord(rec records.ConnectionRecord) {
	node := b.peerFor(rec)
	if rec.IsMalicious && !node.Malicious {
		node.Malicious = true
		node.Color = style.NodeColor(true)
		b.g.stats.MaliciousPeers++
		b.markEdgesMalicious(node.ID)
	}

	// under PerHost a node stays malicious for every later record
	edgeMalicious := node.Malicious || b.g.summary.IsMalicious
	width := style.EdgeWidth(rec.ByteCount)

	switch rec.Direction {
	case records.DirectionToClient:
		b.addEdge(CentralID, node.ID, width, edgeMalicious, nil)
	case records.DirectionToHost:
		b.addEdge(node.ID, CentralID, width, edgeMalicious, nil)
	case records.DirectionBoth:
		b.addEdge(node.ID, CentralID, width, edgeMalicious, &Smooth{Type: SmoothDynamic, Roundness: BothRoundness})
		b.addEdge(CentralID, node.ID, width, edgeMalicious, &Smooth{Type: SmoothDynamic, Roundness: BothRoundness})
	}

	b.g.stats.TotalBytes += rec.ByteCount
}

// peerFor returns the node for rec, creating and registering it when the
// identity policy calls for a new one.
func (b *builder) peerFor(rec records.ConnectionRecord) *Node {
	if b.cfg.identity == PerHost {
		if n, ok := b.byHost[rec.PeerHost]; ok {
			return n
		}
	}

	detail := rec
	n := &Node{
		ID:          b.cfg.ids.NewID(),
		Label:       rec.PeerHost,
		Title:       records.Tooltip(&detail),
		Shape:       ShapeCircularImage,
		Image:       style.ImageFor(rec.Scope),
		Size:        style.PeerSize,
		BorderWidth: style.BaseBorderWidth,
		Color:       style.NodeColor(false),
		Detail:      &detail,
	}

	b.g.registry.Put(n.ID, &detail)
	b.g.nodes = append(b.g.nodes, n)
	b.g.index[n.ID] = n
	b.byHost[rec.PeerHost] = n

	b.g.stats.Peers++
	b.g.stats.Nodes++
	if rec.Scope == records.ScopeExternal {
		b.g.stats.ExternalPeers++
	}
	return n
}

func (b *builder) addEdge(from, to string, width float64, malicious bool, smooth *Smooth) {
	e := &Edge{
		ID:        fmt.Sprintf("e%d", len(b.g.edges)),
		From:      from,
		To:        to,
		Width:     width,
		Color:     style.EdgeColor(malicious),
		Smooth:    smooth,
		Arrows:    ArrowsMiddle,
		Malicious: malicious,
	}
	b.g.edges = append(b.g.edges, e)
	b.g.stats.Edges++
}

// markEdgesMalicious turns red the edges already built for a shared node
// that has just become malicious.
func (b *builder) markEdgesMalicious(id string) {
	for _, e := range b.g.edges {
		if e.From == id || e.To == id {
			e.Malicious = true
			e.Color = style.EdgeColor(true)
		}
	}
}

func (b *builder) addCentral() {
	summary := b.g.summary
	n := &Node{
		ID:          CentralID,
		Label:       CentralID,
		Title:       records.Tooltip(&summary),
		Shape:       ShapeCircularImage,
		Image:       style.CentralImage,
		Size:        style.CentralSize,
		BorderWidth: style.BaseBorderWidth,
		Color:       style.CentralColor(),
		Central:     true,
		Malicious:   summary.IsMalicious,
		Detail:      &summary,
	}
	b.g.nodes = append(b.g.nodes, n)
	b.g.index[n.ID] = n
	b.g.stats.Nodes++
}
