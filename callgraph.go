package main

// MetaVertex is one distinct instantiation in the meta-call-graph.
type MetaVertex struct {
	Kind            InstantiationKind
	Name            string
	CalleeFile      string
	CalleeLine      uint32
	CalleeColumn    uint32
	TimeExclCostNs  float64
	MemoryExclCost  uint64
}

// MetaEdge carries the aggregated cost of one call site between two
// vertices, keyed by its ordered pair (u, v) in the owning MetaGraph.
type MetaEdge struct {
	From, To       int
	CallerFile     string
	CallerLine     uint32
	CallerColumn   uint32
	TimeInclCostNs float64
	MemoryInclCost uint64
}

// MetaGraph is an arena of vertices and edges, with a per-vertex outgoing
// adjacency lookup standing in for the source's Boost adjacency_list.
type MetaGraph struct {
	Vertices []MetaVertex
	Edges    []MetaEdge
	Root     int

	outAdj []map[int]int // vertex id -> (target vertex id -> edge id)
}

func newMetaGraph(sourceName string) *MetaGraph {
	g := &MetaGraph{}
	g.Root = g.addVertex(MetaVertex{
		Kind:       0,
		Name:       "CompleteTranslationUnit",
		CalleeFile: sourceName,
		CalleeLine: 1,
	})
	return g
}

func (g *MetaGraph) addVertex(v MetaVertex) int {
	id := len(g.Vertices)
	g.Vertices = append(g.Vertices, v)
	g.outAdj = append(g.outAdj, make(map[int]int))
	return id
}

// edgeID returns the id of the existing (u, v) edge, if any.
func (g *MetaGraph) edgeID(u, v int) (int, bool) {
	id, ok := g.outAdj[u][v]
	return id, ok
}

func (g *MetaGraph) addEdge(e MetaEdge) int {
	id := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.outAdj[e.From][e.To] = id
	return id
}

func saturatingSub[T ~uint64 | ~float64](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

// callGraphBuilder is a treeBackend that folds a recorded tree into a
// MetaGraph: threshold gating, memoization merging, exclusive/inclusive
// cost redistribution, and parallel-edge dedup (first site wins).
type callGraphBuilder struct {
	graph         *MetaGraph
	timeThreshold float64 // seconds
	memThreshold  uint64

	instMap     map[string]int // instantiation name -> vertex id
	treeToGraph map[int]int    // tree node id -> vertex id (gated tasks absent)

	renderer graphRenderer
}

// graphRenderer is the contract seen by output-format renderers for
// graph-shaped backends, per spec §4.9.
type graphRenderer interface {
	WriteGraph(g *MetaGraph) error
}

func newCallGraphBuilder(timeThreshold float64, memThreshold uint64, renderer graphRenderer) *callGraphBuilder {
	return &callGraphBuilder{
		timeThreshold: timeThreshold,
		memThreshold:  memThreshold,
		instMap:       make(map[string]int),
		treeToGraph:   make(map[int]int),
		renderer:      renderer,
	}
}

func (c *callGraphBuilder) Initialize(sourceName string) {
	c.graph = newMetaGraph(sourceName)
}

func (c *callGraphBuilder) Close(TraversalTask) {}

func (c *callGraphBuilder) Finalize() error {
	return c.renderer.WriteGraph(c.graph)
}

// Open resolves one task's vertex (or drops it under threshold gating or
// memoization), then redistributes its cost against its parent and
// dedups the caller->callee edge.
func (c *callGraphBuilder) Open(t TraversalTask) {
	deltaTimeNs := (t.End.TimeStamp - t.Begin.TimeStamp) * 1e9
	if deltaTimeNs < 0 {
		deltaTimeNs = 0
	}
	deltaMem := saturatingSub(t.End.MemoryUsage, t.Begin.MemoryUsage)

	if c.memThreshold > 0 && deltaMem < c.memThreshold {
		return
	}
	if c.timeThreshold > 0 && deltaTimeNs < c.timeThreshold*1e9 {
		return
	}

	var u int
	if t.ParentID == sentinelID {
		u = c.graph.Root
	} else {
		var ok bool
		u, ok = c.treeToGraph[t.ParentID]
		if !ok {
			// Parent was gated (or otherwise dropped): this task's whole
			// subtree is gated transitively, regardless of its own delta.
			return
		}
	}

	var v int
	if t.Begin.Kind.IsMemoization() {
		id, ok := c.instMap[t.Begin.Name]
		if !ok {
			return
		}
		v = id
	} else {
		v = c.graph.addVertex(MetaVertex{
			Kind:           t.Begin.Kind,
			Name:           t.Begin.Name,
			CalleeFile:     t.Begin.TemplateOrigin.File,
			CalleeLine:     t.Begin.TemplateOrigin.Line,
			CalleeColumn:   t.Begin.TemplateOrigin.Column,
			TimeExclCostNs: deltaTimeNs,
			MemoryExclCost: deltaMem,
		})
		if t.Begin.Kind == KindTemplateInstantiation {
			c.instMap[t.Begin.Name] = v
		}
	}
	c.treeToGraph[t.NodeID] = v

	if t.ParentID == sentinelID {
		root := &c.graph.Vertices[u]
		root.TimeExclCostNs += deltaTimeNs
		root.MemoryExclCost += deltaMem
	} else {
		parent := &c.graph.Vertices[u]
		parent.TimeExclCostNs = saturatingSub(parent.TimeExclCostNs, deltaTimeNs)
		parent.MemoryExclCost = saturatingSub(parent.MemoryExclCost, deltaMem)
	}

	if _, exists := c.graph.edgeID(u, v); !exists {
		c.graph.addEdge(MetaEdge{
			From:           u,
			To:             v,
			CallerFile:     t.Begin.Location.File,
			CallerLine:     t.Begin.Location.Line,
			CallerColumn:   t.Begin.Location.Column,
			TimeInclCostNs: deltaTimeNs,
			MemoryInclCost: deltaMem,
		})
	}
}
