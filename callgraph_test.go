package main

import "testing"

func findVertex(g *MetaGraph, name string) (MetaVertex, bool) {
	for _, v := range g.Vertices {
		if v.Name == name {
			return v, true
		}
	}
	return MetaVertex{}, false
}

func hasEdge(g *MetaGraph, from, to string) bool {
	u, uok := findVertexID(g, from)
	v, vok := findVertexID(g, to)
	if !uok || !vok {
		return false
	}
	_, ok := g.edgeID(u, v)
	return ok
}

func findVertexID(g *MetaGraph, name string) (int, bool) {
	for i, v := range g.Vertices {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// captureGraph runs a tree of TraversalTasks through a fresh
// callGraphBuilder and returns the resulting graph.
func captureGraph(t *testing.T, timeThreshold float64, memThreshold uint64, tasks ...TraversalTask) *MetaGraph {
	t.Helper()
	var got *MetaGraph
	builder := newCallGraphBuilder(timeThreshold, memThreshold, graphCaptureRenderer{&got})
	builder.Initialize("source.cpp")
	for _, task := range tasks {
		builder.Open(task)
		builder.Close(task)
	}
	if err := builder.Finalize(); err != nil {
		t.Fatal(err)
	}
	return got
}

type graphCaptureRenderer struct{ dest **MetaGraph }

func (r graphCaptureRenderer) WriteGraph(g *MetaGraph) error {
	*r.dest = g
	return nil
}

// TestCallGraphMemoizationFold covers S3: a memoization entry folds into
// the previously seen vertex instead of creating a new one, and repeated
// call sites collapse to one edge.
func TestCallGraphMemoizationFold(t *testing.T) {
	// Begin(TemplateInstantiation, "Foo<1>"), End           -> node_id 0
	// Begin(Memoization, "Foo<1>"), End                     -> node_id 1
	// Begin(TemplateInstantiation, "Bar")                   -> node_id 2
	//   Begin(Memoization, "Foo<1>"), End                   -> node_id 3
	// End
	tasks := []TraversalTask{
		{NodeID: 0, ParentID: sentinelID, EndID: 1,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "Foo<1>"}, End: EndEntry{}},
		{NodeID: 1, ParentID: sentinelID, EndID: 2,
			Begin: BeginEntry{Kind: KindMemoization, Name: "Foo<1>"}, End: EndEntry{}},
		{NodeID: 2, ParentID: sentinelID, EndID: 4,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "Bar"}, End: EndEntry{}},
		{NodeID: 3, ParentID: 2, EndID: 4,
			Begin: BeginEntry{Kind: KindMemoization, Name: "Foo<1>"}, End: EndEntry{}},
	}

	g := captureGraph(t, 0, 0, tasks...)

	if len(g.Vertices) != 3 { // root, Foo<1>, Bar
		t.Fatalf("expected 3 vertices (root, Foo<1>, Bar), got %d: %+v", len(g.Vertices), g.Vertices)
	}
	for _, v := range g.Vertices {
		if v.Kind.IsMemoization() {
			t.Errorf("meta-graph must contain no Memoization vertex, found %q", v.Name)
		}
	}
	if !hasEdge(g, "CompleteTranslationUnit", "Foo<1>") {
		t.Error("missing root -> Foo<1> edge")
	}
	if !hasEdge(g, "CompleteTranslationUnit", "Bar") {
		t.Error("missing root -> Bar edge")
	}
	if !hasEdge(g, "Bar", "Foo<1>") {
		t.Error("missing Bar -> Foo<1> edge")
	}

	rootID, _ := findVertexID(g, "CompleteTranslationUnit")
	fooID, _ := findVertexID(g, "Foo<1>")
	edgeCount := 0
	for _, e := range g.Edges {
		if e.From == rootID && e.To == fooID {
			edgeCount++
		}
	}
	if edgeCount != 1 {
		t.Errorf("expected exactly one root->Foo<1> edge, got %d", edgeCount)
	}
}

// TestCallGraphCostRedistribution covers S4: exclusive costs are
// inclusive costs with descendants' costs subtracted out.
func TestCallGraphCostRedistribution(t *testing.T) {
	// Begin A t=0 mem=0, Begin B t=1 mem=10, End B t=4 mem=50, End A t=10 mem=100.
	tasks := []TraversalTask{
		{NodeID: 0, ParentID: sentinelID, EndID: 2,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "A", TimeStamp: 0, MemoryUsage: 0},
			End:   EndEntry{TimeStamp: 10, MemoryUsage: 100}},
		{NodeID: 1, ParentID: 0, EndID: 2,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "B", TimeStamp: 1, MemoryUsage: 10},
			End:   EndEntry{TimeStamp: 4, MemoryUsage: 50}},
	}

	g := captureGraph(t, 0, 0, tasks...)

	a, ok := findVertex(g, "A")
	if !ok {
		t.Fatal("vertex A not found")
	}
	b, ok := findVertex(g, "B")
	if !ok {
		t.Fatal("vertex B not found")
	}

	wantATime, wantAMem := 7e9, uint64(60)
	wantBTime, wantBMem := 3e9, uint64(40)

	if a.TimeExclCostNs != wantATime {
		t.Errorf("A.TimeExclCostNs = %v, want %v", a.TimeExclCostNs, wantATime)
	}
	if a.MemoryExclCost != wantAMem {
		t.Errorf("A.MemoryExclCost = %v, want %v", a.MemoryExclCost, wantAMem)
	}
	if b.TimeExclCostNs != wantBTime {
		t.Errorf("B.TimeExclCostNs = %v, want %v", b.TimeExclCostNs, wantBTime)
	}
	if b.MemoryExclCost != wantBMem {
		t.Errorf("B.MemoryExclCost = %v, want %v", b.MemoryExclCost, wantBMem)
	}
}

// TestCallGraphThresholdGating covers S6: a node (and its descendants)
// below the memory threshold is entirely absent from the graph. Child's
// own delta (200) is well above the threshold, so this only passes if
// gating propagates transitively through the dropped parent rather than
// being decided independently per task.
func TestCallGraphThresholdGating(t *testing.T) {
	tasks := []TraversalTask{
		{NodeID: 0, ParentID: sentinelID, EndID: 2,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "Gated", MemoryUsage: 0},
			End:   EndEntry{MemoryUsage: 50}},
		{NodeID: 1, ParentID: 0, EndID: 2,
			Begin: BeginEntry{Kind: KindTemplateInstantiation, Name: "Child", MemoryUsage: 0},
			End:   EndEntry{MemoryUsage: 200}},
	}

	g := captureGraph(t, 0, 100, tasks...)

	if _, ok := findVertex(g, "Gated"); ok {
		t.Error("Gated vertex should have been dropped by the memory threshold")
	}
	if _, ok := findVertex(g, "Child"); ok {
		t.Error("Child vertex should have been dropped transitively along with its gated ancestor, even though its own delta is above threshold")
	}
	if len(g.Vertices) != 1 { // root only
		t.Errorf("expected only the root vertex, got %d: %+v", len(g.Vertices), g.Vertices)
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges (Child must not attach to root), got %+v", g.Edges)
	}
}
