package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/pprof/profile"
)

// buildSampleGraph constructs root -> A -> B, exercising dfsOrder's
// parent-chain bookkeeping used by the pprof-cg and callgrind renderers.
func buildSampleGraph() *MetaGraph {
	g := newMetaGraph("source.cpp")
	a := g.addVertex(MetaVertex{Name: "A", CalleeFile: "a.h", CalleeLine: 10, TimeExclCostNs: 5, MemoryExclCost: 20})
	b := g.addVertex(MetaVertex{Name: "B", CalleeFile: "b.h", CalleeLine: 20, TimeExclCostNs: 3, MemoryExclCost: 7})
	g.addEdge(MetaEdge{From: g.Root, To: a, CallerFile: "main.cpp", CallerLine: 1, TimeInclCostNs: 8, MemoryInclCost: 27})
	g.addEdge(MetaEdge{From: a, To: b, CallerFile: "a.h", CallerLine: 11, TimeInclCostNs: 3, MemoryInclCost: 7})
	return g
}

func TestDFSOrderParentChain(t *testing.T) {
	g := buildSampleGraph()
	order, parent := dfsOrder(g)
	if len(order) != 3 {
		t.Fatalf("expected 3 vertices visited, got %d: %v", len(order), order)
	}
	aID, _ := findVertexID(g, "A")
	bID, _ := findVertexID(g, "B")
	if parent[aID] != g.Root {
		t.Errorf("parent[A] = %d, want root %d", parent[aID], g.Root)
	}
	if parent[bID] != aID {
		t.Errorf("parent[B] = %d, want A %d", parent[bID], aID)
	}
}

func TestGraphMLCGRendererShape(t *testing.T) {
	var buf bytes.Buffer
	r := newGraphMLCGRenderer(&buf)
	if err := r.WriteGraph(buildSampleGraph()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<graphml", "<node id=\"n0\">", "<edge id=", "</graphml>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestGraphVizCGRendererShape(t *testing.T) {
	var buf bytes.Buffer
	r := newGraphVizCGRenderer(&buf)
	if err := r.WriteGraph(buildSampleGraph()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("expected digraph framing, got:\n%s", out)
	}
	if !strings.Contains(out, "0->1") && !strings.Contains(out, "0->2") {
		t.Errorf("expected an edge from the root vertex, got:\n%s", out)
	}
}

func TestCallGrindRendererRootBlock(t *testing.T) {
	var buf bytes.Buffer
	r := newCallGrindRenderer(&buf)
	if err := r.WriteGraph(buildSampleGraph()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "version: 1") {
		t.Errorf("expected callgrind version header, got:\n%s", out)
	}
	if !strings.Contains(out, "fn=global") {
		t.Errorf("expected a root block with fn=global, got:\n%s", out)
	}
	if !strings.Contains(out, "fn=A") || !strings.Contains(out, "fn=B") {
		t.Errorf("expected function blocks for A and B, got:\n%s", out)
	}
}

func TestPprofCGRendererValidProfile(t *testing.T) {
	var buf bytes.Buffer
	r := newPprofCGRenderer(&buf)
	if err := r.WriteGraph(buildSampleGraph()); err != nil {
		t.Fatal(err)
	}
	p, err := profile.Parse(&buf)
	if err != nil {
		t.Fatalf("profile.Parse: %v", err)
	}
	if len(p.Sample) != 3 {
		t.Fatalf("expected 3 samples (root, A, B), got %d", len(p.Sample))
	}
	for _, s := range p.Sample {
		if len(s.Location) == 0 {
			t.Error("expected every sample to carry a non-empty location stack")
		}
	}
}
