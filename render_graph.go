package main

import (
	"fmt"
	"io"

	"github.com/google/pprof/profile"
)

// outEdges returns the ids of edges leaving v, in insertion order.
func (g *MetaGraph) outEdges(v int) []int {
	var ids []int
	for i, e := range g.Edges {
		if e.From == v {
			ids = append(ids, i)
		}
	}
	return ids
}

// dfsOrder walks the graph depth-first from its root, mirroring the
// original's boost::depth_first_visit, and also records each visited
// vertex's discovering parent (used by the pprof-cg renderer to build a
// call stack).
func dfsOrder(g *MetaGraph) (order []int, parent map[int]int) {
	visited := make([]bool, len(g.Vertices))
	parent = make(map[int]int)
	var rec func(v int)
	rec = func(v int) {
		if visited[v] {
			return
		}
		visited[v] = true
		order = append(order, v)
		for _, eid := range g.outEdges(v) {
			to := g.Edges[eid].To
			if !visited[to] {
				parent[to] = v
			}
			rec(to)
		}
	}
	rec(g.Root)
	return order, parent
}

func graphLocationString(file string, line, column uint32) string {
	return fmt.Sprintf("%s|%d|%d", file, line, column)
}

// graphMLCGRenderer renders the meta-call-graph as GraphML, keys d0-d4 on
// nodes and d5-d7 on edges, matching the original's GraphMLCGWriter.
type graphMLCGRenderer struct{ out io.Writer }

func newGraphMLCGRenderer(out io.Writer) *graphMLCGRenderer { return &graphMLCGRenderer{out: out} }

func (r *graphMLCGRenderer) WriteGraph(g *MetaGraph) error {
	fmt.Fprint(r.out,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\""+
			" xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\""+
			" xsi:schemaLocation=\"http://graphml.graphdrawing.org/xmlns"+
			" http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd\">\n")
	fmt.Fprint(r.out,
		"<key id=\"d0\" for=\"node\" attr.name=\"Kind\" attr.type=\"string\"/>\n"+
			"<key id=\"d1\" for=\"node\" attr.name=\"Name\" attr.type=\"string\"/>\n"+
			"<key id=\"d2\" for=\"node\" attr.name=\"Location\" attr.type=\"string\"/>\n"+
			"<key id=\"d3\" for=\"node\" attr.name=\"Time\" attr.type=\"double\">\n<default>0.0</default>\n</key>\n"+
			"<key id=\"d4\" for=\"node\" attr.name=\"Memory\" attr.type=\"long\">\n<default>0</default>\n</key>\n"+
			"<key id=\"d5\" for=\"edge\" attr.name=\"FromLocation\" attr.type=\"string\"/>\n"+
			"<key id=\"d6\" for=\"edge\" attr.name=\"Time\" attr.type=\"double\">\n<default>0.0</default>\n</key>\n"+
			"<key id=\"d7\" for=\"edge\" attr.name=\"Memory\" attr.type=\"long\">\n<default>0</default>\n</key>\n")
	fmt.Fprint(r.out, "<graph>\n")

	order, _ := dfsOrder(g)
	for _, v := range order {
		vtx := g.Vertices[v]
		fmt.Fprintf(r.out, "<node id=\"n%d\">\n", v)
		fmt.Fprintf(r.out, "  <data key=\"d0\">%s</data>\n  <data key=\"d1\">\"%s\"</data>\n  <data key=\"d2\">\"%s\"</data>\n",
			vtx.Kind, escapeXML(vtx.Name), graphLocationString(vtx.CalleeFile, vtx.CalleeLine, vtx.CalleeColumn))
		fmt.Fprintf(r.out, "  <data key=\"d3\">%.9f</data>\n  <data key=\"d4\">%d</data>\n",
			1e-9*vtx.TimeExclCostNs, vtx.MemoryExclCost)
		fmt.Fprint(r.out, "</node>\n")
	}
	for _, u := range order {
		for i, eid := range g.outEdges(u) {
			e := g.Edges[eid]
			fmt.Fprintf(r.out, "<edge id=\"e%d_%d\" source=\"n%d\" target=\"n%d\"/>\n", u, i, u, e.To)
			fmt.Fprintf(r.out, "  <data key=\"d5\">\"%s\"</data>\n", graphLocationString(e.CallerFile, e.CallerLine, e.CallerColumn))
			fmt.Fprintf(r.out, "  <data key=\"d6\">%.9f</data>\n  <data key=\"d7\">%d</data>\n</edge>\n",
				1e-9*e.TimeInclCostNs, e.MemoryInclCost)
		}
	}
	fmt.Fprint(r.out, "</graph>\n</graphml>\n")
	return nil
}

// graphVizCGRenderer renders the meta-call-graph as a DOT digraph, one
// node per vertex labeled with its exclusive time and name, matching
// boost::write_graphviz's default vertex-index node naming.
type graphVizCGRenderer struct{ out io.Writer }

func newGraphVizCGRenderer(out io.Writer) *graphVizCGRenderer { return &graphVizCGRenderer{out: out} }

func (r *graphVizCGRenderer) WriteGraph(g *MetaGraph) error {
	fmt.Fprint(r.out, "digraph G {\n")
	for i, v := range g.Vertices {
		fmt.Fprintf(r.out, "%d[label=\"Time: %.9f seconds | %s\"];\n", i, 1e-9*v.TimeExclCostNs, v.Name)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(r.out, "%d->%d ;\n", e.From, e.To)
	}
	_, err := fmt.Fprint(r.out, "}\n")
	return err
}

// callGrindRenderer renders the meta-call-graph in the Callgrind profile
// format: a root block expanding its direct edges, then one function
// block per other reachable vertex. The current vertex's callee file is
// emitted as `fl=` unconditionally, matching the original's FIXME-
// acknowledged handling of caller/callee file mismatches.
type callGrindRenderer struct{ out io.Writer }

func newCallGrindRenderer(out io.Writer) *callGrindRenderer { return &callGrindRenderer{out: out} }

func (r *callGrindRenderer) WriteGraph(g *MetaGraph) error {
	root := g.Vertices[g.Root]
	fmt.Fprintf(r.out,
		"version: 1\npositions: line\nevent: CTime : Compilation Time (ns)\nevent: CMem : Compiler Memory Usage (bytes)\nevents: CTime CMem\nsummary: %.0f %d\n\n",
		root.TimeExclCostNs, root.MemoryExclCost)

	order, _ := dfsOrder(g)
	for _, u := range order {
		if u == g.Root {
			for _, eid := range g.outEdges(g.Root) {
				e := g.Edges[eid]
				v := g.Vertices[e.To]
				fmt.Fprintf(r.out, "fl=%s\nfn=global\n%d 0 0\ncfi=%s\ncfn=%s\ncalls=1 %d\n%d %.0f %d\n",
					e.CallerFile, e.CallerLine, v.CalleeFile, v.Name, v.CalleeLine, e.CallerLine, e.TimeInclCostNs, e.MemoryInclCost)
			}
			continue
		}
		vtx := g.Vertices[u]
		fmt.Fprintf(r.out, "\nfl=%s\nfn=%s\n%d %.0f %d\n", vtx.CalleeFile, vtx.Name, vtx.CalleeLine, vtx.TimeExclCostNs, vtx.MemoryExclCost)
		for _, eid := range g.outEdges(u) {
			e := g.Edges[eid]
			v := g.Vertices[e.To]
			fmt.Fprintf(r.out, "cfi=%s\ncfn=%s\ncalls=1 %d\n%d %.0f %d\n",
				v.CalleeFile, v.Name, v.CalleeLine, e.CallerLine, e.TimeInclCostNs, e.MemoryInclCost)
		}
	}
	return nil
}

// pprofCGRenderer renders the meta-call-graph as a github.com/google/pprof
// profile: one sample per vertex, each carrying its exclusive time and
// memory, with a Location stack built from the DFS parent chain so
// `go tool pprof` can render the same call structure as callgrind.
type pprofCGRenderer struct{ out io.Writer }

func newPprofCGRenderer(out io.Writer) *pprofCGRenderer { return &pprofCGRenderer{out: out} }

func (r *pprofCGRenderer) WriteGraph(g *MetaGraph) error {
	order, parent := dfsOrder(g)

	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "cpu", Unit: "nanoseconds"},
			{Type: "alloc_space", Unit: "bytes"},
		},
	}

	functions := make(map[int]*profile.Function, len(order))
	locations := make(map[int]*profile.Location, len(order))
	nextID := uint64(1)

	for _, v := range order {
		vtx := g.Vertices[v]
		fn := &profile.Function{ID: nextID, Name: vtx.Name, Filename: vtx.CalleeFile}
		nextID++
		loc := &profile.Location{
			ID:   nextID,
			Line: []profile.Line{{Function: fn, Line: int64(vtx.CalleeLine)}},
		}
		nextID++
		functions[v] = fn
		locations[v] = loc
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
	}

	for _, v := range order {
		vtx := g.Vertices[v]
		var stack []*profile.Location
		for cur := v; ; {
			stack = append(stack, locations[cur])
			if cur == g.Root {
				break
			}
			next, ok := parent[cur]
			if !ok {
				break
			}
			cur = next
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: stack,
			Value:    []int64{int64(vtx.TimeExclCostNs), int64(vtx.MemoryExclCost)},
		})
	}

	return p.Write(r.out)
}
