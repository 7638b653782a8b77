package main

import (
	"fmt"
	"io"
)

func taskDuration(t TraversalTask) (timeSecs float64, memBytes uint64) {
	timeSecs = t.End.TimeStamp - t.Begin.TimeStamp
	memBytes = saturatingSub(t.End.MemoryUsage, t.Begin.MemoryUsage)
	return
}

// nestedXMLBackend nests <Entry> elements by DFS structure, one element
// per task, opened on Open and closed on Close.
type nestedXMLBackend struct {
	out io.Writer
}

func newNestedXMLBackend(out io.Writer) *nestedXMLBackend {
	fmt.Fprint(out, "<?xml version=\"1.0\" standalone=\"yes\"?>\n")
	return &nestedXMLBackend{out: out}
}

func (b *nestedXMLBackend) Initialize(string) { fmt.Fprint(b.out, "<Trace>\n") }

func (b *nestedXMLBackend) Open(t TraversalTask) {
	timeSecs, memBytes := taskDuration(t)
	fmt.Fprintf(b.out, "<Entry Kind=\"%s\" Name=\"%s\" ", t.Begin.Kind, escapeXML(t.Begin.Name))
	fmt.Fprintf(b.out, "Location=\"%s\" ", locationString(t.Begin.Location))
	if t.Begin.HasOrigin {
		fmt.Fprintf(b.out, "TemplateOrigin=\"%s\" ", locationString(t.Begin.TemplateOrigin))
	}
	fmt.Fprintf(b.out, "Time=\"%.9f\" Memory=\"%d\">\n", timeSecs, memBytes)
}

func (b *nestedXMLBackend) Close(TraversalTask) { fmt.Fprint(b.out, "</Entry>\n") }

func (b *nestedXMLBackend) Finalize() error {
	_, err := fmt.Fprint(b.out, "</Trace>\n")
	return err
}

// graphMLBackend renders the tree as a GraphML node/edge graph, one node
// per task with a parent-edge, matching the original's key schema d0-d5.
type graphMLBackend struct {
	out       io.Writer
	lastEdgeID int
}

func newGraphMLBackend(out io.Writer) *graphMLBackend {
	fmt.Fprint(out,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\""+
			" xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\""+
			" xsi:schemaLocation=\"http://graphml.graphdrawing.org/xmlns"+
			" http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd\">\n")
	fmt.Fprint(out,
		"<key id=\"d0\" for=\"node\" attr.name=\"Kind\" attr.type=\"string\"/>\n"+
			"<key id=\"d1\" for=\"node\" attr.name=\"Name\" attr.type=\"string\"/>\n"+
			"<key id=\"d2\" for=\"node\" attr.name=\"Location\" attr.type=\"string\"/>\n"+
			"<key id=\"d3\" for=\"node\" attr.name=\"Time\" attr.type=\"double\">\n<default>0.0</default>\n</key>\n"+
			"<key id=\"d4\" for=\"node\" attr.name=\"Memory\" attr.type=\"long\">\n<default>0</default>\n</key>\n"+
			"<key id=\"d5\" for=\"node\" attr.name=\"TemplateOrigin\" attr.type=\"string\"/>\n")
	return &graphMLBackend{out: out}
}

func (b *graphMLBackend) Initialize(string) { fmt.Fprint(b.out, "<graph>\n") }

func (b *graphMLBackend) Open(t TraversalTask) {
	timeSecs, memBytes := taskDuration(t)
	fmt.Fprintf(b.out, "<node id=\"n%d\">\n", t.NodeID)
	fmt.Fprintf(b.out, "  <data key=\"d0\">%s</data>\n  <data key=\"d1\">\"%s\"</data>\n  <data key=\"d2\">\"%s\"</data>\n",
		t.Begin.Kind, escapeXML(t.Begin.Name), locationString(t.Begin.Location))
	fmt.Fprintf(b.out, "  <data key=\"d3\">%.9f</data>\n  <data key=\"d4\">%d</data>\n", timeSecs, memBytes)
	if t.Begin.HasOrigin {
		fmt.Fprintf(b.out, "  <data key=\"d5\">\"%s\"</data>\n", locationString(t.Begin.TemplateOrigin))
	}
	fmt.Fprint(b.out, "</node>\n")
	if t.ParentID == sentinelID {
		return
	}
	fmt.Fprintf(b.out, "<edge id=\"e%d\" source=\"n%d\" target=\"n%d\"/>\n", b.lastEdgeID, t.ParentID, t.NodeID)
	b.lastEdgeID++
}

func (b *graphMLBackend) Close(TraversalTask) {}

func (b *graphMLBackend) Finalize() error {
	_, err := fmt.Fprint(b.out, "</graph>\n</graphml>\n")
	return err
}

// graphVizBackend renders the tree as a DOT digraph, one labeled node per
// task and one edge to its parent.
type graphVizBackend struct {
	out io.Writer
}

func newGraphVizBackend(out io.Writer) *graphVizBackend { return &graphVizBackend{out: out} }

func (b *graphVizBackend) Initialize(string) { fmt.Fprint(b.out, "digraph Trace {\n") }

func (b *graphVizBackend) Open(t TraversalTask) {
	timeSecs, memBytes := taskDuration(t)
	loc := t.Begin.Location
	fmt.Fprintf(b.out, "n%d [label = \"%s\\n%s\\nAt %s Line %d Column %d\\n",
		t.NodeID, t.Begin.Kind, escapeXML(t.Begin.Name), loc.File, loc.Line, loc.Column)
	if t.Begin.HasOrigin {
		origin := t.Begin.TemplateOrigin
		fmt.Fprintf(b.out, "From %s Line %d Column %d\\n", origin.File, origin.Line, origin.Column)
	}
	fmt.Fprintf(b.out, "Time: %.9f seconds Memory: %d bytes\" ];\n", timeSecs, memBytes)
	if t.ParentID == sentinelID {
		return
	}
	fmt.Fprintf(b.out, "n%d -> n%d;\n", t.ParentID, t.NodeID)
}

func (b *graphVizBackend) Close(TraversalTask) {}

func (b *graphVizBackend) Finalize() error {
	_, err := fmt.Fprint(b.out, "}\n")
	return err
}
