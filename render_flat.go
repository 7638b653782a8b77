package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// escapeXML mirrors the original's escapeXml: five reserved characters,
// no full XML-entity table.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}

func locationString(loc SourceLocation) string {
	return fmt.Sprintf("%s|%d|%d", loc.File, loc.Line, loc.Column)
}

// textFlatWriter renders the flat begin/end stream as the original's
// TextWriter did: one indented block per event, no framing markup.
type textFlatWriter struct {
	out io.Writer
}

func newTextFlatWriter(out io.Writer) *textFlatWriter { return &textFlatWriter{out: out} }

func (w *textFlatWriter) Initialize(sourceName string) {
	fmt.Fprintf(w.out, "  SourceFile = %s\n", sourceName)
}

func (w *textFlatWriter) Begin(b BeginEntry) {
	fmt.Fprintf(w.out,
		"TemplateBegin\n  Kind = %s\n  Name = %s\n  Location = %s\n  TimeStamp = %.9f\n  MemoryUsage = %d\n",
		b.Kind, b.Name, locationString(b.Location), b.TimeStamp, b.MemoryUsage)
	if b.HasOrigin {
		fmt.Fprintf(w.out, "  TemplateOrigin = %s\n", locationString(b.TemplateOrigin))
	}
}

func (w *textFlatWriter) End(e EndEntry) {
	fmt.Fprintf(w.out, "TemplateEnd\n  TimeStamp = %.9f\n  MemoryUsage = %d\n", e.TimeStamp, e.MemoryUsage)
}

func (w *textFlatWriter) Finalize() error { return nil }

// xmlFlatWriter renders the flat stream as a sequence of <TemplateBegin>/
// <TemplateEnd> elements inside a <Trace> root.
type xmlFlatWriter struct {
	out io.Writer
}

func newXMLFlatWriter(out io.Writer) *xmlFlatWriter {
	fmt.Fprint(out, "<?xml version=\"1.0\" standalone=\"yes\"?>\n")
	return &xmlFlatWriter{out: out}
}

func (w *xmlFlatWriter) Initialize(string) { fmt.Fprint(w.out, "<Trace>\n") }

func (w *xmlFlatWriter) Begin(b BeginEntry) {
	fmt.Fprintf(w.out,
		"<TemplateBegin>\n    <Kind>%s</Kind>\n    <Context context = \"%s\"/>\n    <Location>%s</Location>\n",
		b.Kind, escapeXML(b.Name), locationString(b.Location))
	fmt.Fprintf(w.out, "    <TimeStamp time = \"%.9f\"/>\n    <MemoryUsage bytes = \"%d\"/>\n",
		b.TimeStamp, b.MemoryUsage)
	if b.HasOrigin {
		fmt.Fprintf(w.out, "    <TemplateOrigin>%s</TemplateOrigin>\n", locationString(b.TemplateOrigin))
	}
	fmt.Fprint(w.out, "</TemplateBegin>\n")
}

func (w *xmlFlatWriter) End(e EndEntry) {
	fmt.Fprintf(w.out, "<TemplateEnd>\n    <TimeStamp time = \"%.9f\"/>\n    <MemoryUsage bytes = \"%d\"/>\n</TemplateEnd>\n",
		e.TimeStamp, e.MemoryUsage)
}

func (w *xmlFlatWriter) Finalize() error {
	_, err := fmt.Fprint(w.out, "</Trace>\n")
	return err
}

// yamlEvent is one flat-stream event, shaped for gopkg.in/yaml.v3 rather
// than hand-rolled string templates: this is the one flat format the
// domain stack has a real library for.
type yamlEvent struct {
	IsBegin        bool    `yaml:"IsBegin"`
	Kind           string  `yaml:"Kind,omitempty"`
	Name           string  `yaml:"Name,omitempty"`
	Location       string  `yaml:"Location,omitempty"`
	TimeStamp      float64 `yaml:"TimeStamp"`
	MemoryUsage    uint64  `yaml:"MemoryUsage"`
	TemplateOrigin string  `yaml:"TemplateOrigin,omitempty"`
}

type yamlFlatWriter struct {
	out    io.Writer
	events []yamlEvent
}

func newYAMLFlatWriter(out io.Writer) *yamlFlatWriter { return &yamlFlatWriter{out: out} }

func (w *yamlFlatWriter) Initialize(string) {}

func (w *yamlFlatWriter) Begin(b BeginEntry) {
	ev := yamlEvent{
		IsBegin:     true,
		Kind:        b.Kind.String(),
		Name:        b.Name,
		Location:    locationString(b.Location),
		TimeStamp:   b.TimeStamp,
		MemoryUsage: b.MemoryUsage,
	}
	if b.HasOrigin {
		ev.TemplateOrigin = locationString(b.TemplateOrigin)
	}
	w.events = append(w.events, ev)
}

func (w *yamlFlatWriter) End(e EndEntry) {
	w.events = append(w.events, yamlEvent{
		IsBegin:     false,
		TimeStamp:   e.TimeStamp,
		MemoryUsage: e.MemoryUsage,
	})
}

func (w *yamlFlatWriter) Finalize() error {
	enc := yaml.NewEncoder(w.out)
	defer enc.Close()
	return enc.Encode(w.events)
}
