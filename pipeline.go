package main

import (
	"fmt"
	"io"
)

// Recognized -f/--format values, per spec §6.
const (
	FormatProtobuf    = "protobuf"
	FormatYAML        = "yaml"
	FormatXML         = "xml"
	FormatText        = "text"
	FormatGraphML     = "graphml"
	FormatGraphViz    = "graphviz"
	FormatNestedXML   = "nestedxml"
	FormatGraphMLCG   = "graphml-cg"
	FormatGraphVizCG  = "graphviz-cg"
	FormatCallgrind   = "callgrind"
	FormatPprofCG     = "pprof-cg" // not in the original format list
)

// protobufFlatWriter adapts TraceWriter to entrySink, so the binary
// format can sit alongside the text-based flat writers behind one
// interface.
type protobufFlatWriter struct {
	out io.Writer
	tw  *TraceWriter
}

func newProtobufFlatWriter(out io.Writer, mode CompressionMode) (*protobufFlatWriter, error) {
	tw, err := NewTraceWriter(mode)
	if err != nil {
		return nil, err
	}
	return &protobufFlatWriter{out: out, tw: tw}, nil
}

func (p *protobufFlatWriter) Initialize(sourceName string) { p.tw.Initialize(sourceName) }
func (p *protobufFlatWriter) Begin(b BeginEntry)            { p.tw.PrintBegin(b) }
func (p *protobufFlatWriter) End(e EndEntry)                 { p.tw.PrintEnd(e) }
func (p *protobufFlatWriter) Finalize() error {
	_, err := p.out.Write(p.tw.Finalize())
	return err
}

// buildSink constructs the entrySink for a requested output format. Tree
// and graph formats are wrapped in a treeRecorder; flat formats implement
// entrySink directly.
func buildSink(format string, out io.Writer, compression CompressionMode, timeThreshold float64, memThreshold uint64) (entrySink, error) {
	switch format {
	case FormatProtobuf:
		return newProtobufFlatWriter(out, compression)
	case FormatYAML:
		return newYAMLFlatWriter(out), nil
	case FormatXML:
		return newXMLFlatWriter(out), nil
	case FormatText:
		return newTextFlatWriter(out), nil
	case FormatNestedXML:
		return newTreeRecorder(newNestedXMLBackend(out)), nil
	case FormatGraphML:
		return newTreeRecorder(newGraphMLBackend(out)), nil
	case FormatGraphViz:
		return newTreeRecorder(newGraphVizBackend(out)), nil
	case FormatGraphMLCG:
		return newTreeRecorder(newCallGraphBuilder(timeThreshold, memThreshold, newGraphMLCGRenderer(out))), nil
	case FormatGraphVizCG:
		return newTreeRecorder(newCallGraphBuilder(timeThreshold, memThreshold, newGraphVizCGRenderer(out))), nil
	case FormatCallgrind:
		return newTreeRecorder(newCallGraphBuilder(timeThreshold, memThreshold, newCallGrindRenderer(out))), nil
	case FormatPprofCG:
		return newTreeRecorder(newCallGraphBuilder(timeThreshold, memThreshold, newPprofCGRenderer(out))), nil
	default:
		return nil, newConvertError(ErrUnknownFormat, "build sink", fmt.Errorf("unknown format %q", format))
	}
}

// convertOne drives one input's bytes through the reader and filter into
// sink, per the data flow in spec §2: bytes -> Reader -> (Header|Begin|End)
// -> Filter -> sink.
func convertOne(data []byte, sink entrySink, instOnly bool, bl *blacklist) error {
	reader := newTraceReader()
	if err := reader.StartOn(data); err != nil {
		return err
	}
	filter := newEntryFilter(sink, bl, instOnly)
	headerSeen := false

	for {
		kind, err := reader.Next()
		if err != nil {
			return err
		}
		switch kind {
		case ChunkHeader:
			filter.Initialize(reader.SourceName)
			headerSeen = true
		case ChunkBegin:
			filter.Begin(reader.LastBegin)
		case ChunkEnd:
			filter.End(reader.LastEnd)
		case ChunkOther:
			continue
		case ChunkEOF:
			if !headerSeen {
				filter.Initialize(reader.SourceName)
			}
			return filter.Finalize()
		}
	}
}
