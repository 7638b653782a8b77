package main

import "fmt"

// CompressionMode selects how TraceWriter encodes template names.
type CompressionMode int

const (
	CompressionLiteral    CompressionMode = 0
	CompressionReserved   CompressionMode = 1 // zlib, disabled: rejected
	CompressionDictionary CompressionMode = 2
)

// TraceWriter is the symmetric counterpart to TraceReader: it accumulates
// one source pass into a staging buffer and wraps it as a single
// length-delimited record on Finalize.
type TraceWriter struct {
	staging     wireWriter
	compression CompressionMode
	dict        *nameDictionary
	fileIDs     map[string]uint32
	nextFileID  uint32
}

// NewTraceWriter builds a writer using the given compression mode. Mode 1
// (reserved zlib) is rejected outright, matching the reader's refusal to
// decode compressed_name.
func NewTraceWriter(mode CompressionMode) (*TraceWriter, error) {
	if mode == CompressionReserved {
		return nil, newConvertError(ErrMalformedWire, "new trace writer",
			fmt.Errorf("compression mode 1 (zlib) is unsupported"))
	}
	w := &TraceWriter{
		compression: mode,
		fileIDs:     make(map[string]uint32),
	}
	w.dict = &nameDictionary{cache: make(map[string]int)}
	w.dict.onNewEntry = w.emitDictionaryEntry
	return w, nil
}

// Initialize emits the Header into the staging buffer.
func (w *TraceWriter) Initialize(sourceName string) {
	var hdr wireWriter
	hdr.WriteVarint(fieldHeaderVersion, 1)
	if sourceName != "" {
		hdr.WriteString(fieldHeaderSourceFile, sourceName)
	}
	w.staging.WriteBytes(fieldRecordHeader, hdr.Bytes())
}

func (w *TraceWriter) emitDictionaryEntry(id int, e dictEntry) {
	var d wireWriter
	d.WriteString(fieldDictMarkedName, e.MarkedName)
	for _, m := range e.MarkerIDs {
		d.WriteVarint(fieldDictMarkerIDs, uint64(m))
	}
	w.staging.WriteBytes(fieldRecordNames, d.Bytes())
	_ = id
}

func (w *TraceWriter) encodeName(nw *wireWriter, name string) {
	switch w.compression {
	case CompressionDictionary:
		id := w.dict.Insert(name)
		nw.WriteVarint(fieldNameDictID, uint64(id))
	default:
		nw.WriteString(fieldNameLiteral, name)
	}
}

func (w *TraceWriter) encodeLocation(fieldNum int, out *wireWriter, loc SourceLocation) {
	var lw wireWriter
	if loc.File != "" {
		if id, seen := w.fileIDs[loc.File]; seen {
			lw.WriteVarint(fieldLocFileID, uint64(id))
		} else {
			id := w.nextFileID
			w.nextFileID++
			w.fileIDs[loc.File] = id
			lw.WriteString(fieldLocFileName, loc.File)
			lw.WriteVarint(fieldLocFileID, uint64(id))
		}
	}
	if loc.Line != 0 {
		lw.WriteVarint(fieldLocLine, uint64(loc.Line))
	}
	if loc.Column != 0 {
		lw.WriteVarint(fieldLocColumn, uint64(loc.Column))
	}
	out.WriteBytes(fieldNum, lw.Bytes())
}

// PrintBegin appends a Begin entry to the staging buffer.
func (w *TraceWriter) PrintBegin(b BeginEntry) {
	var bw wireWriter
	bw.WriteVarint(fieldBeginKind, uint64(b.Kind))

	var nw wireWriter
	w.encodeName(&nw, b.Name)
	bw.WriteBytes(fieldBeginName, nw.Bytes())

	w.encodeLocation(fieldBeginLocation, &bw, b.Location)
	bw.WriteDouble(fieldBeginTime, b.TimeStamp)
	if b.MemoryUsage != 0 {
		bw.WriteVarint(fieldBeginMemory, b.MemoryUsage)
	}
	if b.HasOrigin {
		w.encodeLocation(fieldBeginOrigin, &bw, b.TemplateOrigin)
	}

	var ew wireWriter
	ew.WriteBytes(fieldEntryBegin, bw.Bytes())
	w.staging.WriteBytes(fieldRecordEntries, ew.Bytes())
}

// PrintEnd appends an End entry to the staging buffer.
func (w *TraceWriter) PrintEnd(e EndEntry) {
	var ew2 wireWriter
	ew2.WriteDouble(fieldEndTime, e.TimeStamp)
	if e.MemoryUsage != 0 {
		ew2.WriteVarint(fieldEndMemory, e.MemoryUsage)
	}

	var ew wireWriter
	ew.WriteBytes(fieldEntryEnd, ew2.Bytes())
	w.staging.WriteBytes(fieldRecordEntries, ew.Bytes())
}

// Finalize wraps the staging buffer as the single top-level length-
// delimited record and returns the finished trace bytes.
func (w *TraceWriter) Finalize() []byte {
	var out wireWriter
	out.WriteBytes(fieldTraces, w.staging.Bytes())
	return out.Bytes()
}
