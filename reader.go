package main

import "fmt"

// ChunkKind discriminates what TraceReader.Next just produced, mirroring
// the reader's Ready → Header → (Begin|End|Other)* → EndOfFile states.
type ChunkKind int

const (
	ChunkOther ChunkKind = iota
	ChunkHeader
	ChunkBegin
	ChunkEnd
	ChunkEOF
)

// wire field numbers, per spec §6.
const (
	fieldTraces = 1

	fieldHeaderVersion    = 1
	fieldHeaderSourceFile = 2

	fieldEntryBegin = 1
	fieldEntryEnd   = 2

	fieldRecordHeader  = 1
	fieldRecordEntries = 2
	fieldRecordNames   = 3

	fieldBeginKind     = 1
	fieldBeginName     = 2
	fieldBeginLocation = 3
	fieldBeginTime     = 4
	fieldBeginMemory   = 5
	fieldBeginOrigin   = 6

	fieldEndTime   = 1
	fieldEndMemory = 2

	fieldLocFileName = 1
	fieldLocFileID   = 2
	fieldLocLine     = 3
	fieldLocColumn   = 4

	fieldNameLiteral    = 1
	fieldNameCompressed = 2
	fieldNameDictID     = 3

	fieldDictMarkedName = 1
	fieldDictMarkerIDs  = 2
)

// TraceReader streams Header/Begin/End chunks out of a single length-
// delimited trace record, rehydrating names via a shared nameDictionary
// and file table as it goes.
type TraceReader struct {
	rec  *wireReader
	dict *nameDictionary
	files map[uint32]string

	SourceName string
	LastBegin  BeginEntry
	LastEnd    EndEntry
}

func newTraceReader() *TraceReader {
	return &TraceReader{
		dict:  newNameDictionary(),
		files: make(map[uint32]string),
	}
}

// StartOn consumes the outer length-delimited record (tag 1) and positions
// the reader at the first tagged element inside it.
func (r *TraceReader) StartOn(data []byte) error {
	outer := newWireReader(data)
	for !outer.done() {
		fieldNum, wireType, err := outer.ReadTag()
		if err != nil {
			return err
		}
		if fieldNum != fieldTraces || wireType != wireLengthDelim {
			if err := outer.Skip(wireType); err != nil {
				return err
			}
			continue
		}
		body, err := outer.ReadBytes()
		if err != nil {
			return err
		}
		r.rec = newWireReader(body)
		return nil
	}
	return newConvertError(ErrMalformedWire, "start_on", fmt.Errorf("missing top-level traces record"))
}

// Next advances the state machine and returns the kind of chunk produced.
// ChunkOther means "dictionary entry consumed, call Next again". ChunkEOF
// means the record is exhausted.
func (r *TraceReader) Next() (ChunkKind, error) {
	if r.rec == nil || r.rec.done() {
		return ChunkEOF, nil
	}
	fieldNum, wireType, err := r.rec.ReadTag()
	if err != nil {
		return ChunkEOF, err
	}
	switch {
	case fieldNum == fieldRecordHeader && wireType == wireLengthDelim:
		body, err := r.rec.ReadBytes()
		if err != nil {
			return ChunkEOF, err
		}
		if err := r.readHeader(body); err != nil {
			return ChunkEOF, err
		}
		return ChunkHeader, nil

	case fieldNum == fieldRecordEntries && wireType == wireLengthDelim:
		body, err := r.rec.ReadBytes()
		if err != nil {
			return ChunkEOF, err
		}
		return r.readEntry(body)

	case fieldNum == fieldRecordNames && wireType == wireLengthDelim:
		body, err := r.rec.ReadBytes()
		if err != nil {
			return ChunkEOF, err
		}
		if err := r.readDictionaryEntry(body); err != nil {
			return ChunkEOF, err
		}
		return ChunkOther, nil

	default:
		if err := r.rec.Skip(wireType); err != nil {
			return ChunkEOF, err
		}
		return r.Next()
	}
}

func (r *TraceReader) readHeader(body []byte) error {
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case fieldHeaderVersion:
			if _, err := rr.ReadVarint(); err != nil {
				return err
			}
		case fieldHeaderSourceFile:
			s, err := rr.ReadString()
			if err != nil {
				return err
			}
			r.SourceName = s
		default:
			if err := rr.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *TraceReader) readEntry(body []byte) (ChunkKind, error) {
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return ChunkEOF, err
		}
		switch fieldNum {
		case fieldEntryBegin:
			sub, err := rr.ReadBytes()
			if err != nil {
				return ChunkEOF, err
			}
			begin, err := r.readBegin(sub)
			if err != nil {
				return ChunkEOF, err
			}
			r.LastBegin = begin
			return ChunkBegin, nil
		case fieldEntryEnd:
			sub, err := rr.ReadBytes()
			if err != nil {
				return ChunkEOF, err
			}
			end, err := r.readEnd(sub)
			if err != nil {
				return ChunkEOF, err
			}
			r.LastEnd = end
			return ChunkEnd, nil
		default:
			if err := rr.Skip(wireType); err != nil {
				return ChunkEOF, err
			}
		}
	}
	return ChunkEOF, newConvertError(ErrMalformedWire, "read entry", fmt.Errorf("empty entries oneof"))
}

func (r *TraceReader) readBegin(body []byte) (BeginEntry, error) {
	var b BeginEntry
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return BeginEntry{}, err
		}
		switch fieldNum {
		case fieldBeginKind:
			v, err := rr.ReadVarint()
			if err != nil {
				return BeginEntry{}, err
			}
			b.Kind = InstantiationKind(v)
		case fieldBeginName:
			sub, err := rr.ReadBytes()
			if err != nil {
				return BeginEntry{}, err
			}
			name, err := r.readTemplateName(sub)
			if err != nil {
				return BeginEntry{}, err
			}
			b.Name = name
		case fieldBeginLocation:
			sub, err := rr.ReadBytes()
			if err != nil {
				return BeginEntry{}, err
			}
			loc, err := r.readSourceLocation(sub)
			if err != nil {
				return BeginEntry{}, err
			}
			b.Location = loc
		case fieldBeginTime:
			v, err := rr.ReadDouble()
			if err != nil {
				return BeginEntry{}, err
			}
			b.TimeStamp = v
		case fieldBeginMemory:
			v, err := rr.ReadVarint()
			if err != nil {
				return BeginEntry{}, err
			}
			b.MemoryUsage = v
		case fieldBeginOrigin:
			sub, err := rr.ReadBytes()
			if err != nil {
				return BeginEntry{}, err
			}
			loc, err := r.readSourceLocation(sub)
			if err != nil {
				return BeginEntry{}, err
			}
			b.TemplateOrigin = loc
			b.HasOrigin = true
		default:
			if err := rr.Skip(wireType); err != nil {
				return BeginEntry{}, err
			}
		}
	}
	return b, nil
}

func (r *TraceReader) readEnd(body []byte) (EndEntry, error) {
	var e EndEntry
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return EndEntry{}, err
		}
		switch fieldNum {
		case fieldEndTime:
			v, err := rr.ReadDouble()
			if err != nil {
				return EndEntry{}, err
			}
			e.TimeStamp = v
		case fieldEndMemory:
			v, err := rr.ReadVarint()
			if err != nil {
				return EndEntry{}, err
			}
			e.MemoryUsage = v
		default:
			if err := rr.Skip(wireType); err != nil {
				return EndEntry{}, err
			}
		}
	}
	return e, nil
}

func (r *TraceReader) readSourceLocation(body []byte) (SourceLocation, error) {
	var loc SourceLocation
	var fileID uint32
	var haveFileID, haveFileName bool
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return SourceLocation{}, err
		}
		switch fieldNum {
		case fieldLocFileName:
			s, err := rr.ReadString()
			if err != nil {
				return SourceLocation{}, err
			}
			loc.File = s
			haveFileName = true
		case fieldLocFileID:
			v, err := rr.ReadVarint()
			if err != nil {
				return SourceLocation{}, err
			}
			fileID = uint32(v)
			haveFileID = true
		case fieldLocLine:
			v, err := rr.ReadVarint()
			if err != nil {
				return SourceLocation{}, err
			}
			loc.Line = uint32(v)
		case fieldLocColumn:
			v, err := rr.ReadVarint()
			if err != nil {
				return SourceLocation{}, err
			}
			loc.Column = uint32(v)
		default:
			if err := rr.Skip(wireType); err != nil {
				return SourceLocation{}, err
			}
		}
	}
	if haveFileName {
		if haveFileID {
			r.files[fileID] = loc.File
		}
		return loc, nil
	}
	if haveFileID {
		name, ok := r.files[fileID]
		if !ok {
			return SourceLocation{}, newConvertError(ErrMalformedWire, "read location",
				fmt.Errorf("unresolved file id %d", fileID))
		}
		loc.File = name
		return loc, nil
	}
	return loc, nil
}

func (r *TraceReader) readTemplateName(body []byte) (string, error) {
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return "", err
		}
		switch fieldNum {
		case fieldNameLiteral:
			return rr.ReadString()
		case fieldNameCompressed:
			return "", newConvertError(ErrMalformedWire, "read template name",
				fmt.Errorf("compressed name encoding is not supported"))
		case fieldNameDictID:
			v, err := rr.ReadVarint()
			if err != nil {
				return "", err
			}
			return r.dict.Reconstruct(int(v))
		default:
			if err := rr.Skip(wireType); err != nil {
				return "", err
			}
		}
	}
	return "", newConvertError(ErrMalformedWire, "read template name", fmt.Errorf("empty TemplateName"))
}

func (r *TraceReader) readDictionaryEntry(body []byte) error {
	var markedName string
	var markerIDs []int
	rr := newWireReader(body)
	for !rr.done() {
		fieldNum, wireType, err := rr.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case fieldDictMarkedName:
			s, err := rr.ReadString()
			if err != nil {
				return err
			}
			markedName = s
		case fieldDictMarkerIDs:
			if wireType == wireLengthDelim {
				packed, err := rr.ReadBytes()
				if err != nil {
					return err
				}
				pr := newWireReader(packed)
				for !pr.done() {
					v, err := pr.ReadVarint()
					if err != nil {
						return err
					}
					markerIDs = append(markerIDs, int(v))
				}
				continue
			}
			v, err := rr.ReadVarint()
			if err != nil {
				return err
			}
			markerIDs = append(markerIDs, int(v))
		default:
			if err := rr.Skip(wireType); err != nil {
				return err
			}
		}
	}
	r.dict.AddRaw(markedName, markerIDs)
	return nil
}
