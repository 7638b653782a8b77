package main

// SourceLocation is a (file, line, column) triple. Line and column are
// 1-based; Column is 0 when unreported.
type SourceLocation struct {
	File   string
	Line   uint32
	Column uint32
}

func (loc SourceLocation) empty() bool {
	return loc.File == "" && loc.Line == 0 && loc.Column == 0
}

// BeginEntry is an immutable record produced by the reader for the start of
// a template instantiation event.
type BeginEntry struct {
	Kind           InstantiationKind
	Name           string
	Location       SourceLocation
	TimeStamp      float64 // seconds since an unspecified epoch
	MemoryUsage    uint64  // 0 means "unreported"
	TemplateOrigin SourceLocation
	HasOrigin      bool
}

// EndEntry closes the nearest still-open BeginEntry in linear order.
type EndEntry struct {
	TimeStamp   float64
	MemoryUsage uint64
}

// TraversalTask is one node of a DFS-recorded instantiation tree. NodeID is
// the task's own position in the flat array; EndID is the first index
// strictly after this subtree (the half-open interval [NodeID+1, EndID) is
// the subtree). ParentID is sentinelID for roots.
type TraversalTask struct {
	Begin    BeginEntry
	End      EndEntry
	NodeID   int
	EndID    int
	ParentID int
}

// sentinelID marks "no parent" / "not yet closed" throughout the tree
// recorder and call-graph builder, mirroring RecordedDFSEntryTree::invalid_id
// in the original implementation.
const sentinelID = -1
