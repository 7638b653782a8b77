package main

import (
	"fmt"
	"strings"
)

// maxSegmentDepth bounds both segmentation and reconstruction recursion,
// per spec's guidance for pathological nested-template identifiers.
const maxSegmentDepth = 4096

// dictEntry is one row of the name dictionary: a marked_name with a null
// byte per factored-out segment, and the ordered ids that fill them.
type dictEntry struct {
	MarkedName string
	MarkerIDs  []int
}

// nameDictionary segments qualified template identifiers into a tree of
// entries (write side) or reassembles them from entries read off the wire
// (read side). The same type serves both directions; onNewEntry lets a
// writer observe newly minted entries so it can emit them in-line.
type nameDictionary struct {
	entries    []dictEntry
	cache      map[string]int
	onNewEntry func(id int, e dictEntry)
}

func newNameDictionary() *nameDictionary {
	return &nameDictionary{cache: make(map[string]int)}
}

func (d *nameDictionary) Len() int { return len(d.entries) }

func (d *nameDictionary) entry(id int) (dictEntry, bool) {
	if id < 0 || id >= len(d.entries) {
		return dictEntry{}, false
	}
	return d.entries[id], true
}

// Insert returns the id for name, decomposing and caching sub-entries as
// needed. Identical sub-strings share an id.
func (d *nameDictionary) Insert(name string) int {
	return d.insert(name, 0)
}

func (d *nameDictionary) insert(name string, depth int) int {
	if id, ok := d.cache[name]; ok {
		return id
	}
	marked, markers := d.decompose(name, depth)
	id := len(d.entries)
	e := dictEntry{MarkedName: marked, MarkerIDs: markers}
	d.entries = append(d.entries, e)
	d.cache[name] = id
	if d.onNewEntry != nil {
		d.onNewEntry(id, e)
	}
	return id
}

// AddRaw appends an entry received off the wire, without segmenting or
// caching by string (the reader trusts the writer's dictionary as given).
func (d *nameDictionary) AddRaw(marked string, markers []int) int {
	id := len(d.entries)
	d.entries = append(d.entries, dictEntry{MarkedName: marked, MarkerIDs: markers})
	return id
}

// decompose applies the segmentation rules: a top-level "::" splits into a
// literal qualifier and one sub-entry for the tail; failing that, a
// top-level "<...>" group splits into a literal head/tail and one
// sub-entry per top-level comma-separated argument.
func (d *nameDictionary) decompose(name string, depth int) (string, []int) {
	if depth >= maxSegmentDepth {
		return name, nil
	}
	literal := operatorLiteralAngles(name)
	if idx, ok := topLevelDoubleColon(name, literal); ok {
		qualifier, suffix := name[:idx], name[idx+2:]
		if suffix == "" {
			return name, nil
		}
		d.insert(qualifier, depth+1)
		sub := d.insert(suffix, depth+1)
		return qualifier + "::\x00", []int{sub}
	}
	if head, args, tail, ok := topLevelAngleGroup(name, literal); ok {
		var b strings.Builder
		b.WriteString(head)
		b.WriteByte('<')
		markers := make([]int, 0, len(args))
		for i, arg := range args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte(0)
			markers = append(markers, d.insert(strings.TrimSpace(arg), depth+1))
		}
		b.WriteByte('>')
		b.WriteString(tail)
		return b.String(), markers
	}
	return name, nil
}

// operatorLiteralAngles marks the byte offsets of '<' characters that are
// part of an "operator<"/"operator<<"/"operator<=" token rather than a
// template-argument opener. A run of three or more '<' right after
// "operator" is an instantiation of operator<< (e.g. "operator<<<T>"): the
// first two stay literal, the third opens the argument list.
func operatorLiteralAngles(name string) map[int]bool {
	literal := make(map[int]bool)
	for i := 0; i < len(name); i++ {
		if name[i] != '<' || (i > 0 && name[i-1] == '<') {
			continue
		}
		j := i
		for j < len(name) && name[j] == '<' {
			j++
		}
		runLen := j - i
		if i >= len("operator") && name[i-len("operator"):i] == "operator" {
			litCount := runLen
			if runLen >= 3 {
				litCount = 2
			}
			for k := 0; k < litCount; k++ {
				literal[i+k] = true
			}
		}
	}
	return literal
}

// topLevelDoubleColon finds the first "::" at angle-bracket depth 0.
func topLevelDoubleColon(name string, literal map[int]bool) (int, bool) {
	depth := 0
	for i := 0; i < len(name); i++ {
		switch {
		case name[i] == '<' && !literal[i]:
			depth++
		case name[i] == '>' && depth > 0:
			depth--
		case depth == 0 && name[i] == ':' && i+1 < len(name) && name[i+1] == ':':
			return i, true
		}
	}
	return -1, false
}

// topLevelAngleGroup finds the outermost "<...>" group, if any, splitting
// its contents on top-level commas. tail holds anything after the closing
// '>' (e.g. the "::type" in "A<int>::type", though that case is normally
// intercepted first by topLevelDoubleColon).
func topLevelAngleGroup(name string, literal map[int]bool) (head string, args []string, tail string, ok bool) {
	depth := 0
	openIdx, closeIdx, argStart := -1, -1, -1
	for i := 0; i < len(name) && closeIdx < 0; i++ {
		switch {
		case name[i] == '<' && !literal[i]:
			if depth == 0 {
				openIdx, argStart = i, i+1
			}
			depth++
		case name[i] == '>' && depth > 0:
			depth--
			if depth == 0 {
				args = append(args, name[argStart:i])
				closeIdx = i
			}
		case name[i] == ',' && depth == 1:
			args = append(args, name[argStart:i])
			argStart = i + 1
		}
	}
	if openIdx < 0 || closeIdx < 0 {
		return "", nil, "", false
	}
	return name[:openIdx], args, name[closeIdx+1:], true
}

// Reconstruct rebuilds the original string for id, substituting each
// placeholder with its marker's fully reconstructed string.
func (d *nameDictionary) Reconstruct(id int) (string, error) {
	return d.reconstruct(id, make(map[int]bool), 0)
}

func (d *nameDictionary) reconstruct(id int, visiting map[int]bool, depth int) (string, error) {
	if depth >= maxSegmentDepth {
		return "", newConvertError(ErrBadDictionary, "reconstruct", fmt.Errorf("segment depth exceeded at id %d", id))
	}
	e, ok := d.entry(id)
	if !ok {
		return "", newConvertError(ErrBadDictionary, "reconstruct", fmt.Errorf("unresolved dictionary id %d", id))
	}
	if visiting[id] {
		return "", newConvertError(ErrBadDictionary, "reconstruct", fmt.Errorf("cycle through dictionary id %d", id))
	}
	placeholders := strings.Count(e.MarkedName, "\x00")
	if placeholders != len(e.MarkerIDs) {
		return "", newConvertError(ErrBadDictionary, "reconstruct", fmt.Errorf(
			"id %d: %d placeholders, %d marker ids", id, placeholders, len(e.MarkerIDs)))
	}
	if placeholders == 0 {
		return e.MarkedName, nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	var b strings.Builder
	marker := 0
	for i := 0; i < len(e.MarkedName); i++ {
		if e.MarkedName[i] != 0 {
			b.WriteByte(e.MarkedName[i])
			continue
		}
		sub, err := d.reconstruct(e.MarkerIDs[marker], visiting, depth+1)
		if err != nil {
			return "", err
		}
		b.WriteString(sub)
		marker++
	}
	return b.String(), nil
}
