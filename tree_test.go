package main

import (
	"reflect"
	"testing"
)

type recordingTreeBackend struct {
	opened []int
	closed []int
}

func (b *recordingTreeBackend) Initialize(string)      {}
func (b *recordingTreeBackend) Open(t TraversalTask)  { b.opened = append(b.opened, t.NodeID) }
func (b *recordingTreeBackend) Close(t TraversalTask) { b.closed = append(b.closed, t.NodeID) }
func (b *recordingTreeBackend) Finalize() error       { return nil }

// TestTreeDFSPreOrder covers invariant 7: open calls occur in DFS
// pre-order and close calls in DFS post-order, for a tree shaped
//
//	0
//	├─1
//	│ └─2
//	└─3
func TestTreeDFSPreOrder(t *testing.T) {
	backend := &recordingTreeBackend{}
	r := newTreeRecorder(backend)

	r.Begin(beginNamed("root")) // 0
	r.Begin(beginNamed("a"))    // 1
	r.Begin(beginNamed("b"))    // 2
	r.End(EndEntry{})           // closes 2
	r.End(EndEntry{})           // closes 1
	r.Begin(beginNamed("c"))    // 3
	r.End(EndEntry{})           // closes 3
	r.End(EndEntry{})           // closes 0

	if err := r.Finalize(); err != nil {
		t.Fatal(err)
	}

	wantOpen := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(backend.opened, wantOpen) {
		t.Errorf("open order = %v, want %v", backend.opened, wantOpen)
	}
	wantClose := []int{2, 1, 3, 0}
	if !reflect.DeepEqual(backend.closed, wantClose) {
		t.Errorf("close order = %v, want %v", backend.closed, wantClose)
	}
}

func TestTreeNoSentinelEndIDAfterFinalize(t *testing.T) {
	backend := &recordingTreeBackend{}
	r := newTreeRecorder(backend)
	r.Begin(beginNamed("a"))
	r.End(EndEntry{})
	if err := r.Finalize(); err != nil {
		t.Fatal(err)
	}
	for _, task := range r.tasks {
		if task.EndID == sentinelID {
			t.Errorf("task %d still has sentinel EndID after finalize", task.NodeID)
		}
	}
}
