package main

// treeRecorder implements entrySink, buffering a linear tasks array and
// replaying it in true DFS order against a treeBackend on Finalize.
type treeRecorder struct {
	tasks      []TraversalTask
	currentTop int
	backend    treeBackend
}

// treeBackend is what a tree recorder drives once it has a complete,
// well-nested tasks array: initialize/finalize framing plus open/close
// callbacks delivered in DFS pre-/post-order.
type treeBackend interface {
	Initialize(sourceName string)
	Open(t TraversalTask)
	Close(t TraversalTask)
	Finalize() error
}

func newTreeRecorder(backend treeBackend) *treeRecorder {
	return &treeRecorder{currentTop: sentinelID, backend: backend}
}

func (r *treeRecorder) Initialize(sourceName string) { r.backend.Initialize(sourceName) }

func (r *treeRecorder) Begin(b BeginEntry) {
	task := TraversalTask{
		Begin:    b,
		NodeID:   len(r.tasks),
		ParentID: r.currentTop,
		EndID:    sentinelID,
	}
	r.tasks = append(r.tasks, task)
	r.currentTop = task.NodeID
}

func (r *treeRecorder) End(e EndEntry) {
	if r.currentTop == sentinelID {
		return
	}
	t := &r.tasks[r.currentTop]
	t.End = e
	t.EndID = len(r.tasks)
	r.currentTop = t.ParentID
}

// Finalize replays tasks in index order, maintaining an open-stack of
// unclosed indices: whenever the stack top's subtree ends at or before the
// current index, it is popped and closed. This turns the flat begin/end
// recording into true DFS pre-order Open calls and post-order Close calls.
func (r *treeRecorder) Finalize() error {
	var openStack []int
	for i := range r.tasks {
		for len(openStack) > 0 && r.tasks[openStack[len(openStack)-1]].EndID <= i {
			top := openStack[len(openStack)-1]
			openStack = openStack[:len(openStack)-1]
			r.backend.Close(r.tasks[top])
		}
		r.backend.Open(r.tasks[i])
		openStack = append(openStack, i)
	}
	for len(openStack) > 0 {
		top := openStack[len(openStack)-1]
		openStack = openStack[:len(openStack)-1]
		r.backend.Close(r.tasks[top])
	}
	return r.backend.Finalize()
}
