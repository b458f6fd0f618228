package element

import "context"

// Tree is a serializable snapshot of a UI subtree, built by a backend's
// tree-builder (spec §4.2 "Tree building"). Unlike Element, a Tree node does
// not hold a live handle — it's a point-in-time capture meant for diffing,
// logging, and LLM consumption.
type Tree struct {
	Attrs    Attributes `json:"attrs"`
	Children []*Tree    `json:"children,omitempty"`

	// element is the live handle this node was captured from, kept so
	// callers can re-acquire actions without re-walking the tree.
	element *Element
}

// Element returns the live handle this snapshot node was captured from, or
// nil if the tree was deserialized rather than built in-process.
func (t *Tree) Element() *Element { return t.element }

// NewScopeOnlyTree wraps e as a single-node Tree with no children, for the
// max_depth=0 boundary case (spec §8: "max_depth=0 returns only the scope
// element").
func NewScopeOnlyTree(e *Element) *Tree {
	return &Tree{Attrs: e.Attributes(), element: e}
}

// Stats summarizes a tree build (spec §4.2 "treeStats").
type Stats struct {
	NodeCount   int
	MaxDepth    int
	Truncated   bool
	ElapsedMS   int64
}

// PropertyLoadingMode controls how much per-node work a tree build performs
// (spec §4.2).
type PropertyLoadingMode string

const (
	// ModeFast uses each element's cached attribute bag as-is, with no
	// re-fetch from the backend — cheapest, for broad scans.
	ModeFast PropertyLoadingMode = "fast"
	// ModeComplete loads every attribute on every node.
	ModeComplete PropertyLoadingMode = "complete"
	// ModeSmart loads full attributes up to a shallow depth (K, default 3)
	// and falls back to fast loading below that, trading completeness for
	// speed on deep subtrees.
	ModeSmart PropertyLoadingMode = "smart"
)

// DefaultSmartDepth is the K threshold ModeSmart uses when unset.
const DefaultSmartDepth = 3

// BuildOptions configures a tree build (spec §4.2).
type BuildOptions struct {
	Mode               PropertyLoadingMode
	SmartDepth         int // only consulted when Mode == ModeSmart; 0 means DefaultSmartDepth
	MaxDepth           int // 0 means unlimited
	TimeoutPerOp       int64 // milliseconds; Builder does not read it, so no per-node timeout is applied
	YieldEveryNElements int  // cooperative yield cadence; 0 disables yielding
	BatchSize          int  // a node with at least this many children walks them all concurrently, else sequentially; <=0 means 8
}

// CancelToken lets a long tree build be aborted mid-walk, surfacing whatever
// was gathered so far with Truncated set (spec §4.2 "Cancellation").
type CancelToken struct {
	ch chan struct{}
}

// NewCancelToken returns a token that has not fired.
func NewCancelToken() *CancelToken {
	return &CancelToken{ch: make(chan struct{})}
}

// Cancel fires the token. Safe to call more than once.
func (t *CancelToken) Cancel() {
	select {
	case <-t.ch:
	default:
		close(t.ch)
	}
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the token fires, for use in select
// statements and context plumbing.
func (t *CancelToken) Done() <-chan struct{} { return t.ch }

// ctxCancelled reports whether ctx or token (possibly nil) has fired.
func ctxCancelled(ctx context.Context, token *CancelToken) bool {
	if ctx.Err() != nil {
		return true
	}
	if token != nil && token.Cancelled() {
		return true
	}
	return false
}
