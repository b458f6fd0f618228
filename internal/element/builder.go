package element

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// buildStats accumulates counters during a tree walk (grounded on the
// tree-builder's treeStats pattern: atomic counters updated concurrently
// across batched children, read back into Stats once the walk finishes).
type buildStats struct {
	nodesVisited atomic.Int64
	maxDepthSeen atomic.Int64
	truncated    atomic.Bool
}

func (s *buildStats) recordDepth(d int) {
	for {
		cur := s.maxDepthSeen.Load()
		if int64(d) <= cur || s.maxDepthSeen.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

// Builder constructs Tree snapshots from a live Element, applying the mode,
// depth, yield and batching controls of BuildOptions (spec §4.2).
// BuildOptions.TimeoutPerOp is not applied.
type Builder struct {
	opts BuildOptions

	yieldCount int
}

// NewBuilder returns a Builder with opts defaults filled in.
func NewBuilder(opts BuildOptions) *Builder {
	if opts.Mode == "" {
		opts.Mode = ModeFast
	}
	if opts.Mode == ModeSmart && opts.SmartDepth == 0 {
		opts.SmartDepth = DefaultSmartDepth
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 8
	}
	return &Builder{opts: opts}
}

// Build walks from root, producing a Tree snapshot and Stats. The walk stops
// early — with Stats.Truncated set — if ctx is done, token fires, or
// MaxDepth is exceeded.
func (b *Builder) Build(ctx context.Context, root *Element, token *CancelToken) (*Tree, Stats, error) {
	start := time.Now()
	stats := &buildStats{}

	node, err := b.walk(ctx, root, 0, stats, token)
	if err != nil {
		return nil, Stats{}, err
	}

	return node, Stats{
		NodeCount: int(stats.nodesVisited.Load()),
		MaxDepth:  int(stats.maxDepthSeen.Load()),
		Truncated: stats.truncated.Load(),
		ElapsedMS: time.Since(start).Milliseconds(),
	}, nil
}

func (b *Builder) walk(ctx context.Context, e *Element, depth int, stats *buildStats, token *CancelToken) (*Tree, error) {
	if ctxCancelled(ctx, token) {
		stats.truncated.Store(true)
		return nil, ctx.Err()
	}
	if b.opts.MaxDepth > 0 && depth > b.opts.MaxDepth {
		stats.truncated.Store(true)
		return nil, nil
	}

	stats.nodesVisited.Add(1)
	stats.recordDepth(depth)
	b.maybeYield()

	attrs, err := b.loadAttrs(ctx, e, depth)
	if err != nil {
		return nil, err
	}

	node := &Tree{Attrs: attrs, element: e}

	children, err := e.Children(ctx)
	if err != nil {
		// A child-enumeration failure on one node shouldn't sink the whole
		// walk; record it as a truncation point and keep the node itself.
		stats.truncated.Store(true)
		return node, nil
	}
	if len(children) == 0 {
		return node, nil
	}

	childNodes := make([]*Tree, len(children))
	if len(children) >= b.opts.BatchSize {
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range children {
			i, c := i, c
			g.Go(func() error {
				n, err := b.walk(gctx, c, depth+1, stats, token)
				if err != nil {
					return nil // per-child errors don't abort siblings
				}
				childNodes[i] = n
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, c := range children {
			n, err := b.walk(ctx, c, depth+1, stats, token)
			if err != nil {
				continue
			}
			childNodes[i] = n
		}
	}

	for _, n := range childNodes {
		if n != nil {
			node.Children = append(node.Children, n)
		}
	}
	return node, nil
}

// loadAttrs applies the PropertyLoadingMode: Fast uses the cached attribute
// bag as-is, Complete always re-fetches, Smart re-fetches only above the
// smart-depth threshold.
func (b *Builder) loadAttrs(ctx context.Context, e *Element, depth int) (Attributes, error) {
	switch b.opts.Mode {
	case ModeComplete:
		return e.Refresh(ctx)
	case ModeSmart:
		if depth <= b.opts.SmartDepth {
			return e.Refresh(ctx)
		}
		return e.Attributes(), nil
	default: // ModeFast
		return e.Attributes(), nil
	}
}

func (b *Builder) maybeYield() {
	if b.opts.YieldEveryNElements <= 0 {
		return
	}
	b.yieldCount++
	if b.yieldCount%b.opts.YieldEveryNElements == 0 {
		runtime.Gosched()
	}
}
