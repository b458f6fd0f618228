package locator

import (
	"context"
	"fmt"

	"github.com/terminator-run/terminator/internal/element"
)

// Diff is a line-oriented before/after comparison of two tree snapshots,
// used by actions that report what changed on screen (spec §4.4 "UI diff").
type Diff struct {
	Before string
	After  string
	Added  []string
	Removed []string
}

// CaptureAroundAction builds a before/after diff of the subtree rooted at
// scope, running action in between. scope must be non-nil: the builder
// walks from it directly.
// This is the grounding for tool responses that include "what changed".
func CaptureAroundAction(ctx context.Context, scope *element.Element, builder *element.Builder, action func() error) (*Diff, error) {
	before, err := snapshotLines(ctx, scope, builder)
	if err != nil {
		return nil, err
	}

	if err := action(); err != nil {
		return nil, err
	}

	after, err := snapshotLines(ctx, scope, builder)
	if err != nil {
		return nil, err
	}

	return &Diff{
		Before:  join(before),
		After:   join(after),
		Added:   subtract(after, before),
		Removed: subtract(before, after),
	}, nil
}

func snapshotLines(ctx context.Context, scope *element.Element, builder *element.Builder) ([]string, error) {
	tree, _, err := builder.Build(ctx, scope, nil)
	if err != nil {
		return nil, err
	}
	var lines []string
	var walk func(t *element.Tree, depth int)
	walk = func(t *element.Tree, depth int) {
		if t == nil {
			return
		}
		lines = append(lines, fmt.Sprintf("%*s%s %q", depth*2, "", t.Attrs.Role, t.Attrs.Name))
		for _, c := range t.Children {
			walk(c, depth+1)
		}
	}
	walk(tree, 0)
	return lines, nil
}

func subtract(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, l := range b {
		inB[l] = true
	}
	var out []string
	for _, l := range a {
		if !inB[l] {
			out = append(out, l)
		}
	}
	return out
}

func join(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
