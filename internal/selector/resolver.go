package selector

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform"
)

// backoffSchedule is the resolver's retry cadence (spec §4.3 "exponential
// backoff up to a 500ms cap").
var backoffSchedule = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

// Resolver resolves parsed Chains against a live platform.Backend.
type Resolver struct {
	backend platform.Backend
	log     *logging.Logger
}

// New returns a Resolver bound to backend.
func New(backend platform.Backend, log *logging.Logger) *Resolver {
	return &Resolver{backend: backend, log: log}
}

// ResolveOptions bounds a single resolution attempt (spec §4.3).
type ResolveOptions struct {
	Scope     *element.Element
	TimeoutMS int64 // 0 means no retry: resolve once and return
	All       bool  // resolve every match instead of the first
}

// Resolve walks chain against the backend, retrying with exponential
// backoff until TimeoutMS elapses (spec §4.3 resolution procedure). It
// returns ElementNotFound, AmbiguousSelector (only relevant when the caller
// expects exactly one result higher up the stack) or a resolved element.
func (r *Resolver) Resolve(ctx context.Context, chain *Chain, opts ResolveOptions) ([]*element.Element, error) {
	deadline := time.Now().Add(time.Duration(opts.TimeoutMS) * time.Millisecond)
	attempt := 0

	for {
		matches, err := r.resolveOnce(ctx, chain, opts.Scope)
		if err == nil && len(matches) > 0 {
			return matches, nil
		}
		if err != nil && !errs.Transient(err) {
			return nil, err
		}
		if opts.TimeoutMS <= 0 || time.Now().After(deadline) {
			if err != nil {
				return nil, err
			}
			return nil, errs.New(errs.KindElementNotFound, "no element matched selector %q", chain.Raw).
				WithSelector(chain.Raw).
				WithSuggestions("check alternative_selectors", "verify the element is visible and not scrolled off-screen")
		}

		wait := backoffSchedule[attempt]
		if attempt < len(backoffSchedule)-1 {
			attempt++
		}
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(ctx.Err(), errs.KindTimeout, "resolution cancelled")
		case <-time.After(wait):
		}
	}
}

// ResolveAny races several alternative chains concurrently and returns the
// first successful match set (spec §4.3 "alternative_selectors"), grounded
// on golang.org/x/sync/errgroup for bounded concurrent fan-out.
func (r *Resolver) ResolveAny(ctx context.Context, chains []*Chain, opts ResolveOptions) ([]*element.Element, error) {
	if len(chains) == 0 {
		return nil, errs.New(errs.KindInvalidSelector, "no selectors provided")
	}
	if len(chains) == 1 {
		return r.Resolve(ctx, chains[0], opts)
	}

	type result struct {
		matches []*element.Element
		err     error
	}
	resultCh := make(chan result, len(chains))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chains {
		c := c
		g.Go(func() error {
			matches, err := r.Resolve(gctx, c, opts)
			resultCh <- result{matches: matches, err: err}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	var lastErr error
	for res := range resultCh {
		if res.err == nil && len(res.matches) > 0 {
			return res.matches, nil
		}
		if res.err != nil {
			lastErr = res.err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errs.New(errs.KindElementNotFound, "no alternative selector matched")
}

func (r *Resolver) resolveOnce(ctx context.Context, chain *Chain, scope *element.Element) ([]*element.Element, error) {
	if chain == nil || len(chain.Steps) == 0 {
		return nil, errs.New(errs.KindInvalidSelector, "empty selector chain")
	}

	current := []*element.Element{scope}
	if scope == nil {
		root, err := r.backend.Root(ctx)
		if err != nil {
			return nil, err
		}
		current = []*element.Element{root}
	}

	for _, step := range chain.Steps {
		var next []*element.Element
		for _, parent := range current {
			candidates, err := r.backend.FindAll(ctx, parent, platform.FindOptions{})
			if err != nil {
				return nil, err
			}
			matched, err := r.filterStep(ctx, step, candidates)
			if err != nil {
				return nil, err
			}
			next = append(next, matched...)
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current, nil
}

func (r *Resolver) filterStep(ctx context.Context, step Step, candidates []*element.Element) ([]*element.Element, error) {
	var out []*element.Element
	for _, c := range candidates {
		ok, err := r.matchesAll(ctx, step, c, candidates)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// matchesAll reports whether c satisfies every criterion in step
// (criteria within a step are AND'd per the "|" combinator), except Nth,
// which filters the already-matched set positionally rather than per-element.
func (r *Resolver) matchesAll(ctx context.Context, step Step, c *element.Element, siblings []*element.Element) (bool, error) {
	if len(step.Criteria) == 0 {
		return true, nil
	}
	for _, crit := range step.Criteria {
		ok, err := r.matchesOne(ctx, crit, c, siblings)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (r *Resolver) matchesOne(ctx context.Context, crit Criterion, c *element.Element, siblings []*element.Element) (bool, error) {
	attrs := c.Attributes()
	switch crit.Kind {
	case CriterionRole:
		return attrs.Role == crit.Role || strings.EqualFold(attrs.NativeRole, crit.Value), nil
	case CriterionName:
		return matchString(attrs.Name, crit.Value, crit.Mode), nil
	case CriterionID:
		return matchString(attrs.AutomationID, crit.Value, crit.Mode) || matchString(attrs.NativeID, crit.Value, crit.Mode), nil
	case CriterionNativeID:
		return matchString(attrs.NativeID, crit.Value, crit.Mode), nil
	case CriterionText:
		return matchString(attrs.Value, crit.Value, crit.Mode) || matchString(attrs.Name, crit.Value, crit.Mode), nil
	case CriterionClassName:
		return matchString(attrs.NativeRole, crit.Value, crit.Mode), nil
	case CriterionVisible:
		want, err := strconv.ParseBool(crit.Value)
		if err != nil {
			return false, errs.New(errs.KindInvalidSelector, "visible requires true/false, got %q", crit.Value)
		}
		return attrs.Visible == want, nil
	case CriterionProcess:
		return strconv.Itoa(attrs.ProcessID) == crit.Value || attrs.ProcessName == crit.Value, nil
	case CriterionWindow:
		return matchString(attrs.WindowHandle, crit.Value, crit.Mode), nil
	case CriterionHas:
		children, err := r.resolveOnce(ctx, crit.Sub, c)
		if err != nil {
			return false, nil
		}
		return len(children) > 0, nil
	case CriterionParent:
		parent, err := c.Parent(ctx)
		if err != nil {
			return false, nil
		}
		matches, err := r.resolveOnce(ctx, crit.Sub, parent)
		return err == nil && len(matches) > 0, nil
	case CriterionNear, CriterionAbove, CriterionBelow, CriterionRightOf, CriterionLeftOf:
		return r.matchesPositional(ctx, crit, c, siblings)
	case CriterionNth:
		return true, nil // applied as a post-filter by the caller, not per-element
	default:
		return false, errs.New(errs.KindInvalidSelector, "unhandled criterion kind %q", crit.Kind)
	}
}

// matchesPositional locates the reference element (parsed as a nested
// selector in crit.Value) among siblings and checks c's bounds against it
// geometrically (spec §4.3 "positional filters").
func (r *Resolver) matchesPositional(ctx context.Context, crit Criterion, c *element.Element, siblings []*element.Element) (bool, error) {
	refChain, err := Parse(crit.Value)
	if err != nil {
		return false, err
	}
	var ref *element.Element
	for _, s := range siblings {
		if s == c {
			continue
		}
		matches, err := r.filterStep(ctx, refChain.Steps[len(refChain.Steps)-1], []*element.Element{s})
		if err == nil && len(matches) > 0 {
			ref = s
			break
		}
	}
	if ref == nil {
		return false, nil
	}

	a, b := c.Attributes().Bounds, ref.Attributes().Bounds
	switch crit.Kind {
	case CriterionAbove:
		return a.Bottom() <= b.Y, nil
	case CriterionBelow:
		return a.Y >= b.Bottom(), nil
	case CriterionRightOf:
		return a.X >= b.Right(), nil
	case CriterionLeftOf:
		return a.Right() <= b.X, nil
	case CriterionNear:
		dx := a.CenterX() - b.CenterX()
		dy := a.CenterY() - b.CenterY()
		const nearRadius = 150.0
		return dx*dx+dy*dy <= nearRadius*nearRadius, nil
	default:
		return false, nil
	}
}

func matchString(actual, pattern string, mode MatchMode) bool {
	switch mode {
	case MatchContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(pattern))
	case MatchRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	case MatchGlob:
		ok, err := filepath.Match(pattern, actual)
		return err == nil && ok
	default:
		return actual == pattern
	}
}

// ApplyNth filters matches down to the nth (0-indexed) element, if any Step
// in the chain specified a CriterionNth. Called by the caller after
// resolveOnce since Nth operates across the whole matched set, not per
// candidate.
func ApplyNth(chain *Chain, matches []*element.Element) []*element.Element {
	for _, step := range chain.Steps {
		for _, crit := range step.Criteria {
			if crit.Kind == CriterionNth {
				idx := crit.Nth
				if idx < 0 {
					idx += len(matches)
				}
				if idx < 0 || idx >= len(matches) {
					return nil
				}
				return []*element.Element{matches[idx]}
			}
		}
	}
	return matches
}
