// Package locator implements the Locator & Action Surface (spec §4.4): a
// Locator is a reusable description of "the element(s) matching this
// selector chain", while the actions in actions.go re-resolve the element
// on every attempt so a stale handle never silently acts on the wrong node.
package locator

import (
	"context"
	"time"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform"
	"github.com/terminator-run/terminator/internal/selector"
)

// DefaultTimeoutMS is used when a Locator doesn't specify its own.
const DefaultTimeoutMS = 5000

// Locator describes where to find an element, lazily, without holding a
// live handle until an action or query actually resolves it.
type Locator struct {
	backend platform.Backend
	log     *logging.Logger

	scope             *element.Element
	primary           *selector.Chain
	alternatives      []*selector.Chain
	fallbacks         []*selector.Chain
	defaultTimeoutMS  int64
}

// New builds a Locator for selectorStr rooted at the backend's desktop.
func New(backend platform.Backend, log *logging.Logger, selectorStr string) (*Locator, error) {
	chain, err := selector.Parse(selectorStr)
	if err != nil {
		return nil, err
	}
	return &Locator{
		backend:          backend,
		log:              log,
		primary:          chain,
		defaultTimeoutMS: DefaultTimeoutMS,
	}, nil
}

// Within returns a copy of the locator scoped to element e (spec §4.4
// "scope_element").
func (l *Locator) Within(e *element.Element) *Locator {
	clone := *l
	clone.scope = e
	return &clone
}

// Timeout returns a copy of the locator with a different default timeout.
func (l *Locator) Timeout(ms int64) *Locator {
	clone := *l
	clone.defaultTimeoutMS = ms
	return &clone
}

// WithAlternatives attaches selectors to be raced alongside the primary
// chain (spec §4.3 "alternative_selectors").
func (l *Locator) WithAlternatives(selectors ...string) (*Locator, error) {
	clone := *l
	for _, s := range selectors {
		chain, err := selector.Parse(s)
		if err != nil {
			return nil, err
		}
		clone.alternatives = append(clone.alternatives, chain)
	}
	return &clone, nil
}

// WithFallbacks attaches selectors tried strictly in order, only after the
// primary (and any alternatives) fail (spec §4.3 "fallback_selectors").
func (l *Locator) WithFallbacks(selectors ...string) (*Locator, error) {
	clone := *l
	for _, s := range selectors {
		chain, err := selector.Parse(s)
		if err != nil {
			return nil, err
		}
		clone.fallbacks = append(clone.fallbacks, chain)
	}
	return &clone, nil
}

// Locator returns a child locator scoped beneath this one's resolved element
// (spec §4.4 "locator(selector)" chaining): resolves the parent first, then
// parses childSelector against it.
func (l *Locator) Locator(ctx context.Context, childSelector string) (*Locator, error) {
	el, err := l.First(ctx)
	if err != nil {
		return nil, err
	}
	child, err := New(l.backend, l.log, childSelector)
	if err != nil {
		return nil, err
	}
	return child.Within(el), nil
}

// First resolves and returns the first matching element, racing any
// alternatives and falling back to fallback selectors in order.
func (l *Locator) First(ctx context.Context) (*element.Element, error) {
	matches, err := l.resolve(ctx, false)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

// All resolves every matching element.
func (l *Locator) All(ctx context.Context) ([]*element.Element, error) {
	return l.resolve(ctx, true)
}

// Validate reports whether the locator currently resolves to at least one
// element, without erroring the caller's flow on failure.
func (l *Locator) Validate(ctx context.Context) bool {
	_, err := l.resolve(ctx, false)
	return err == nil
}

// WaitFor blocks (honoring ctx) until the locator resolves or timeoutMS
// elapses, returning the first match.
func (l *Locator) WaitFor(ctx context.Context, timeoutMS int64) (*element.Element, error) {
	clone := l.Timeout(timeoutMS)
	return clone.First(ctx)
}

func (l *Locator) resolve(ctx context.Context, all bool) ([]*element.Element, error) {
	res := selector.New(l.backend, l.log)
	opts := selector.ResolveOptions{Scope: l.scope, TimeoutMS: l.defaultTimeoutMS, All: all}

	chains := append([]*selector.Chain{l.primary}, l.alternatives...)
	matches, err := res.ResolveAny(ctx, chains, opts)
	if err == nil {
		return finish(l.primary, matches, all)
	}

	for _, fb := range l.fallbacks {
		matches, fbErr := res.Resolve(ctx, fb, opts)
		if fbErr == nil {
			return finish(fb, matches, all)
		}
	}
	return nil, err
}

func finish(chain *selector.Chain, matches []*element.Element, all bool) ([]*element.Element, error) {
	if all {
		return matches, nil
	}
	filtered := selector.ApplyNth(chain, matches)
	if len(filtered) == 0 {
		return nil, errs.New(errs.KindElementNotFound, "selector matched but nth index out of range").WithSelector(chain.Raw)
	}
	if len(filtered) > 1 {
		return nil, errs.New(errs.KindAmbiguousSelector, "selector matched %d elements, expected 1", len(filtered)).WithSelector(chain.Raw).
			WithSuggestions("add nth: or a more specific criterion")
	}
	return filtered, nil
}

// now is overridable in tests.
var now = time.Now
