// Package selector implements the selector grammar and resolution
// procedure (spec §4.3, §8). A Chain is a fully parsed selector: an ordered
// list of Steps joined by the descendant combinator ">>", each Step itself
// a conjunction of Criteria joined by "|".
package selector

import "github.com/terminator-run/terminator/internal/element"

// CriterionKind distinguishes what a single criterion matches against.
type CriterionKind string

const (
	CriterionRole       CriterionKind = "role"
	CriterionName       CriterionKind = "name"
	CriterionID         CriterionKind = "id"         // automation id, short form #id
	CriterionNativeID   CriterionKind = "native_id"
	CriterionText       CriterionKind = "text"
	CriterionClassName  CriterionKind = "class_name"
	CriterionPath       CriterionKind = "path"
	CriterionVisible    CriterionKind = "visible"
	CriterionNth        CriterionKind = "nth"
	CriterionHas        CriterionKind = "has"
	CriterionParent     CriterionKind = "parent"
	CriterionProcess    CriterionKind = "process"
	CriterionWindow     CriterionKind = "window"
	CriterionNear       CriterionKind = "near"
	CriterionAbove      CriterionKind = "above"
	CriterionBelow      CriterionKind = "below"
	CriterionRightOf    CriterionKind = "rightof"
	CriterionLeftOf     CriterionKind = "leftof"
)

// MatchMode controls how a criterion's string Value is compared.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
	MatchRegex    MatchMode = "regex"
	MatchGlob     MatchMode = "glob"
)

// Criterion is a single leaf predicate, e.g. role:Button or name:contains:Save.
type Criterion struct {
	Kind  CriterionKind
	Value string
	Mode  MatchMode

	// Nth is consulted only when Kind == CriterionNth.
	Nth int

	// Sub holds the nested chain for Has/Parent (e.g. has(role:Button)).
	Sub *Chain

	// Role, when Kind == CriterionRole, is the parsed canonical role.
	Role element.Role
}

// Step is one group of criteria in a selector chain, all of which must match
// the same node: "role:Button|name:OK".
type Step struct {
	Criteria []Criterion
}

// Chain is a full selector: steps joined by the descendant combinator ">>",
// plus the optional alternative/fallback groups a caller may attach
// alongside the primary chain (spec §4.3 "alternative_selectors",
// "fallback_selectors" are siblings of a Chain, not part of its grammar —
// modeled in locator.Locator, not here).
type Chain struct {
	Steps []Step
	Raw   string
}

// Len reports the number of descendant steps in the chain.
func (c *Chain) Len() int { return len(c.Steps) }
