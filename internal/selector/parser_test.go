package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/element"
)

func TestParse_SimpleChain(t *testing.T) {
	chain, err := Parse("role:Window >> role:Button|name:contains:Save")
	require.NoError(t, err)
	require.Equal(t, 2, chain.Len())

	assert.Equal(t, CriterionRole, chain.Steps[0].Criteria[0].Kind)
	assert.Equal(t, element.Role("Window"), chain.Steps[0].Criteria[0].Role)

	save := chain.Steps[1]
	require.Len(t, save.Criteria, 2)
	assert.Equal(t, CriterionRole, save.Criteria[0].Kind)
	assert.Equal(t, CriterionName, save.Criteria[1].Kind)
	assert.Equal(t, MatchContains, save.Criteria[1].Mode)
	assert.Equal(t, "Save", save.Criteria[1].Value)
}

func TestParse_ShortformID(t *testing.T) {
	chain, err := Parse("#submit-button")
	require.NoError(t, err)
	require.Len(t, chain.Steps, 1)
	crit := chain.Steps[0].Criteria[0]
	assert.Equal(t, CriterionID, crit.Kind)
	assert.Equal(t, MatchExact, crit.Mode)
	assert.Equal(t, "submit-button", crit.Value)
}

func TestParse_MatchModes(t *testing.T) {
	cases := []struct {
		raw      string
		wantMode MatchMode
		wantVal  string
	}{
		{"name:contains:Save", MatchContains, "Save"},
		{"name:regex:^Save.*$", MatchRegex, "^Save.*$"},
		{"name:glob:Save*", MatchGlob, "Save*"},
		{"name:Save", MatchExact, "Save"},
	}
	for _, tc := range cases {
		chain, err := Parse(tc.raw)
		require.NoError(t, err, tc.raw)
		crit := chain.Steps[0].Criteria[0]
		assert.Equal(t, tc.wantMode, crit.Mode, tc.raw)
		assert.Equal(t, tc.wantVal, crit.Value, tc.raw)
	}
}

func TestParse_NestedHasFunction(t *testing.T) {
	chain, err := Parse("role:Window >> has(role:Button|name:OK)")
	require.NoError(t, err)
	require.Len(t, chain.Steps, 2)

	crit := chain.Steps[1].Criteria[0]
	require.Equal(t, CriterionHas, crit.Kind)
	require.NotNil(t, crit.Sub)
	assert.Len(t, crit.Sub.Steps[0].Criteria, 2)
}

func TestParse_NestedParensDontBreakTopLevelSplit(t *testing.T) {
	chain, err := Parse("role:Window >> has(role:Button >> role:Icon) >> name:Done")
	require.NoError(t, err)
	require.Equal(t, 3, chain.Len())
	assert.Equal(t, CriterionName, chain.Steps[2].Criteria[0].Kind)
}

func TestParse_NthCriterion(t *testing.T) {
	chain, err := Parse("role:ListItem >> nth:2")
	require.NoError(t, err)
	crit := chain.Steps[1].Criteria[0]
	assert.Equal(t, CriterionNth, crit.Kind)
	assert.Equal(t, 2, crit.Nth)
}

func TestParse_PositionalFunctions(t *testing.T) {
	for _, name := range []string{"near", "above", "below", "rightof", "leftof"} {
		chain, err := Parse(name + "(#anchor)")
		require.NoError(t, err, name)
		assert.Equal(t, CriterionKind(name), chain.Steps[0].Criteria[0].Kind)
		assert.Equal(t, "#anchor", chain.Steps[0].Criteria[0].Value)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"role:Window >> ",
		"bogus_key:value",
		"nth:not-a-number",
		"unknownfunc(role:Button)",
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestParse_TotalAndDeterministic(t *testing.T) {
	raw := "role:Window >> role:Button|name:contains:Save >> nth:0"
	a, err := Parse(raw)
	require.NoError(t, err)
	b, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
