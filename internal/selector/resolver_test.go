package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/element"
)

func elements(n int) []*element.Element {
	out := make([]*element.Element, n)
	for i := range out {
		out[i] = element.New(nil, "tok", 1, element.Attributes{Name: string(rune('a' + i))})
	}
	return out
}

func TestApplyNth_PositiveIndexSelectsFromStart(t *testing.T) {
	chain, err := Parse("role:Button >> nth:1")
	require.NoError(t, err)

	matches := elements(3)
	filtered := ApplyNth(chain, matches)
	require.Len(t, filtered, 1)
	assert.Same(t, matches[1], filtered[0])
}

func TestApplyNth_NegativeIndexCountsFromEnd(t *testing.T) {
	chain, err := Parse("role:Button >> nth:-1")
	require.NoError(t, err)

	matches := elements(3)
	filtered := ApplyNth(chain, matches)
	require.Len(t, filtered, 1)
	assert.Same(t, matches[2], filtered[0])
}

func TestApplyNth_NegativeIndexOutOfRangeReturnsNil(t *testing.T) {
	chain, err := Parse("role:Button >> nth:-5")
	require.NoError(t, err)

	assert.Nil(t, ApplyNth(chain, elements(3)))
}

func TestApplyNth_PositiveIndexOutOfRangeReturnsNil(t *testing.T) {
	chain, err := Parse("role:Button >> nth:5")
	require.NoError(t, err)

	assert.Nil(t, ApplyNth(chain, elements(3)))
}

func TestApplyNth_NoNthCriterionReturnsAllMatches(t *testing.T) {
	chain, err := Parse("role:Button")
	require.NoError(t, err)

	matches := elements(3)
	assert.Equal(t, matches, ApplyNth(chain, matches))
}
