package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
)

func testScope() Scope {
	return Scope{
		Inputs: map[string]interface{}{
			"url":   "https://example.com",
			"count": float64(3),
		},
		Steps: map[string]interface{}{
			"login": map[string]interface{}{
				"result": map[string]interface{}{
					"items": []interface{}{
						map[string]interface{}{"name": "first"},
					},
					"ok": true,
				},
			},
		},
		Selectors: map[string]interface{}{
			"save_button": "name:Save",
		},
		Env: map[string]string{"HOME": "/root"},
	}
}

func TestResolveValue_BarePlaceholderPreservesType(t *testing.T) {
	out, err := ResolveValue("{{inputs.count}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, float64(3), out)

	out, err = ResolveValue("{{steps.login.result.ok}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestResolveValue_InterpolatedString(t *testing.T) {
	out, err := ResolveValue("fetching {{inputs.url}} x{{inputs.count}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "fetching https://example.com x3", out)
}

func TestResolveValue_NestedPath(t *testing.T) {
	out, err := ResolveValue("{{steps.login.result.items.0.name}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestResolveValue_EnvLookup(t *testing.T) {
	out, err := ResolveValue("{{env.HOME}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "/root", out)
}

func TestResolveValue_UnresolvedVariable(t *testing.T) {
	_, err := ResolveValue("{{steps.missing.result}}", testScope())
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindUnresolvedVariable, e.Kind)
}

func TestResolveValue_UnsetEnvVariable(t *testing.T) {
	_, err := ResolveValue("{{env.NOPE}}", testScope())
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindUnresolvedVariable, e.Kind)
}

func TestResolveValue_NoPlaceholderPassesThrough(t *testing.T) {
	out, err := ResolveValue("plain string", testScope())
	require.NoError(t, err)
	assert.Equal(t, "plain string", out)
}

func TestResolveValue_SelectorsNamespaceResolves(t *testing.T) {
	out, err := ResolveValue("{{selectors.save_button}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "name:Save", out)
}

func TestResolveValue_OptionalPlaceholderResolvesWhenPresent(t *testing.T) {
	out, err := ResolveValue("?{{inputs.url}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", out)
}

func TestResolveValue_OptionalPlaceholderPassesThroughWhenAbsent(t *testing.T) {
	out, err := ResolveValue("?{{inputs.missing}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "?{{inputs.missing}}", out)
}

func TestResolveValue_OptionalPlaceholderEmbeddedInString(t *testing.T) {
	out, err := ResolveValue("value=?{{inputs.missing}} fixed", testScope())
	require.NoError(t, err)
	assert.Equal(t, "value=?{{inputs.missing}} fixed", out)
}

func TestResolveValue_OptionalEnvPassesThroughWhenUnset(t *testing.T) {
	out, err := ResolveValue("?{{env.NOPE}}", testScope())
	require.NoError(t, err)
	assert.Equal(t, "?{{env.NOPE}}", out)
}

func TestResolveValue_RecursesIntoMapsAndSlices(t *testing.T) {
	input := map[string]interface{}{
		"url":  "{{inputs.url}}",
		"tags": []interface{}{"{{steps.login.result.ok}}", "literal"},
	}
	out, err := ResolveValue(input, testScope())
	require.NoError(t, err)

	resolved, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://example.com", resolved["url"])

	tags, ok := resolved["tags"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, true, tags[0])
	assert.Equal(t, "literal", tags[1])
}
