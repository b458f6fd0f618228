package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
)

func TestArgString_ReturnsValueAndPresence(t *testing.T) {
	args := map[string]interface{}{"selector": "role:Button"}
	v, ok := argString(args, "selector")
	assert.True(t, ok)
	assert.Equal(t, "role:Button", v)

	_, ok = argString(args, "missing")
	assert.False(t, ok)
}

func TestRequireString_ErrorsOnMissingOrEmpty(t *testing.T) {
	_, err := requireString(map[string]interface{}{}, "selector")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindInvalidArgument, e.Kind)

	_, err = requireString(map[string]interface{}{"selector": ""}, "selector")
	require.Error(t, err)

	v, err := requireString(map[string]interface{}{"selector": "name:Save"}, "selector")
	require.NoError(t, err)
	assert.Equal(t, "name:Save", v)
}

func TestArgFloat_CoercesNumericJSONTypes(t *testing.T) {
	assert.Equal(t, 3.5, argFloat(map[string]interface{}{"x": 3.5}, "x", 0))
	assert.Equal(t, 2.0, argFloat(map[string]interface{}{"x": int(2)}, "x", 0))
	assert.Equal(t, 7.0, argFloat(map[string]interface{}{"x": int64(7)}, "x", 0))
	assert.Equal(t, 9.0, argFloat(map[string]interface{}{}, "x", 9))
	assert.Equal(t, 9.0, argFloat(map[string]interface{}{"x": "nope"}, "x", 9))
}

func TestArgInt64_TruncatesFloat(t *testing.T) {
	assert.Equal(t, int64(5), argInt64(map[string]interface{}{"x": 5.9}, "x", 0))
	assert.Equal(t, int64(42), argInt64(map[string]interface{}{}, "x", 42))
}

func TestArgBool_FallsBackToDefaultOnWrongType(t *testing.T) {
	assert.True(t, argBool(map[string]interface{}{"x": true}, "x", false))
	assert.False(t, argBool(map[string]interface{}{"x": "true"}, "x", false))
	assert.True(t, argBool(map[string]interface{}{}, "x", true))
}

func TestArgStringSlice_AcceptsSliceOrCSVString(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, argStringSlice(map[string]interface{}{"x": []interface{}{"a", "b"}}, "x"))
	assert.Equal(t, []string{"a", "b"}, argStringSlice(map[string]interface{}{"x": "a, b"}, "x"))
	assert.Nil(t, argStringSlice(map[string]interface{}{}, "x"))
}

func TestArgMap_ReturnsNilOnWrongType(t *testing.T) {
	m := map[string]interface{}{"nested": "not-a-map"}
	assert.Nil(t, argMap(m, "nested"))

	m2 := map[string]interface{}{"nested": map[string]interface{}{"k": "v"}}
	assert.Equal(t, map[string]interface{}{"k": "v"}, argMap(m2, "nested"))
}
