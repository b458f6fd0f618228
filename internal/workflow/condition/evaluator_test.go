package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-run/terminator/internal/errs"
)

func TestEvaluateBool_SimpleComparison(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	ok, err := ev.EvaluateBool("output.status == 200", Vars{
		Output: map[string]interface{}{"status": int64(200)},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateBool_DollarShorthandRewritesToOutput(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	ok, err := ev.EvaluateBool(`$.status == "ok"`, Vars{
		Output: map[string]interface{}{"status": "ok"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateBool_ReferencesStepsAndInputs(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	ok, err := ev.EvaluateBool("steps.login.ok && inputs.retry", Vars{
		Steps:  map[string]interface{}{"login": map[string]interface{}{"ok": true}},
		Inputs: map[string]interface{}{"retry": true},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateBool_ReferencesState(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	ok, err := ev.EvaluateBool("state.success ? true : state.retries < 3", Vars{
		State: map[string]interface{}{"success": false, "retries": int64(1)},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateBool_NonBooleanResultErrors(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	_, err = ev.EvaluateBool("output.status", Vars{
		Output: map[string]interface{}{"status": int64(200)},
	})
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindOutputParserError, e.Kind)
}

func TestEvaluateBool_CompileErrorIsInvalidArgument(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	_, err = ev.EvaluateBool("output. ===", Vars{})
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindInvalidArgument, e.Kind)
}

func TestEvaluate_CachesCompiledProgram(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	expr := "output.count + 1"
	_, err = ev.Evaluate(expr, Vars{Output: map[string]interface{}{"count": int64(1)}})
	require.NoError(t, err)

	ev.mu.RLock()
	_, cached := ev.cache[expr]
	ev.mu.RUnlock()
	assert.True(t, cached)

	out, err := ev.Evaluate(expr, Vars{Output: map[string]interface{}{"count": int64(41)}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out)
}
