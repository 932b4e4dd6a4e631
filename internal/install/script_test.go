package install

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wenget/wenget/internal/bucket"
)

func TestPlanScriptLauncher_Python(t *testing.T) {
	plan, ok := PlanScriptLauncher(bucket.Python)
	if !HasInterpreter("python3") && !HasInterpreter("python") {
		assert.False(t, ok)
		return
	}
	assert.True(t, ok)
	assert.NotEmpty(t, plan.Interpreter)
}

func TestPlanScriptLauncher_BashDirectOnUnix(t *testing.T) {
	plan, ok := PlanScriptLauncher(bucket.Bash)
	if runtime.GOOS == "windows" {
		return
	}
	assert.True(t, ok)
	assert.True(t, plan.DirectExecute)
}

func TestHasInterpreter_Memoizes(t *testing.T) {
	first := HasInterpreter("definitely-not-a-real-interpreter-xyz")
	second := HasInterpreter("definitely-not-a-real-interpreter-xyz")
	assert.Equal(t, first, second)
	assert.False(t, first)
}
