package install

import (
	"os/exec"
	"runtime"
	"sync"

	"github.com/wenget/wenget/internal/bucket"
)

// interpreterCache memoizes interpreter-availability lookups once per
// process (§9 "per-process memoized interpreter-availability map").
type interpreterCache struct {
	mu    sync.Mutex
	found map[string]bool
}

var interpreters = &interpreterCache{found: make(map[string]bool)}

// HasInterpreter reports whether name is on PATH, memoizing the result
// for the lifetime of the process — interpreter presence does not change
// during a single command invocation.
func HasInterpreter(name string) bool {
	interpreters.mu.Lock()
	defer interpreters.mu.Unlock()
	if v, ok := interpreters.found[name]; ok {
		return v
	}
	_, err := exec.LookPath(name)
	found := err == nil
	interpreters.found[name] = found
	return found
}

// ScriptLauncherPlan describes how to invoke a script of the given type,
// resolved once so the caller can both validate availability and render
// the launcher (§4.4 "Script installation").
type ScriptLauncherPlan struct {
	// Interpreter is the binary invoked, empty when the script is
	// directly executable on this OS (a bash script on UNIX).
	Interpreter string
	// Args are the interpreter's flags preceding the script path itself.
	Args []string
	// DirectExecute is true when the launcher should symlink/exec the
	// script directly rather than through an interpreter.
	DirectExecute bool
}

// PlanScriptLauncher resolves how scriptType should be launched on the
// current OS, per §4.4's per-type rules.
func PlanScriptLauncher(scriptType bucket.ScriptType) (ScriptLauncherPlan, bool) {
	switch scriptType {
	case bucket.PowerShell:
		if runtime.GOOS == "windows" {
			return ScriptLauncherPlan{Interpreter: "powershell", Args: []string{"-ExecutionPolicy", "Bypass", "-File"}}, true
		}
		if HasInterpreter("pwsh") {
			return ScriptLauncherPlan{Interpreter: "pwsh", Args: []string{"-ExecutionPolicy", "Bypass", "-File"}}, true
		}
		return ScriptLauncherPlan{}, false
	case bucket.Bash:
		if runtime.GOOS != "windows" {
			return ScriptLauncherPlan{DirectExecute: true}, true
		}
		if HasInterpreter("bash") {
			return ScriptLauncherPlan{Interpreter: "bash"}, true
		}
		return ScriptLauncherPlan{}, false
	case bucket.Python:
		for _, candidate := range []string{"python3", "python"} {
			if HasInterpreter(candidate) {
				return ScriptLauncherPlan{Interpreter: candidate}, true
			}
		}
		return ScriptLauncherPlan{}, false
	case bucket.Batch:
		if runtime.GOOS == "windows" {
			return ScriptLauncherPlan{DirectExecute: true}, true
		}
		return ScriptLauncherPlan{}, false
	default:
		return ScriptLauncherPlan{}, false
	}
}
