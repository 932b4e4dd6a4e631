package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileLogging(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, Init(Options{DebugDir: tmpDir}))

	Info("test message", "key", "value")
	Close()

	today := time.Now().Format("2006-01-02")
	content, err := os.ReadFile(filepath.Join(tmpDir, today+".jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "test message")
}

func TestInit_StderrLevels(t *testing.T) {
	var stderr bytes.Buffer
	tmpDir := t.TempDir()

	require.NoError(t, Init(Options{
		DebugDir: tmpDir,
		Stderr:   &stderr,
	}))

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	Close()

	output := stderr.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestInit_Verbose(t *testing.T) {
	var stderr bytes.Buffer
	tmpDir := t.TempDir()

	require.NoError(t, Init(Options{
		Verbose:  true,
		DebugDir: tmpDir,
		Stderr:   &stderr,
	}))

	Debug("debug message")
	Info("info message")
	Close()

	output := stderr.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
}

func TestInit_JSONFormat(t *testing.T) {
	var stderr bytes.Buffer
	tmpDir := t.TempDir()

	require.NoError(t, Init(Options{
		Verbose:    true,
		JSONFormat: true,
		DebugDir:   tmpDir,
		Stderr:     &stderr,
	}))

	Info("json message")
	Close()

	assert.Contains(t, stderr.String(), `"msg":"json message"`)
}

func TestSetOperation_ClearOperation(t *testing.T) {
	var stderr bytes.Buffer
	tmpDir := t.TempDir()

	require.NoError(t, Init(Options{
		Verbose:  true,
		DebugDir: tmpDir,
		Stderr:   &stderr,
	}))
	defer Close()

	SetOperation("add")
	Info("installing")
	assert.Contains(t, stderr.String(), "op=add")

	ClearOperation()
	stderr.Reset()
	Info("done")
	assert.NotContains(t, stderr.String(), "op=add")
}
