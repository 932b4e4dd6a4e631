package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Value string `json:"value"`
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, Save(path, &sample{Value: "hello"}))

	var out sample
	require.NoError(t, Load(path, &out))
	assert.Equal(t, "hello", out.Value)
}

func TestLoad_MissingFileLeavesZeroValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	out := sample{Value: "untouched"}
	require.NoError(t, Load(path, &out))
	assert.Equal(t, "untouched", out.Value)
}

func TestLoad_CorruptFileIsBackedUpAndReset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	out := sample{Value: "should be reset by caller"}
	require.NoError(t, Load(path, &out))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var sawBackup bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && e.Name() != "state.json" {
			sawBackup = true
		}
	}
	assert.True(t, sawBackup, "expected a state.json.backup.<ts> sibling")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt original should have been renamed away")
}
