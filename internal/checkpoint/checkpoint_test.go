package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRewritesFullFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	log := New(path)

	require.NoError(t, log.Record("/e/pa1.html", SuffixSuccess))
	require.NoError(t, log.Record("/e/pb2.html", SuffixFail))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/e/pa1.html-Success", "/e/pb2.html-Fail"}, loaded.Entries())
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	log, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, log.Entries())
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	log := New(path)
	require.NoError(t, log.Record("/e/pa1.html", SuffixNone))

	entries := log.Entries()
	entries[0] = "mutated"
	assert.Equal(t, []string{"/e/pa1.html"}, log.Entries())
}
