package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOnce(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "stale_compressed.mp4")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	freshFile := filepath.Join(dir, "fresh_compressed.mp4")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	subdir := filepath.Join(dir, "keepdir")
	require.NoError(t, os.Mkdir(subdir, 0o755))
	require.NoError(t, os.Chtimes(subdir, past, past))

	New(dir, 30*time.Minute, time.Minute).SweepOnce()

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, freshFile)
	assert.DirExists(t, subdir, "directories are left alone")
}

func TestSweepOnce_MissingDirIsTolerated(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nowhere"), time.Minute, time.Minute)
	assert.NotPanics(t, s.SweepOnce)
}
