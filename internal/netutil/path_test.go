package netutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivanlilla/webserv/internal/netutil"
	"gotest.tools/v3/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	assert.NilError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Equal(t, netutil.Classify(dir), netutil.PathDir)
	assert.Equal(t, netutil.Classify(file), netutil.PathFile)
	assert.Equal(t, netutil.Classify(filepath.Join(dir, "absent")), netutil.PathAbsent)
}

func TestIsReadableFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	assert.NilError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Assert(t, netutil.IsReadableFile(file))
	assert.Assert(t, !netutil.IsReadableFile(dir))
	assert.Assert(t, !netutil.IsReadableFile(filepath.Join(dir, "absent")))
}

func TestResolveUnder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, netutil.ResolveUnder("/base", "rel/file"), filepath.Join("/base", "rel/file"))
	assert.Equal(t, netutil.ResolveUnder("/base", "/abs/file"), "/abs/file")
}
