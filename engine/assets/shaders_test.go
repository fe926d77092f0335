package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShader(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestShaderStoreLoadsSources(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "basic.vert", "void main() {}")
	writeShader(t, dir, "terrain.frag", "void main() {}")
	writeShader(t, dir, "notes.txt", "ignored")

	ss, err := NewShaderStore()
	require.NoError(t, err)
	defer ss.Shutdown()
	require.NoError(t, ss.Initialize(dir))

	src, ok := ss.Source("basic.vert")
	assert.True(t, ok)
	assert.Equal(t, "void main() {}", src)

	_, ok = ss.Source("notes.txt")
	assert.False(t, ok)
}

func TestShaderStoreMarksDirtyOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "terrain.frag", "// v1")

	ss, err := NewShaderStore()
	require.NoError(t, err)
	defer ss.Shutdown()
	require.NoError(t, ss.Initialize(dir))

	assert.False(t, ss.ConsumeDirty("terrain.frag"))

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))

	deadline := time.Now().Add(5 * time.Second)
	for !ss.ConsumeDirty("terrain.frag") {
		if time.Now().After(deadline) {
			t.Fatal("shader never marked dirty after write")
		}
		time.Sleep(10 * time.Millisecond)
	}

	src, ok := ss.Source("terrain.frag")
	require.True(t, ok)
	assert.Equal(t, "// v2", src)
}

func TestShaderStoreShutdownIdempotent(t *testing.T) {
	ss, err := NewShaderStore()
	require.NoError(t, err)
	require.NoError(t, ss.Shutdown())
	require.NoError(t, ss.Shutdown())
}
