package shader_cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatic(t *testing.T) {
	c, err := NewShaderCache(WithStatic("blit", "// blit"))
	require.NoError(t, err)

	src, err := c.Resolve("blit")
	require.NoError(t, err)
	assert.Equal(t, "// blit", src)

	e, ok := c.Entry("blit")
	require.True(t, ok)
	assert.Equal(t, OriginStatic, e.Origin)
}

func TestResolveFileReadsCurrentContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	c, err := NewShaderCache(WithFile("fx", path))
	require.NoError(t, err)

	src, err := c.Resolve("fx")
	require.NoError(t, err)
	assert.Equal(t, "// v1", src)

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	src, err = c.Resolve("fx")
	require.NoError(t, err)
	assert.Equal(t, "// v2", src)
}

func TestAddFileMissing(t *testing.T) {
	_, err := NewShaderCache(WithFile("fx", filepath.Join(t.TempDir(), "missing.wgsl")))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSetup)
}

func TestResolveUnknown(t *testing.T) {
	c, err := NewShaderCache()
	require.NoError(t, err)

	_, err = c.Resolve("nope")
	assert.ErrorIs(t, err, common.ErrProgramming)
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()

	bom := filepath.Join(dir, "bom.wgsl")
	require.NoError(t, os.WriteFile(bom, append([]byte{0xEF, 0xBB, 0xBF}, "fn f() {}"...), 0o644))
	src, err := ReadSource(bom)
	require.NoError(t, err)
	assert.Equal(t, "fn f() {}", src)

	empty := filepath.Join(dir, "empty.wgsl")
	require.NoError(t, os.WriteFile(empty, []byte(" \n"), 0o644))
	_, err = ReadSource(empty)
	assert.Error(t, err)
}

func TestIDsSorted(t *testing.T) {
	c, err := NewShaderCache(WithStatic("b", "x"), WithStatic("a", "y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.IDs())
}
