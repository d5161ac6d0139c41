package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
files_dir: files
releases:
  - channel: Release
    version: 6.1.0
    platform: linux
    file: alchemy-6.1.0.bin
    more_info: http://localhost/notes/6.1.0
  - channel: Release
    version: 6.0.5
    platform: linux
    file: alchemy-6.0.5.bin
    hash: 0123456789abcdef0123456789abcdef
  - channel: Release
    version: 6.2.0
    platform: linux
    file: alchemy-6.2.0.bin
    hash: fedcba9876543210fedcba9876543210
    test: true
  - channel: Release
    version: 6.1.0
    platform: darwin
    file: alchemy-6.1.0.dmg
    hash: 00000000000000000000000000000000
    min_version: 6.0.0
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "alchemy-6.1.0.bin"), []byte(""), 0600))
	path := filepath.Join(dir, "releases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "files"), c.FilesDir)
	require.Len(t, c.Releases, 4)
	// md5 of the empty file
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", c.Releases[0].Hash)
	assert.True(t, c.HasFile("alchemy-6.1.0.dmg"))
	assert.False(t, c.HasFile("other.bin"))
}

func TestLoad_MissingFileForHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "releases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "releases: [}"},
		{name: "missing version", data: "releases:\n  - channel: Release\n    platform: linux\n    file: a.bin\n"},
		{name: "file with path", data: "releases:\n  - channel: Release\n    version: 1\n    platform: linux\n    file: ../a.bin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_Find(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	r, ok := c.Find("Release", "linux", false)
	require.True(t, ok)
	assert.Equal(t, "6.1.0", r.Version)

	r, ok = c.Find("Release", "linux", true)
	require.True(t, ok)
	assert.Equal(t, "6.2.0", r.Version)

	_, ok = c.Find("Beta", "linux", true)
	assert.False(t, ok)
}

func TestRelease_RequiredFor(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	r, ok := c.Find("Release", "darwin", false)
	require.True(t, ok)
	assert.True(t, r.RequiredFor("5.9.9"))
	assert.False(t, r.RequiredFor("6.0.0"))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{a: "6.1.0", b: "6.1.0", want: 0},
		{a: "6.1", b: "6.1.0", want: 0},
		{a: "6.10.0", b: "6.9.9", want: 1},
		{a: "5.0.0", b: "6.0.0", want: -1},
		{a: "6.1.0.123", b: "6.1.0.99", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
		})
	}
}
