package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadPlaylistNoPath(t *testing.T) {
	items, err := loadPlaylist("")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestLoadPlaylistList(t *testing.T) {
	path := writeFile(t, "rounds.yaml", `
- title: Harbour
  question: Where is the lighthouse?
  imageUrl: /img/harbour.jpg
  target: {x: 0.8, y: 0.2, rPct: 4}
  visibleMs: 2500
- imageUrl: /img/forest.jpg
`)

	items, err := loadPlaylist(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Harbour", items[0].Title)
	require.NotNil(t, items[0].Target)
	assert.Equal(t, 0.8, items[0].Target.X)
	assert.Equal(t, 4.0, items[0].Target.RPct)
	require.NotNil(t, items[0].VisibleMs)
	assert.Equal(t, int64(2500), *items[0].VisibleMs)

	assert.Nil(t, items[1].Target)
	assert.Nil(t, items[1].VisibleMs)
}

func TestLoadPlaylistItemsKeyAndJSON(t *testing.T) {
	path := writeFile(t, "rounds.json", `{"items":[{"imageUrl":"/a.jpg","clickRadiusPct":7}]}`)

	items, err := loadPlaylist(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ClickRadiusPct)
	assert.Equal(t, 7.0, *items[0].ClickRadiusPct)
}

func TestLoadPlaylistErrors(t *testing.T) {
	_, err := loadPlaylist(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadPlaylist(writeFile(t, "empty.yaml", "  \n"))
	assert.Error(t, err)

	_, err = loadPlaylist(writeFile(t, "scalar.yaml", "just words"))
	assert.Error(t, err)

	_, err = loadPlaylist(writeFile(t, "broken.yaml", "- imageUrl: [unterminated"))
	assert.Error(t, err)
}
