package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, AutoWorkers(1280, 720), 1)
	assert.GreaterOrEqual(t, AutoWorkers(0, 0), 1)
}

func TestFindLatestProject(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "a.json")
	newer := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(older, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("name: x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := FindLatestProject(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestFindLatestProjectEmptyDir(t *testing.T) {
	_, err := FindLatestProject(t.TempDir())
	assert.Error(t, err)
}

func TestImagePoolReuse(t *testing.T) {
	rect := image.Rect(0, 0, 32, 32)
	img := GetImage(rect)
	require.Equal(t, rect, img.Bounds())
	PutImage(img)

	again := GetImage(rect)
	assert.Equal(t, rect, again.Bounds())
	PutImage(again)

	other := GetImage(image.Rect(0, 0, 16, 16))
	assert.Equal(t, 16, other.Bounds().Dx())
	PutImage(other)
}
