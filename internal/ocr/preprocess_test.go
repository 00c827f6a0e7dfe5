package ocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareBinarizesImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recibo.png")
	writePNG(t, path)

	pre := NewPreprocessor(testLogger())
	prePath, cleanup := pre.Prepare(path)

	require.NotEqual(t, path, prePath)
	_, err := os.Stat(prePath)
	require.NoError(t, err, "preprocessed image must exist before cleanup")

	cleanup()
	_, err = os.Stat(prePath)
	assert.True(t, os.IsNotExist(err), "cleanup must remove the preprocessed image")
}

func TestPreparePassesThroughOnUnreadableInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notanimage.png")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not pixels"), 0o644))

	pre := NewPreprocessor(testLogger())
	prePath, cleanup := pre.Prepare(path)
	defer cleanup()

	assert.Equal(t, path, prePath)
}

func TestPreparePassesThroughOnMissingFile(t *testing.T) {
	pre := NewPreprocessor(testLogger())
	prePath, cleanup := pre.Prepare("/no/such/recibo.png")
	defer cleanup()

	assert.Equal(t, "/no/such/recibo.png", prePath)
}
