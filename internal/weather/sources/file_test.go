package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previsoes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	src := NewFileSource(path)
	obs, err := src.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, "file:"+path, src.Name())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.csv"))
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
