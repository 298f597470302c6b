// internal/config/write_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "ytmv", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	// Check for key sections
	assert.Contains(t, string(content), "[output]")
	assert.Contains(t, string(content), "[quality]")
	assert.Contains(t, string(content), "[tools]")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "deep", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	_, err = os.Stat(path)
	assert.False(t, os.IsNotExist(err), "file was not created")
}

func TestConfig_Write(t *testing.T) {
	cfg := Default()
	cfg.Output.VideoDir = "/media/clips"
	cfg.Batch.Parallel = 7

	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	err := cfg.Write(path)
	require.NoError(t, err, "Write failed")

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "/media/clips")
	assert.Contains(t, string(content), "7")
}

func TestConfig_Write_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Quality.AudioFormat = "flac"
	cfg.Extras.Subtitles = true

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Quality.AudioFormat, loaded.Quality.AudioFormat)
	assert.Equal(t, cfg.Extras.Subtitles, loaded.Extras.Subtitles)
	assert.Equal(t, cfg.Batch, loaded.Batch)
}
