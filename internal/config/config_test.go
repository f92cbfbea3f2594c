package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.ExcludePatterns)
	assert.Zero(t, cfg.Workers)
}

func TestLoad_Yml(t *testing.T) {
	dir := t.TempDir()
	content := `excludePatterns:
  - generated
  - "*.pb.go"
workers: 4
parseBudget: 5s
gitTimeout: 45s
rebuildPolicy: ratio
verbose: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"generated", "*.pb.go"}, cfg.ExcludePatterns)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.ParseBudget.Std())
	assert.Equal(t, 45*time.Second, cfg.GitTimeout.Std())
	assert.Equal(t, "ratio", cfg.RebuildPolicy)
	assert.True(t, cfg.Verbose)
}

func TestLoad_YamlFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yaml"),
		[]byte("workers: 2\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_YmlTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yml"),
		[]byte("workers: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yaml"),
		[]byte("workers: 9\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yml"),
		[]byte("workers: [not a number\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
