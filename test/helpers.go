package test

import (
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func fixtureDir(t *testing.T, folder string) string {
	wd, err := os.Getwd()
	assert.NoError(t, err, "failed to get working directory")
	return filepath.Join(wd, "fixtures", folder)
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	assert.NoError(t, err, "failed to read %s", path)
	return string(data)
}
