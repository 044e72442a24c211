package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/tendril"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tendril version "+strings.TrimSpace(tendril.Version)+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<a/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tendril.yaml"), []byte("log_level: error\n"), 0644))

	out, err := execute(t, "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 script(s) valid")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte("<b>"), 0644))
	_, err = execute(t, "validate", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.xml")
}
