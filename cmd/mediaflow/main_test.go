package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeWorkflow(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mediaflow version")
}

func TestValidateCommand(t *testing.T) {
	valid := writeWorkflow(t, "action: scale\nwidth: 640\ninput: https://example.com/a.mp4\n")
	out, err := run(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Workflow is valid.")

	invalid := writeWorkflow(t, "action: scale\nwidth: 0\ninput: https://example.com/a.mp4\n")
	out, err = run(t, "validate", invalid)
	require.Error(t, err)
	assert.Contains(t, out, "width")
}

func TestGraphCommand(t *testing.T) {
	flow := writeWorkflow(t, `action: concat
input:
  - https://example.com/a.mp4
  - https://example.com/a.mp4
`)
	out, err := run(t, "graph", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "class n1 reused;")
}
