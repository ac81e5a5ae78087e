package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const inspectManifest = `
name: Inbox
classes:
  - id: letter
    name: Letter
    rules:
      - keywords: [dear, regards, sincerely]
documents:
  - id: a
    pages:
      - text: "Dear customer, dear friend\nKind regards, sincerely"
  - id: b
    class: letter
    pages:
      - text: "Dear sir"
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(inspectManifest), 0o644))
	return path
}

func TestInspect(t *testing.T) {
	path := writeManifest(t)

	result, err := inspect(context.Background(), path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Inbox", result.Name)
	assert.Equal(t, 2, result.Stats.Documents)
	assert.Equal(t, 1, result.Suggestions)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "document a")
	assert.Contains(t, result.Outline, "Batch: Inbox")

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "inbox.result.yaml"))
	assert.True(t, os.IsNotExist(err), "inspect must not export")
}

func TestInspect_MissingFile(t *testing.T) {
	_, err := inspect(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), zap.NewNop())
	assert.Error(t, err)
}

func TestWriteResult(t *testing.T) {
	result := &InspectResult{
		Path:     "/tmp/inbox.yaml",
		Name:     "Inbox",
		Problems: []string{"[validation] document is not classified (document a)"},
		Outline:  "Batch: Inbox (1 documents, 1 pages)\n",
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, "text", result))
		assert.Contains(t, buf.String(), "Batch: Inbox")
		assert.Contains(t, buf.String(), "1 open problem(s)")
		assert.Contains(t, buf.String(), "1. [validation] document is not classified")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, "json", result))
		var decoded InspectResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.Problems, decoded.Problems)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, "yaml", result))
		var decoded InspectResult
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Inbox", decoded.Name)
	})

	t.Run("no problems", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, "text", &InspectResult{Name: "Clean"}))
		assert.Contains(t, buf.String(), "No open problems")
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, writeResult(&bytes.Buffer{}, "xml", result))
	})
}
