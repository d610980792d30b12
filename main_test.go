package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzdigest/nzdigest/internal/engine"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_language: en
cors_origins:
  - https://nzdigest.app
models:
  - id: llama-3.3-70b-versatile
    display_name: LLaMA 3.3 70B
  - id: qwen/qwen3-32b
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	fc, err := loadFileConfig()
	require.NoError(t, err)
	assert.Equal(t, "en", fc.DefaultLanguage)
	assert.Equal(t, []string{"https://nzdigest.app"}, fc.CORSOrigins)

	infos := fc.modelInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, "LLaMA 3.3 70B", infos[0].DisplayName)
	assert.Equal(t, "qwen/qwen3-32b", infos[1].ID)
}

func TestLoadFileConfig_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")

	fc, err := loadFileConfig()
	require.NoError(t, err)
	assert.Empty(t, fc.Models)
}

func TestLoadFileConfig_MissingExplicitFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loadFileConfig()
	assert.Error(t, err)
}

func TestLoadFileConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [unclosed"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err := loadFileConfig()
	assert.Error(t, err)
}

func TestWriteDigest_Markdown(t *testing.T) {
	res := &engine.DigestResult{
		Transcript: engine.TranscriptResult{
			VideoMetadata: engine.VideoMetadata{VideoTitle: "Never Gonna Give You Up", ChannelName: "Rick Astley", ViewCount: "1,500,000,000 views"},
		},
		Summary: engine.SummaryResult{
			MainTopic:  "Commitment",
			Chronology: []engine.SummaryItem{},
			KeyPoints:  []engine.SummaryItem{{Title: "Loyalty", Explanation: "Never giving up."}},
			Insights:   []engine.SummaryItem{},
			Conclusion: "A classic.",
		},
		Language: "en",
	}
	var buf bytes.Buffer
	require.NoError(t, writeDigest(&buf, res, "markdown"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Never Gonna Give You Up\n\n_Rick Astley · 1,500,000,000 views_\n\n"))
	assert.Contains(t, out, "- **Loyalty**: Never giving up.")
}

func TestWriteModels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeModels(&buf, []engine.ModelInfo{
		{ID: "gemini-flash", DisplayName: "Gemini Flash", Family: "gemini", Default: true},
		{ID: "qwen/qwen3-32b", DisplayName: "Qwen 3 32B", Family: "groq"},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[2], "qwen/qwen3-32b")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "transcript", "summarize", "models"} {
		assert.Contains(t, names, want)
	}
}
