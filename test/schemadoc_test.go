package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	assert "github.com/stretchr/testify/require"

	"github.com/alhazen/schemadoc/internal/cmd"
)

func run(t *testing.T, s cmd.Settings) {
	t.Helper()

	s.SchemaDir = fixtureDir(t, "basic")
	s.Logger = zerolog.Nop()
	assert.NoError(t, cmd.Run(s))
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	run(t, cmd.Settings{OutputDir: out})

	index := readFile(t, filepath.Join(out, "index.md"))
	assert.Contains(t, index, "# Schema Documentation")
	assert.Contains(t, index, "**Total types:** 5 entities, 2 relations, 5 attributes")
	assert.Contains(t, index, "information_content_entity <|-- note_t")
	assert.Contains(t, index, "information_content_entity <|-- dataset")
	assert.Contains(t, index, "[scilit.md](scilit.md)")

	core := readFile(t, filepath.Join(out, "core.md"))
	assert.Contains(t, core, "# Core Schema")
	assert.Contains(t, core, "**Summary:** 3 entities, 1 relations, 4 attributes")
	assert.Contains(t, core, "<<abstract>> information_content_entity")
	assert.Contains(t, core, "information_content_entity }|--o{ collection : membership")
	assert.Contains(t, core, "### `note`")
	assert.Contains(t, core, "> A free-form note attached to other items.")

	scilit := readFile(t, filepath.Join(out, "scilit.md"))
	assert.Contains(t, scilit, "# Scientific Literature (scilit)")
	assert.Contains(t, scilit, "| `id` | @key | *core* (inherited) |")
	assert.Contains(t, scilit, "<<core>> note_t")
	assert.Contains(t, scilit, "paper }|--o{ dataset : citation")
}

func TestGenerateIsIdempotent(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	run(t, cmd.Settings{OutputDir: first})
	run(t, cmd.Settings{OutputDir: second})

	for _, name := range []string{"index.md", "core.md", "scilit.md"} {
		assert.Equal(t, readFile(t, filepath.Join(first, name)), readFile(t, filepath.Join(second, name)), name)
	}
}

func TestGenerateWiki(t *testing.T) {
	out := t.TempDir()
	wiki := t.TempDir()
	run(t, cmd.Settings{OutputDir: out, WikiDir: wiki})

	index := readFile(t, filepath.Join(wiki, "Schema-Reference.md"))
	assert.Contains(t, index, "# Schema Reference")
	assert.Contains(t, index, "[[Schema: Core]]")
	assert.NotContains(t, index, "[core.md](core.md)")

	core := readFile(t, filepath.Join(wiki, "Schema:-Core.md"))
	assert.Equal(t, readFile(t, filepath.Join(out, "core.md")), core)
}

func TestGenerateWikiDirMissing(t *testing.T) {
	err := cmd.Run(cmd.Settings{
		SchemaDir: fixtureDir(t, "basic"),
		OutputDir: t.TempDir(),
		WikiDir:   filepath.Join(t.TempDir(), "missing"),
		Logger:    zerolog.Nop(),
	})

	assert.Error(t, err)
}

func TestGenerateMissingSchemaDir(t *testing.T) {
	err := cmd.Run(cmd.Settings{
		SchemaDir: filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
		Logger:    zerolog.Nop(),
	})

	assert.Error(t, err)
}

func TestGenerateQueryExamples(t *testing.T) {
	out := t.TempDir()

	examples := `{
  "scilit": [
    {
      "title": "Finding papers",
      "examples": [
        {"title": "By DOI", "query": "match $p isa paper, has doi $d;", "command": "notebook search"}
      ]
    }
  ]
}`
	assert.NoError(t, os.WriteFile(filepath.Join(out, "query_examples.json"), []byte(examples), 0o644))

	run(t, cmd.Settings{OutputDir: out})

	scilit := readFile(t, filepath.Join(out, "scilit.md"))
	assert.Contains(t, scilit, "## Query Examples")
	assert.Contains(t, scilit, "### Finding papers")
	assert.Contains(t, scilit, "match $p isa paper, has doi $d;")

	core := readFile(t, filepath.Join(out, "core.md"))
	assert.NotContains(t, core, "## Query Examples")
}
