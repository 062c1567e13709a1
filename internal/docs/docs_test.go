package docs

import (
	"strings"
	"testing"
	"unicode/utf8"

	assert "github.com/stretchr/testify/require"

	"github.com/alhazen/schemadoc/internal/config"
	"github.com/alhazen/schemadoc/internal/model"
)

func buildConfig() *config.Config {
	return &config.Config{
		Schema: config.Schema{
			Root:          "core.tql",
			RootNamespace: "core",
			Extensions:    "namespaces",
		},
		Namespaces: []config.Namespace{
			{
				Name:        "core",
				Title:       "Core Schema",
				Description: "The foundational notebook model.",
				File:        "core.tql",
				WikiPage:    "Schema: Core",
			},
			{
				Name:        "scilit",
				Title:       "Scientific Literature (scilit)",
				Description: "Domain subtypes for literature analysis.",
				File:        "namespaces/scilit.tql",
				WikiPage:    "Schema: Scientific Literature",
			},
		},
		Index: config.Index{
			Title:    "Schema Documentation",
			Overview: "A knowledge graph schema for agent memory systems.",
			RootType: "thing",
			WikiPage: "Schema Reference",
		},
	}
}

func buildSchema() *model.Schema {
	s := model.NewSchema()

	s.Add(&model.TypeDef{
		Name:      "id",
		Kind:      model.KindAttribute,
		Parent:    "attribute",
		ValueType: "string",
		DefinedIn: "core",
		Comment:   "Unique identifier.",
	})
	s.Add(&model.TypeDef{
		Name:      "thing",
		Kind:      model.KindEntity,
		Parent:    "entity",
		Abstract:  true,
		DefinedIn: "core",
		Comment:   "The root of the model.",
		Owns: []model.OwnsClause{
			{Attribute: "id", IsKey: true, DefinedIn: "core"},
		},
	})
	s.Add(&model.TypeDef{
		Name:      "paper",
		Kind:      model.KindEntity,
		Parent:    "thing",
		DefinedIn: "scilit",
		Owns: []model.OwnsClause{
			{Attribute: "doi", DefinedIn: "scilit"},
		},
		Plays: []model.PlaysClause{
			{Relation: "citation", Role: "citing", DefinedIn: "scilit"},
			{Relation: "citation", Role: "cited", DefinedIn: "scilit"},
		},
	})
	s.Add(&model.TypeDef{
		Name:      "citation",
		Kind:      model.KindRelation,
		Parent:    "relation",
		DefinedIn: "scilit",
		Relates: []model.RelatesClause{
			{Role: "citing", DefinedIn: "scilit"},
			{Role: "cited", DefinedIn: "scilit"},
		},
	})
	s.Add(&model.TypeDef{
		Name:      "doi",
		Kind:      model.KindAttribute,
		Parent:    "attribute",
		ValueType: "string",
		DefinedIn: "scilit",
	})

	return s
}

func TestNamespacePage(t *testing.T) {
	cfg := buildConfig()
	g := NewGenerator(cfg, buildSchema(), Examples{})

	page := g.NamespacePage(cfg.Namespaces[1])

	assert.Contains(t, page, "# Scientific Literature (scilit)")
	assert.Contains(t, page, "> **Source:** `namespaces/scilit.tql`")
	assert.Contains(t, page, "**Summary:** 1 entities, 1 relations, 1 attributes")
	assert.Contains(t, page, "- [Type Hierarchy](#type-hierarchy)")
	assert.Contains(t, page, "- [Relation Types](#relation-types)")
	assert.NotContains(t, page, "- [Query Examples](#query-examples)")
	assert.Contains(t, page, "```mermaid\nclassDiagram")
	assert.Contains(t, page, "```mermaid\nerDiagram")
	assert.Contains(t, page, "| `doi` | `string` |  |")
	assert.Contains(t, page, "### `paper`")
	assert.Contains(t, page, "### `citation`")
}

func TestTypeSectionInheritedRows(t *testing.T) {
	cfg := buildConfig()
	g := NewGenerator(cfg, buildSchema(), Examples{})

	section := g.typeSection(buildSchema().Get("paper"))

	// Direct row first, inherited row annotated with its source namespace.
	assert.Contains(t, section, "| `doi` |  | scilit |")
	assert.Contains(t, section, "| `id` | @key | *core* (inherited) |")
	assert.Contains(t, section, "- **Parent:** `thing`")
	assert.Less(t, strings.Index(section, "| `doi` |"), strings.Index(section, "| `id` |"))
}

func TestTypeSectionRootParentUnquoted(t *testing.T) {
	cfg := buildConfig()
	g := NewGenerator(cfg, buildSchema(), Examples{})

	section := g.typeSection(buildSchema().Get("thing"))

	assert.Contains(t, section, "- **Kind:** Entity")
	assert.Contains(t, section, "- **Parent:** entity")
	assert.Contains(t, section, "- **Abstract:** Yes")
	assert.Contains(t, section, "> The root of the model.")
}

func TestNamespacePageExamples(t *testing.T) {
	cfg := buildConfig()
	examples := Examples{
		"scilit": {
			{
				Title:       "Finding papers",
				Description: "Common lookups.",
				Examples: []Example{
					{Title: "By DOI", Query: "match $p isa paper;", Command: "notebook search"},
				},
			},
		},
	}
	g := NewGenerator(cfg, buildSchema(), examples)

	page := g.NamespacePage(cfg.Namespaces[1])

	assert.Contains(t, page, "- [Query Examples](#query-examples)")
	assert.Contains(t, page, "## Query Examples")
	assert.Contains(t, page, "### Finding papers")
	assert.Contains(t, page, "**By DOI**")
	assert.Contains(t, page, "*Used by:* `notebook search`")
	assert.Contains(t, page, "```typeql\nmatch $p isa paper;\n```")

	// The core page has no examples entry and no examples section.
	corePage := g.NamespacePage(cfg.Namespaces[0])
	assert.NotContains(t, corePage, "## Query Examples")
}

func TestNamespacePageSplitsPhases(t *testing.T) {
	cfg := buildConfig()
	cfg.Namespaces = append(cfg.Namespaces, config.Namespace{
		Name:   "apm",
		Title:  "Precision Medicine (apm)",
		File:   "namespaces/apm.tql",
		Phases: []string{"Diagnostic Phase", "Therapeutic Phase"},
	})

	s := buildSchema()
	for i := 0; i < 9; i++ {
		name := string(rune('a'+i)) + "-rel"
		s.Add(&model.TypeDef{
			Name:      name,
			Kind:      model.KindRelation,
			Parent:    "relation",
			DefinedIn: "apm",
			Section:   "Diagnostic Phase",
		})
	}

	g := NewGenerator(cfg, s, Examples{})
	page := g.NamespacePage(*cfg.Namespace("apm"))

	assert.Contains(t, page, "### Diagnostic Phase")
	assert.Contains(t, page, "### Therapeutic Phase")
	assert.Equal(t, 3, strings.Count(page, "```mermaid"))
}

func TestNamespacePageSinglePhaseDiagramBelowThreshold(t *testing.T) {
	cfg := buildConfig()
	cfg.Namespaces[1].Phases = []string{"Diagnostic Phase"}

	g := NewGenerator(cfg, buildSchema(), Examples{})
	page := g.NamespacePage(cfg.Namespaces[1])

	// One relation only, so the diagram is not split.
	assert.NotContains(t, page, "### Diagnostic Phase")
	assert.Equal(t, 2, strings.Count(page, "```mermaid"))
}

func TestIndexPage(t *testing.T) {
	cfg := buildConfig()
	g := NewGenerator(cfg, buildSchema(), Examples{})

	page := g.IndexPage(false)

	assert.Contains(t, page, "# Schema Documentation")
	assert.Contains(t, page, "A knowledge graph schema for agent memory systems.")
	assert.Contains(t, page, "**Total types:** 2 entities, 1 relations, 2 attributes")
	assert.Contains(t, page, "## Core Model")
	assert.Contains(t, page, "thing <|-- paper")
	assert.Contains(t, page, "| **Core Schema** |")
	assert.Contains(t, page, "[core.md](core.md)")
	assert.Contains(t, page, "[scilit.md](scilit.md)")
	assert.NotContains(t, page, "[[Schema: Core]]")
}

func TestIndexPageWiki(t *testing.T) {
	cfg := buildConfig()
	g := NewGenerator(cfg, buildSchema(), Examples{})

	page := g.IndexPage(true)

	assert.Contains(t, page, "# Schema Reference")
	assert.Contains(t, page, "[[Schema: Core]]")
	assert.Contains(t, page, "[[Schema: Scientific Literature]]")
	assert.NotContains(t, page, "[core.md](core.md)")
}

func TestTruncateRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	arrows := strings.Repeat("→", 10)
	out := truncate(arrows, 4)
	assert.Equal(t, "→→→→", out)
	assert.True(t, utf8.ValidString(out))
}

func TestIndexPageNonASCIIDescriptions(t *testing.T) {
	cfg := buildConfig()
	cfg.Namespaces[0].Description = "Provenance and classification — " + strings.Repeat("Collection → Thing ", 8)

	s := buildSchema()
	s.Get("doi").Comment = "Digital object identifier — " + strings.Repeat("Paper → Journal ", 8)

	g := NewGenerator(cfg, s, Examples{})

	assert.True(t, utf8.ValidString(g.IndexPage(false)))
	assert.True(t, utf8.ValidString(g.IndexPage(true)))
	assert.True(t, utf8.ValidString(g.NamespacePage(cfg.Namespaces[1])))
}

func TestWikiFilename(t *testing.T) {
	assert.Equal(t, "Schema:-Core.md", WikiFilename("Schema: Core"))
	assert.Equal(t, "Schema:-Scientific-Literature.md", WikiFilename("Schema: Scientific Literature"))
	assert.Equal(t, "Schema-Reference.md", WikiFilename("Schema Reference"))
}

func TestPagesAreIdempotent(t *testing.T) {
	cfg := buildConfig()

	first := NewGenerator(cfg, buildSchema(), Examples{})
	second := NewGenerator(cfg, buildSchema(), Examples{})

	assert.Equal(t, first.IndexPage(false), second.IndexPage(false))
	for _, ns := range cfg.Namespaces {
		assert.Equal(t, first.NamespacePage(ns), second.NamespacePage(ns))
	}
}
