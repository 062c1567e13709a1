// Package docs assembles the generated Markdown pages: one page per
// namespace, an index page, and wiki-flavoured variants of both.
package docs

import (
	"fmt"
	"strings"

	"github.com/alhazen/schemadoc/internal/config"
	"github.com/alhazen/schemadoc/internal/mermaid"
	"github.com/alhazen/schemadoc/internal/model"
)

// splitRelationCount is the relation count above which a namespace's
// relationship diagram is split into per-phase sub-diagrams, when the
// namespace has phase labels configured.
const splitRelationCount = 8

type Generator struct {
	cfg      *config.Config
	schema   *model.Schema
	em       *mermaid.Emitter
	examples Examples
}

func NewGenerator(cfg *config.Config, schema *model.Schema, examples Examples) *Generator {
	reserved := mermaid.DefaultReserved()
	if len(cfg.Diagram.ReservedWords) > 0 {
		reserved = make(map[string]struct{}, len(cfg.Diagram.ReservedWords))
		for _, w := range cfg.Diagram.ReservedWords {
			reserved[w] = struct{}{}
		}
	}

	return &Generator{
		cfg:      cfg,
		schema:   schema,
		em:       mermaid.NewEmitter(schema, cfg.Schema.RootNamespace, reserved),
		examples: examples,
	}
}

// NamespacePage builds the full Markdown page for one namespace.
func (g *Generator) NamespacePage(ns config.Namespace) string {
	lines := []string{
		fmt.Sprintf("# %s", ns.Title),
		"",
		fmt.Sprintf("> **Source:** `%s`", ns.File),
		"",
		ns.Description,
		"",
	}

	nsTypes := g.schema.InNamespace(ns.Name)
	entities, relations, attributes := splitKinds(nsTypes)

	lines = append(lines,
		fmt.Sprintf("**Summary:** %d entities, %d relations, %d attributes", len(entities), len(relations), len(attributes)),
		"",
	)

	lines = append(lines, "## Contents", "")
	lines = append(lines, "- [Type Hierarchy](#type-hierarchy)")
	lines = append(lines, "- [Relationships](#relationships)")
	if len(attributes) > 0 {
		lines = append(lines, "- [Attributes](#attributes)")
	}
	lines = append(lines, "- [Entity Types](#entity-types)")
	if len(relations) > 0 {
		lines = append(lines, "- [Relation Types](#relation-types)")
	}
	if _, ok := g.examples[ns.Name]; ok {
		lines = append(lines, "- [Query Examples](#query-examples)")
	}
	lines = append(lines, "")

	lines = append(lines, "## Type Hierarchy", "")
	lines = append(lines, fence(g.em.ClassDiagram(ns.Name))...)
	lines = append(lines, "")

	lines = append(lines, "## Relationships", "")
	if len(relations) > splitRelationCount && len(ns.Phases) > 0 {
		for i, phase := range ns.Phases {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, fmt.Sprintf("### %s", phase), "")
			lines = append(lines, fence(g.em.ERDiagram(ns.Name, phase))...)
		}
	} else {
		lines = append(lines, fence(g.em.ERDiagram(ns.Name, ""))...)
	}
	lines = append(lines, "")

	if len(attributes) > 0 {
		lines = append(lines, "## Attributes", "")
		lines = append(lines,
			"| Attribute | Value Type | Description |",
			"|-----------|-----------|-------------|",
		)
		for _, t := range attributes {
			lines = append(lines, fmt.Sprintf("| `%s` | `%s` | %s |", t.Name, t.ValueType, truncate(t.Comment, 80)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Entity Types", "")
	for _, t := range entities {
		lines = append(lines, g.typeSection(t))
	}

	if len(relations) > 0 {
		lines = append(lines, "## Relation Types", "")
		for _, t := range relations {
			lines = append(lines, g.typeSection(t))
		}
	}

	if sections, ok := g.examples[ns.Name]; ok {
		lines = append(lines, "## Query Examples", "")
		for _, section := range sections {
			lines = append(lines, fmt.Sprintf("### %s", section.Title), "")
			if section.Description != "" {
				lines = append(lines, section.Description, "")
			}
			for _, ex := range section.Examples {
				lines = append(lines, fmt.Sprintf("**%s**", ex.Title))
				if ex.Command != "" {
					lines = append(lines, fmt.Sprintf("*Used by:* `%s`", ex.Command))
				}
				lines = append(lines, "", "```typeql", ex.Query, "```", "")
			}
		}
	}

	return strings.Join(lines, "\n")
}

// typeSection documents a single entity or relation type: metadata bullets
// plus attribute, role and relates tables with inherited rows annotated.
func (g *Generator) typeSection(t *model.TypeDef) string {
	lines := []string{
		fmt.Sprintf("### `%s`", t.Name),
		"",
	}

	if t.Comment != "" {
		lines = append(lines, fmt.Sprintf("> %s", t.Comment), "")
	}

	parentDisplay := t.Parent
	if t.Parent != "" && !model.IsRootName(t.Parent) {
		parentDisplay = fmt.Sprintf("`%s`", t.Parent)
	}

	lines = append(lines,
		fmt.Sprintf("- **Kind:** %s", capitalize(string(t.Kind))),
		fmt.Sprintf("- **Parent:** %s", parentDisplay),
	)
	if t.Abstract {
		lines = append(lines, "- **Abstract:** Yes")
	}
	if t.ValueType != "" {
		lines = append(lines, fmt.Sprintf("- **Value type:** `%s`", t.ValueType))
	}
	lines = append(lines, fmt.Sprintf("- **Defined in:** `%s`", t.DefinedIn), "")

	inheritedOwns := g.schema.GetInheritedOwns(t.Name)
	if len(t.Owns) > 0 || len(inheritedOwns) > 0 {
		lines = append(lines,
			"**Attributes (owns):**",
			"",
			"| Attribute | Key? | Defined In |",
			"|-----------|------|------------|",
		)
		for _, o := range t.Owns {
			lines = append(lines, fmt.Sprintf("| `%s` | %s | %s |", o.Attribute, keyMarker(o.IsKey), t.DefinedIn))
		}
		for _, io := range inheritedOwns {
			lines = append(lines, fmt.Sprintf("| `%s` | %s | *%s* (inherited) |", io.Owns.Attribute, keyMarker(io.Owns.IsKey), io.Owns.DefinedIn))
		}
		lines = append(lines, "")
	}

	inheritedPlays := g.schema.GetInheritedPlays(t.Name)
	if len(t.Plays) > 0 || len(inheritedPlays) > 0 {
		lines = append(lines,
			"**Roles (plays):**",
			"",
			"| Relation | Role | Defined In |",
			"|----------|------|------------|",
		)
		for _, p := range t.Plays {
			lines = append(lines, fmt.Sprintf("| `%s` | `%s` | %s |", p.Relation, p.Role, t.DefinedIn))
		}
		for _, ip := range inheritedPlays {
			lines = append(lines, fmt.Sprintf("| `%s` | `%s` | *%s* (inherited) |", ip.Plays.Relation, ip.Plays.Role, ip.Plays.DefinedIn))
		}
		lines = append(lines, "")
	}

	if len(t.Relates) > 0 {
		lines = append(lines,
			"**Roles (relates):**",
			"",
			"| Role |",
			"|------|",
		)
		for _, r := range t.Relates {
			lines = append(lines, fmt.Sprintf("| `%s` |", r.Role))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func splitKinds(types []*model.TypeDef) (entities []*model.TypeDef, relations []*model.TypeDef, attributes []*model.TypeDef) {
	for _, t := range types {
		switch t.Kind {
		case model.KindEntity:
			entities = append(entities, t)
		case model.KindRelation:
			relations = append(relations, t)
		case model.KindAttribute:
			attributes = append(attributes, t)
		}
	}

	return entities, relations, attributes
}

func fence(diagram string) []string {
	return []string{"```mermaid", diagram, "```"}
}

func keyMarker(isKey bool) string {
	if isKey {
		return "@key"
	}

	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[0:1]) + s[1:]
}

// truncate shortens a description to at most n characters. Descriptions can
// carry non-ASCII punctuation, so the cut has to land on a rune boundary.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
