package docs

import (
	"fmt"
	"strings"
)

// IndexPage builds the overview document: global counts, a diagram of the
// configured root type and its direct subtypes, and a namespace summary
// table. In wiki mode the namespace table uses [[wiki links]] instead of
// relative Markdown links.
func (g *Generator) IndexPage(wiki bool) string {
	title := g.cfg.Index.Title
	if wiki && g.cfg.Index.WikiPage != "" {
		title = g.cfg.Index.WikiPage
	}

	lines := []string{
		fmt.Sprintf("# %s", title),
		"",
		"> Auto-generated by `schemadoc`. Do not edit manually.",
		"",
	}

	if g.cfg.Index.Overview != "" {
		lines = append(lines, "## Overview", "", g.cfg.Index.Overview, "")
	}

	entities, relations, attributes := splitKinds(g.schema.All())
	lines = append(lines,
		fmt.Sprintf("**Total types:** %d entities, %d relations, %d attributes", len(entities), len(relations), len(attributes)),
		"",
	)

	if g.cfg.Index.RootType != "" {
		lines = append(lines, "## Core Model", "")
		lines = append(lines, fence(g.em.Overview(g.cfg.Index.RootType))...)
		lines = append(lines, "")
	}

	lines = append(lines, "## Namespaces", "")
	if wiki {
		lines = append(lines,
			"| Namespace | Description | Entities | Relations | Attributes |",
			"|-----------|-------------|----------|-----------|------------|",
		)
	} else {
		lines = append(lines,
			"| Namespace | Description | Entities | Relations | Attributes | Docs |",
			"|-----------|-------------|----------|-----------|------------|------|",
		)
	}

	for _, ns := range g.cfg.Namespaces {
		nsEntities, nsRelations, nsAttributes := splitKinds(g.schema.InNamespace(ns.Name))

		if wiki {
			lines = append(lines, fmt.Sprintf(
				"| [[%s]] | %s... | %d | %d | %d |",
				wikiPage(ns.WikiPage, ns.Title), truncate(ns.Description, 70), len(nsEntities), len(nsRelations), len(nsAttributes),
			))
		} else {
			lines = append(lines, fmt.Sprintf(
				"| **%s** | %s... | %d | %d | %d | [%s.md](%s.md) |",
				ns.Title, truncate(ns.Description, 60), len(nsEntities), len(nsRelations), len(nsAttributes), ns.Name, ns.Name,
			))
		}
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// WikiFilename converts a wiki page name to its file name:
// "Schema: Core" becomes "Schema:-Core.md".
func WikiFilename(page string) string {
	name := strings.ReplaceAll(page, ": ", ":-")
	name = strings.ReplaceAll(name, " ", "-")
	return name + ".md"
}

func wikiPage(page string, fallback string) string {
	if page != "" {
		return page
	}

	return fallback
}
