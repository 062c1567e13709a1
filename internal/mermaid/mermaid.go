// Package mermaid renders a resolved schema into Mermaid diagram markup:
// class diagrams for type hierarchies and ER diagrams for relations and
// their role players.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alhazen/schemadoc/internal/model"
)

// maxNodeAttrs caps how many directly-owned attributes a diagram node lists.
const maxNodeAttrs = 5

// DefaultReserved returns the Mermaid keywords that can't be used as node
// identifiers.
func DefaultReserved() map[string]struct{} {
	return map[string]struct{}{
		"note":      {},
		"class":     {},
		"end":       {},
		"style":     {},
		"click":     {},
		"callback":  {},
		"link":      {},
		"direction": {},
		"subgraph":  {},
		"section":   {},
	}
}

// Emitter renders diagrams for one schema. rootNS is the namespace of the
// core schema file; it changes how inherited role players are collected in
// ER diagrams.
type Emitter struct {
	schema   *model.Schema
	rootNS   string
	reserved map[string]struct{}
}

func NewEmitter(schema *model.Schema, rootNS string, reserved map[string]struct{}) *Emitter {
	if reserved == nil {
		reserved = DefaultReserved()
	}

	return &Emitter{
		schema:   schema,
		rootNS:   rootNS,
		reserved: reserved,
	}
}

// safe makes a type name usable as a Mermaid identifier. Hyphens are not
// legal in identifiers and reserved words get a suffix to disambiguate.
func (e *Emitter) safe(name string) string {
	safe := strings.ReplaceAll(name, "-", "_")
	if _, ok := e.reserved[safe]; ok {
		safe += "_t"
	}

	return safe
}

// ClassDiagram renders the type hierarchy of a namespace. Attributes are
// not nodes; entity and relation nodes list up to their first five owned
// attributes. Parents from other namespaces appear once as placeholder
// nodes stereotyped with their origin namespace.
func (e *Emitter) ClassDiagram(ns string) string {
	var b stringBuilder
	b.WriteLine("classDiagram")
	b.Indent()
	b.WriteLine("direction LR")

	externalParents := make(map[string]struct{})

	for _, t := range e.schema.InNamespace(ns) {
		if t.Kind != model.KindEntity && t.Kind != model.KindRelation {
			continue
		}

		e.writeClass(&b, t.Name, t.Owns, false)

		if t.Abstract {
			b.WriteLine(fmt.Sprintf("<<abstract>> %s", e.safe(t.Name)))
		}

		if t.Parent != "" && !model.IsRootName(t.Parent) {
			b.WriteLine(fmt.Sprintf("%s <|-- %s", e.safe(t.Parent), e.safe(t.Name)))

			if p := e.schema.Get(t.Parent); p != nil && p.DefinedIn != ns {
				externalParents[t.Parent] = struct{}{}
			}
		}
	}

	ext := make([]string, 0, len(externalParents))
	for name := range externalParents {
		ext = append(ext, name)
	}
	sort.Strings(ext)

	for _, name := range ext {
		b.WriteLine(fmt.Sprintf("class %s", e.safe(name)))
		b.WriteLine(fmt.Sprintf("<<%s>> %s", e.schema.Get(name).DefinedIn, e.safe(name)))
	}

	return done(&b)
}

// ERDiagram renders the relations of a namespace and the entity types that
// can fill their roles. When sectionFilter is non-empty only relations whose
// section contains it (case-insensitive) are drawn.
//
// For the root namespace only direct role players are shown; subtypes in
// other namespaces would explode the diagram. For the other namespaces,
// same-namespace entities that inherit a role from an ancestor are included
// alongside direct players.
func (e *Emitter) ERDiagram(ns string, sectionFilter string) string {
	var b stringBuilder
	b.WriteLine("erDiagram")
	b.Indent()

	type edge struct {
		left     string
		right    string
		relation string
	}
	seen := make(map[edge]struct{})

	for _, rel := range e.schema.InNamespace(ns) {
		if rel.Kind != model.KindRelation {
			continue
		}
		if sectionFilter != "" && !strings.Contains(strings.ToLower(rel.Section), strings.ToLower(sectionFilter)) {
			continue
		}

		roles := make([]string, 0, len(rel.Relates))
		players := make(map[string][]string)
		for _, rc := range rel.Relates {
			roles = append(roles, rc.Role)
			players[rc.Role] = e.rolePlayers(ns, rel.Name, rc.Role)
		}

		for ri := 0; ri < len(roles); ri++ {
			for rj := ri + 1; rj < len(roles); rj++ {
				for _, lp := range players[roles[ri]] {
					for _, rp := range players[roles[rj]] {
						if _, ok := seen[edge{lp, rp, rel.Name}]; ok {
							continue
						}
						if _, ok := seen[edge{rp, lp, rel.Name}]; ok {
							continue
						}
						seen[edge{lp, rp, rel.Name}] = struct{}{}

						b.WriteLine(fmt.Sprintf("%s }|--o{ %s : %s", e.safe(lp), e.safe(rp), e.safe(rel.Name)))
					}
				}
			}
		}
	}

	return done(&b)
}

// rolePlayers finds the entity types that can fill one role of a relation.
func (e *Emitter) rolePlayers(ns string, relation string, role string) []string {
	players := make([]string, 0)

	for _, t := range e.schema.All() {
		if t.Kind != model.KindEntity {
			continue
		}

		if t.PlaysRole(relation, role) {
			players = append(players, t.Name)
			continue
		}

		if ns == e.rootNS || t.DefinedIn != ns {
			continue
		}

		for _, ip := range e.schema.GetInheritedPlays(t.Name) {
			if ip.Plays.Relation == relation && ip.Plays.Role == role {
				players = append(players, t.Name)
				break
			}
		}
	}

	return players
}

// Overview renders the top of the hierarchy for the index page: the given
// root type and its direct subtypes.
func (e *Emitter) Overview(rootType string) string {
	var b stringBuilder
	b.WriteLine("classDiagram")
	b.Indent()
	b.WriteLine("direction LR")

	root := e.schema.Get(rootType)
	if root == nil {
		return done(&b)
	}

	e.writeClass(&b, root.Name, root.Owns, true)
	if root.Abstract {
		b.WriteLine(fmt.Sprintf("<<abstract>> %s", e.safe(root.Name)))
	}

	children := make([]*model.TypeDef, 0)
	for _, t := range e.schema.All() {
		if t.Parent == rootType {
			children = append(children, t)
		}
	}

	for _, c := range children {
		b.WriteLine(fmt.Sprintf("%s <|-- %s", e.safe(root.Name), e.safe(c.Name)))
	}

	for _, c := range children {
		e.writeClass(&b, c.Name, c.Owns, true)
	}

	return done(&b)
}

// writeClass writes one class node, listing up to maxNodeAttrs directly
// owned attributes. withKeys also marks `@key` attributes.
func (e *Emitter) writeClass(b *stringBuilder, name string, owns []model.OwnsClause, withKeys bool) {
	if len(owns) > maxNodeAttrs {
		owns = owns[:maxNodeAttrs]
	}

	if len(owns) == 0 {
		b.WriteLine(fmt.Sprintf("class %s", e.safe(name)))
		return
	}

	b.WriteLine(fmt.Sprintf("class %s {", e.safe(name)))
	b.Indent()
	for _, o := range owns {
		if withKeys && o.IsKey {
			b.WriteLine(fmt.Sprintf("+%s @key", o.Attribute))
		} else {
			b.WriteLine(fmt.Sprintf("+%s", o.Attribute))
		}
	}
	b.DeIndent()
	b.WriteLine("}")
}

func done(b *stringBuilder) string {
	return strings.TrimSuffix(b.String(), "\n")
}
