package model

import (
	"sort"
)

// Kind is the root classification of a schema type.
type Kind string

const (
	KindEntity    Kind = "entity"
	KindRelation  Kind = "relation"
	KindAttribute Kind = "attribute"
)

// RootKind returns the kind implied by a declaration's immediate parent.
// An empty Kind means the parent is a user type and classification has to
// wait until ResolveKinds runs over the complete schema.
func RootKind(parent string) Kind {
	switch parent {
	case "entity":
		return KindEntity
	case "relation":
		return KindRelation
	case "attribute":
		return KindAttribute
	}

	return ""
}

// IsRootName reports whether name is one of the three built-in root types.
func IsRootName(name string) bool {
	return RootKind(name) != ""
}

type OwnsClause struct {
	Attribute string
	IsKey     bool
	DefinedIn string
}

type PlaysClause struct {
	Relation  string
	Role      string
	DefinedIn string
}

type RelatesClause struct {
	Role      string
	DefinedIn string
}

// TypeDef is a single declared type: an entity, relation or attribute.
type TypeDef struct {
	Name      string
	Kind      Kind
	Parent    string
	Abstract  bool
	ValueType string
	Owns      []OwnsClause
	Plays     []PlaysClause
	Relates   []RelatesClause

	// DefinedIn is the namespace that first declared the type.
	DefinedIn string
	// Comment is the doc text collected from the lines above the declaration.
	Comment string
	// Section is the section header in effect at the point of declaration.
	Section string
}

// OwnsAttribute reports whether the type directly owns the given attribute.
func (t *TypeDef) OwnsAttribute(attr string) bool {
	for _, o := range t.Owns {
		if o.Attribute == attr {
			return true
		}
	}

	return false
}

// AddOwns appends an owns clause unless the attribute is already owned.
func (t *TypeDef) AddOwns(c OwnsClause) bool {
	if t.OwnsAttribute(c.Attribute) {
		return false
	}

	t.Owns = append(t.Owns, c)
	return true
}

// PlaysRole reports whether the type directly plays the given (relation, role) pair.
func (t *TypeDef) PlaysRole(relation string, role string) bool {
	for _, p := range t.Plays {
		if p.Relation == relation && p.Role == role {
			return true
		}
	}

	return false
}

// AddPlays appends a plays clause unless the (relation, role) pair is already declared.
func (t *TypeDef) AddPlays(c PlaysClause) bool {
	if t.PlaysRole(c.Relation, c.Role) {
		return false
	}

	t.Plays = append(t.Plays, c)
	return true
}

// RelatesRole reports whether the relation type already declares the given role.
func (t *TypeDef) RelatesRole(role string) bool {
	for _, r := range t.Relates {
		if r.Role == role {
			return true
		}
	}

	return false
}

// AddRelates appends a relates clause unless the role is already declared.
func (t *TypeDef) AddRelates(c RelatesClause) bool {
	if t.RelatesRole(c.Role) {
		return false
	}

	t.Relates = append(t.Relates, c)
	return true
}

// Schema is the shared model all source files are parsed into. It is built
// once per run and read-only afterwards.
type Schema struct {
	Types map[string]*TypeDef
}

func NewSchema() *Schema {
	return &Schema{
		Types: make(map[string]*TypeDef),
	}
}

func (s *Schema) Get(name string) *TypeDef {
	return s.Types[name]
}

func (s *Schema) Add(t *TypeDef) {
	s.Types[t.Name] = t
}

// Placeholder returns the named type, creating a minimal entity-kinded
// definition when the name has not been declared yet. This keeps references
// to undeclared names resolvable instead of dropping them.
func (s *Schema) Placeholder(name string, ns string) *TypeDef {
	if t := s.Types[name]; t != nil {
		return t
	}

	t := &TypeDef{
		Name:      name,
		Kind:      KindEntity,
		DefinedIn: ns,
	}
	s.Add(t)

	return t
}

// Names returns all type names in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Ancestors walks the parent chain from name, returning
// [parent, grandparent, ...]. The walk stops when a parent is unknown or
// when a name repeats, so a cycle in the chain can't loop forever.
func (s *Schema) Ancestors(name string) []string {
	ancestors := make([]string, 0)
	seen := make(map[string]struct{})

	current := name
	for {
		t := s.Types[current]
		if t == nil || t.Parent == "" {
			break
		}

		if _, ok := seen[t.Parent]; ok {
			break
		}
		seen[t.Parent] = struct{}{}

		ancestors = append(ancestors, t.Parent)
		current = t.Parent
	}

	return ancestors
}

// InheritedOwns is an owns clause surfaced from an ancestor type.
type InheritedOwns struct {
	Owns OwnsClause
	From string
}

// InheritedPlays is a plays clause surfaced from an ancestor type.
type InheritedPlays struct {
	Plays PlaysClause
	From string
}

// GetInheritedOwns returns the owns clauses name inherits from its ancestors,
// nearest ancestor first. An attribute the type owns directly is never
// repeated, and each attribute name appears at most once in the result.
func (s *Schema) GetInheritedOwns(name string) []InheritedOwns {
	t := s.Types[name]
	if t == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(t.Owns))
	for _, o := range t.Owns {
		seen[o.Attribute] = struct{}{}
	}

	result := make([]InheritedOwns, 0)
	for _, ancestor := range s.Ancestors(name) {
		a := s.Types[ancestor]
		if a == nil {
			continue
		}

		for _, o := range a.Owns {
			if _, ok := seen[o.Attribute]; ok {
				continue
			}

			seen[o.Attribute] = struct{}{}
			result = append(result, InheritedOwns{Owns: o, From: ancestor})
		}
	}

	return result
}

// GetInheritedPlays returns the plays clauses name inherits from its
// ancestors, nearest ancestor first, deduplicated on (relation, role) with
// direct clauses taking precedence.
func (s *Schema) GetInheritedPlays(name string) []InheritedPlays {
	t := s.Types[name]
	if t == nil {
		return nil
	}

	type pair struct {
		relation string
		role     string
	}

	seen := make(map[pair]struct{}, len(t.Plays))
	for _, p := range t.Plays {
		seen[pair{p.Relation, p.Role}] = struct{}{}
	}

	result := make([]InheritedPlays, 0)
	for _, ancestor := range s.Ancestors(name) {
		a := s.Types[ancestor]
		if a == nil {
			continue
		}

		for _, p := range a.Plays {
			if _, ok := seen[pair{p.Relation, p.Role}]; ok {
				continue
			}

			seen[pair{p.Relation, p.Role}] = struct{}{}
			result = append(result, InheritedPlays{Plays: p, From: ancestor})
		}
	}

	return result
}

// ResolveKinds fills in the kind of every type whose declaration parent was
// a user type. The kind is copied from the nearest ancestor that has one;
// a type whose chain exhausts without a resolved kind defaults to entity.
func (s *Schema) ResolveKinds() {
	for _, t := range s.Types {
		if t.Kind != "" {
			continue
		}

		current := t.Parent
		for current != "" {
			p := s.Types[current]
			if p == nil {
				break
			}

			if p.Kind != "" {
				t.Kind = p.Kind
				break
			}

			current = p.Parent
		}

		if t.Kind == "" {
			t.Kind = KindEntity
		}
	}
}

// Cycles returns the names of types whose parent chain revisits a name.
// Ancestors already truncates such chains; this surfaces them so callers
// can warn about cycles in authored schema source instead of hiding them.
func (s *Schema) Cycles() []string {
	cycles := make([]string, 0)

	for _, name := range s.Names() {
		seen := map[string]struct{}{name: {}}

		current := name
		for {
			t := s.Types[current]
			if t == nil || t.Parent == "" {
				break
			}

			if _, ok := seen[t.Parent]; ok {
				cycles = append(cycles, name)
				break
			}
			seen[t.Parent] = struct{}{}

			current = t.Parent
		}
	}

	return cycles
}

var kindRank = map[Kind]int{
	KindAttribute: 0,
	KindEntity:    1,
	KindRelation:  2,
}

// InNamespace returns the types declared in a namespace, sorted attributes
// first, then entities, then relations, and by name within each kind. The
// ordering drives the presentation order of the generated pages.
func (s *Schema) InNamespace(ns string) []*TypeDef {
	types := make([]*TypeDef, 0)
	for _, t := range s.Types {
		if t.DefinedIn == ns {
			types = append(types, t)
		}
	}

	sort.Slice(types, func(i, j int) bool {
		ri, ok := kindRank[types[i].Kind]
		if !ok {
			ri = 9
		}
		rj, ok := kindRank[types[j].Kind]
		if !ok {
			rj = 9
		}

		if ri != rj {
			return ri < rj
		}

		return types[i].Name < types[j].Name
	})

	return types
}

// All returns every type in the schema, sorted by name.
func (s *Schema) All() []*TypeDef {
	types := make([]*TypeDef, 0, len(s.Types))
	for _, name := range s.Names() {
		types = append(types, s.Types[name])
	}

	return types
}

// CountKinds tallies the entity, relation and attribute types in a slice.
func CountKinds(types []*TypeDef) (entities int, relations int, attributes int) {
	for _, t := range types {
		switch t.Kind {
		case KindEntity:
			entities++
		case KindRelation:
			relations++
		case KindAttribute:
			attributes++
		}
	}

	return entities, relations, attributes
}
