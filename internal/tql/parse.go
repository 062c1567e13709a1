package tql

import (
	"fmt"
	"os"
	"strings"

	"github.com/alhazen/schemadoc/internal/model"
)

// Diagnostic records a source line the parser skipped. Parsing is
// best-effort and never fails on malformed input, but the skips stay
// observable for callers that want to log or assert on them.
type Diagnostic struct {
	File string
	Line int
	Text string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: skipped %q", d.File, d.Line, d.Text)
}

// Parser accumulates skipped-line diagnostics across files. The zero value
// is ready to use.
type Parser struct {
	Diagnostics []Diagnostic
}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses one schema source file into the shared model, recording
// every new declaration under the given namespace.
func (p *Parser) ParseFile(s *model.Schema, path string, ns string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(`failed to read schema file "%s": %w`, path, err)
	}

	p.Parse(s, string(data), ns, path)
	return nil
}

// Parse parses raw schema source into the model. The file argument is only
// used in diagnostics.
func (p *Parser) Parse(s *model.Schema, src string, ns string, file string) {
	raw := strings.Split(src, "\n")
	lines := make([]Line, len(raw))
	for i := range raw {
		lines[i] = Classify(strings.TrimRight(raw[i], " \t\r"))
	}

	var section string
	var comment []string

	i := 0
	for i < len(lines) {
		ln := lines[i]

		// A section header is a 3-line block: separator, title, separator.
		if ln.Kind == LineSeparator && i+2 < len(lines) && lines[i+2].Kind == LineSeparator {
			if title, ok := sectionTitle(raw[i+1]); ok {
				section = title
			}
			i += 3
			continue
		}

		switch ln.Kind {
		case LineSeparator:
			i++

		case LineComment:
			if ln.Comment != "" {
				comment = append(comment, ln.Comment)
			}
			i++

		case LineBlank, LineDefine:
			comment = nil
			i++

		case LineAttributeDecl:
			// First declaration wins across files.
			if s.Get(ln.Name) == nil {
				s.Add(&model.TypeDef{
					Name:      ln.Name,
					Kind:      model.KindAttribute,
					Parent:    "attribute",
					ValueType: ln.ValueType,
					DefinedIn: ns,
					Comment:   strings.Join(comment, " "),
					Section:   section,
				})
			}
			comment = nil
			i++

		case LineBarePlays:
			t := s.Placeholder(ln.Name, ns)
			t.AddPlays(model.PlaysClause{Relation: ln.Relation, Role: ln.Role, DefinedIn: ns})
			comment = nil
			i++

		case LineBareOwns:
			t := s.Placeholder(ln.Name, ns)
			t.AddOwns(model.OwnsClause{Attribute: ln.Attribute, IsKey: ln.IsKey, DefinedIn: ns})
			comment = nil
			i++

		case LineTypeDeclStart:
			i = p.parseTypeDecl(s, lines, i, ns, section, strings.Join(comment, " "), file)
			comment = nil

		default:
			p.skip(file, i+1, ln.Text)
			comment = nil
			i++
		}
	}
}

// parseTypeDecl consumes a type declaration starting at index i and returns
// the index of the first line after it. A declaration terminated with `;` on
// its first line is complete; otherwise the body loop consumes clause lines
// until one terminates the statement.
func (p *Parser) parseTypeDecl(s *model.Schema, lines []Line, i int, ns string, section string, comment string, file string) int {
	decl := lines[i]

	t := s.Get(decl.Name)
	if t == nil {
		t = &model.TypeDef{
			Name:      decl.Name,
			Kind:      model.RootKind(decl.Parent),
			Parent:    decl.Parent,
			DefinedIn: ns,
			Comment:   comment,
			Section:   section,
		}
		s.Add(t)
	}

	if decl.Abstract {
		t.Abstract = true
	}

	if decl.Remainder != "" {
		p.skip(file, i+1, decl.Remainder)
	}

	i++
	if decl.Terminal {
		return i
	}

	for i < len(lines) {
		ln := lines[i]
		i++

		switch ln.Kind {
		case LineClauseAbstract:
			t.Abstract = true

		case LineClauseOwns:
			t.AddOwns(model.OwnsClause{Attribute: ln.Attribute, IsKey: ln.IsKey, DefinedIn: ns})

		case LineClausePlays:
			t.AddPlays(model.PlaysClause{Relation: ln.Relation, Role: ln.Role, DefinedIn: ns})

		case LineClauseRelates:
			t.AddRelates(model.RelatesClause{Role: ln.Role, DefinedIn: ns})

		case LineBlank, LineComment:
			continue

		default:
			p.skip(file, i, ln.Text)
			continue
		}

		if ln.Terminal {
			break
		}
	}

	return i
}

func (p *Parser) skip(file string, line int, text string) {
	p.Diagnostics = append(p.Diagnostics, Diagnostic{
		File: file,
		Line: line,
		Text: strings.TrimSpace(text),
	})
}
