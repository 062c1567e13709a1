package tql

import (
	"regexp"
	"strings"
)

// LineKind is the closed set of line classes the parser dispatches on.
type LineKind int

const (
	LineBlank LineKind = iota
	LineSeparator
	LineDefine
	LineComment
	LineAttributeDecl
	LineBarePlays
	LineBareOwns
	LineTypeDeclStart
	LineClauseAbstract
	LineClauseOwns
	LineClausePlays
	LineClauseRelates
	LineUnrecognized
)

// Line is one classified source line. Only the fields relevant to the kind
// are set.
type Line struct {
	Kind LineKind
	Text string

	// Comment text without the leading marker.
	Comment string

	// Name of the declared or extended type.
	Name string
	// Parent of a type declaration.
	Parent string
	// Abstract marker appearing on the declaration line itself.
	Abstract bool
	// ValueType of a single-line attribute declaration.
	ValueType string

	// Attribute and IsKey of an owns line.
	Attribute string
	IsKey     bool
	// Relation and Role of a plays line; Role alone for relates.
	Relation string
	Role     string

	// Terminal marks a declaration or clause that ends its statement with `;`.
	Terminal bool

	// Remainder is inline clause text after a declaration's first comma that
	// the parser does not consume, kept so the skip stays observable.
	Remainder string
}

var (
	reSeparator      = regexp.MustCompile(`^#\s*[-=]{3,}`)
	reComment        = regexp.MustCompile(`^#\s*(.*)`)
	reSectionTitle   = regexp.MustCompile(`^#\s+([A-Z][\w\s/()-]+)`)
	reAttributeDecl  = regexp.MustCompile(`^([\w-]+)\s+sub\s+attribute\s*,\s*value\s+(\w+)\s*;`)
	reTypeDeclStart  = regexp.MustCompile(`^([\w-]+)\s+sub\s+([\w-]+)\s*([,;])`)
	reBarePlays      = regexp.MustCompile(`^([\w-]+)\s+plays\s+([\w-]+):([\w-]+)\s*;`)
	reBareOwns       = regexp.MustCompile(`^([\w-]+)\s+owns\s+([\w-]+)(\s+@key)?\s*;`)
	reClauseAbstract = regexp.MustCompile(`^\s*abstract\s*([,;])`)
	reClauseOwns     = regexp.MustCompile(`^\s*owns\s+([\w-]+)(\s+@key)?\s*([,;])`)
	reClausePlays    = regexp.MustCompile(`^\s*plays\s+([\w-]+):([\w-]+)\s*([,;])`)
	reClauseRelates  = regexp.MustCompile(`^\s*relates\s+([\w-]+)\s*([,;])`)
)

// Classify parses one raw source line into its tagged variant. The match
// order below is the grammar's first-match-wins policy, spelled out.
func Classify(raw string) Line {
	line := Line{Kind: LineUnrecognized, Text: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		line.Kind = LineBlank
		return line
	}
	if trimmed == "define" {
		line.Kind = LineDefine
		return line
	}

	if reSeparator.MatchString(raw) {
		line.Kind = LineSeparator
		return line
	}

	if m := reComment.FindStringSubmatch(raw); m != nil {
		line.Kind = LineComment
		line.Comment = strings.TrimSpace(m[1])
		return line
	}

	if m := reAttributeDecl.FindStringSubmatch(raw); m != nil {
		line.Kind = LineAttributeDecl
		line.Name = m[1]
		line.ValueType = m[2]
		line.Terminal = true
		return line
	}

	if m := reBarePlays.FindStringSubmatch(raw); m != nil {
		line.Kind = LineBarePlays
		line.Name = m[1]
		line.Relation = m[2]
		line.Role = m[3]
		line.Terminal = true
		return line
	}

	if m := reBareOwns.FindStringSubmatch(raw); m != nil {
		line.Kind = LineBareOwns
		line.Name = m[1]
		line.Attribute = m[2]
		line.IsKey = m[3] != ""
		line.Terminal = true
		return line
	}

	if m := reTypeDeclStart.FindStringSubmatchIndex(raw); m != nil {
		line.Kind = LineTypeDeclStart
		line.Name = raw[m[2]:m[3]]
		line.Parent = raw[m[4]:m[5]]

		terminator := raw[m[6]:m[7]]
		rest := raw[m[1]:]
		line.Abstract = strings.Contains(rest, "abstract")
		line.Terminal = terminator == ";" || strings.Contains(rest, ";")

		if terminator == "," && line.Terminal {
			if rem := strings.Trim(rest, " \t,;"); rem != "" && rem != "abstract" {
				line.Remainder = rem
			}
		}
		return line
	}

	if m := reClauseAbstract.FindStringSubmatch(raw); m != nil {
		line.Kind = LineClauseAbstract
		line.Terminal = m[1] == ";"
		return line
	}

	if m := reClauseOwns.FindStringSubmatch(raw); m != nil {
		line.Kind = LineClauseOwns
		line.Attribute = m[1]
		line.IsKey = m[2] != ""
		line.Terminal = m[3] == ";"
		return line
	}

	if m := reClausePlays.FindStringSubmatch(raw); m != nil {
		line.Kind = LineClausePlays
		line.Relation = m[1]
		line.Role = m[2]
		line.Terminal = m[3] == ";"
		return line
	}

	if m := reClauseRelates.FindStringSubmatch(raw); m != nil {
		line.Kind = LineClauseRelates
		line.Role = m[1]
		line.Terminal = m[2] == ";"
		return line
	}

	return line
}

// sectionTitle extracts a section title from the middle line of a
// separator/title/separator header block. Short titles and END markers are
// not section names.
func sectionTitle(raw string) (string, bool) {
	m := reSectionTitle.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	candidate := strings.TrimSpace(m[1])
	if len(candidate) <= 3 || strings.Contains(candidate, "END") {
		return "", false
	}

	return candidate, true
}
