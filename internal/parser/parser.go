// Package parser defines the syntax parser adapter used by the analyzer.
package parser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/imyousuf/codegauge/internal/metrics"
)

// Language represents a supported programming language.
type Language string

const (
	LangJavaScript Language = "javascript"
)

// FileExtensions maps each language to its recognized file extensions.
var FileExtensions = map[Language][]string{
	LangJavaScript: {".js", ".jsx", ".mjs", ".cjs"},
}

// DisplayName returns the human-readable language name stored with analyses.
func (l Language) DisplayName() string {
	switch l {
	case LangJavaScript:
		return "JavaScript"
	default:
		return string(l)
	}
}

// Mode selects how a parser treats recoverable syntax errors.
type Mode int

const (
	// Tolerant returns a best-effort tree even when it contains error nodes.
	Tolerant Mode = iota
	// Strict rejects any input whose tree contains an error or missing node,
	// or that breaks a static rule the grammar does not enforce.
	Strict
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case Tolerant:
		return "tolerant"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// SourceType selects the goal symbol source is parsed against.
type SourceType int

const (
	// Script rejects import and export declarations.
	Script SourceType = iota
	// Module accepts import and export declarations.
	Module
)

// String returns the string representation of SourceType.
func (t SourceType) String() string {
	switch t {
	case Script:
		return "script"
	case Module:
		return "module"
	default:
		return "unknown"
	}
}

// ParseSourceType resolves "script" or "module". Empty means Script.
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "", "script":
		return Script, nil
	case "module":
		return Module, nil
	}
	return Script, fmt.Errorf("source type must be script or module, got %q", s)
}

// ParseError reports source text that is not valid under the grammar.
type ParseError struct {
	// Message is the parser diagnostic.
	Message string
	// Line and Column locate the first error (1-based). Zero when unknown.
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid source: line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "invalid source: " + e.Message
}

// Tree is a parsed syntax tree. Callers must Close it.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// NewTree wraps a tree-sitter tree together with the source it was parsed from.
func NewTree(tree *sitter.Tree, source []byte) *Tree {
	return &Tree{tree: tree, source: source}
}

// Root returns the root node of the tree.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the parsed source text.
func (t *Tree) Source() []byte {
	return t.source
}

// Close releases the native tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Parser defines the interface for the language-specific syntax parser.
type Parser interface {
	// Language returns which language this parser handles.
	Language() Language

	// Extensions returns the file extensions this parser can handle.
	Extensions() []string

	// Parse builds a syntax tree from source. It fails with *ParseError when
	// no tree can be produced, or in Strict mode when the tree has errors.
	Parse(source []byte, mode Mode) (*Tree, error)

	// Classify maps a node of this grammar to a decision construct.
	Classify(node *sitter.Node) (metrics.Construct, bool)
}
