package javascript

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	jsgrammar "github.com/smacker/go-tree-sitter/javascript"

	"github.com/imyousuf/codegauge/internal/metrics"
	"github.com/imyousuf/codegauge/internal/parser"
)

// decisionTypes maps grammar node types to the constructs that add a path.
// for_in_statement covers both for-in and for-of; see Classify.
var decisionTypes = map[string]metrics.Construct{
	"if_statement":       metrics.ConstructIf,
	"for_statement":      metrics.ConstructFor,
	"while_statement":    metrics.ConstructWhile,
	"do_statement":       metrics.ConstructDoWhile,
	"switch_statement":   metrics.ConstructSwitch,
	"catch_clause":       metrics.ConstructCatch,
	"ternary_expression": metrics.ConstructConditional,
	"for_in_statement":   metrics.ConstructForIn,
}

const maxSnippetLen = 24

// JavaScriptParser parses JavaScript source with the tree-sitter grammar.
type JavaScriptParser struct {
	sourceType parser.SourceType
}

// Option configures a JavaScriptParser.
type Option func(*JavaScriptParser)

// WithSourceType sets whether import and export declarations are accepted.
// The default is parser.Script.
func WithSourceType(t parser.SourceType) Option {
	return func(p *JavaScriptParser) { p.sourceType = t }
}

// NewParser creates a new JavaScript parser.
func NewParser(opts ...Option) *JavaScriptParser {
	p := &JavaScriptParser{sourceType: parser.Script}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SourceType returns the goal symbol strict parses check against.
func (p *JavaScriptParser) SourceType() parser.SourceType {
	return p.sourceType
}

func (p *JavaScriptParser) Language() parser.Language {
	return parser.LangJavaScript
}

func (p *JavaScriptParser) Extensions() []string {
	return parser.FileExtensions[parser.LangJavaScript]
}

// Parse builds a syntax tree. tree-sitter recovers from every syntax error,
// so Tolerant mode only fails when the parser itself gives up. Strict mode
// also applies the static rules in early.go.
func (p *JavaScriptParser) Parse(source []byte, mode parser.Mode) (*parser.Tree, error) {
	psr := sitter.NewParser()
	defer psr.Close()
	psr.SetLanguage(jsgrammar.GetLanguage())

	tree, err := psr.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &parser.ParseError{Message: err.Error()}
	}
	if tree == nil {
		return nil, &parser.ParseError{Message: "parser produced no tree"}
	}

	root := tree.RootNode()
	if mode == parser.Strict {
		var perr *parser.ParseError
		if root.HasError() {
			perr = describeError(root, source)
		} else {
			perr = checkEarlyErrors(root, source, p.sourceType)
		}
		if perr != nil {
			tree.Close()
			return nil, perr
		}
	}
	return parser.NewTree(tree, source), nil
}

func (p *JavaScriptParser) Classify(node *sitter.Node) (metrics.Construct, bool) {
	c, ok := decisionTypes[node.Type()]
	if !ok {
		return "", false
	}
	if c == metrics.ConstructForIn && hasChildOfType(node, "of") {
		return metrics.ConstructForOf, true
	}
	return c, true
}

// describeError locates the first ERROR or MISSING node in document order.
func describeError(root *sitter.Node, source []byte) *parser.ParseError {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case node.IsMissing():
			return &parser.ParseError{
				Message: fmt.Sprintf("missing %q", node.Type()),
				Line:    startLine(node),
				Column:  startColumn(node),
			}
		case node.Type() == "ERROR":
			return &parser.ParseError{
				Message: fmt.Sprintf("unexpected token %q", snippet(node.Content(source))),
				Line:    startLine(node),
				Column:  startColumn(node),
			}
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(i)
			if child == nil || !child.HasError() {
				continue
			}
			stack = append(stack, child)
		}
	}
	return &parser.ParseError{Message: "syntax error", Line: startLine(root), Column: startColumn(root)}
}

func hasChildOfType(node *sitter.Node, typeName string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == typeName {
			return true
		}
	}
	return false
}

// snippet returns the first line of s, shortened for diagnostics.
func snippet(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if len(s) > maxSnippetLen {
		s = s[:maxSnippetLen] + "..."
	}
	return s
}

func startLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func startColumn(node *sitter.Node) int {
	return int(node.StartPoint().Column) + 1
}
