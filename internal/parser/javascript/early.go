package javascript

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/imyousuf/codegauge/internal/parser"
)

// The grammar accepts JSX and has no early errors, so strict parses apply
// these static rules on top of the error-free tree:
//   - no JSX elements
//   - return only inside a function
//   - break only inside a loop, a switch or a matching label
//   - continue only inside a loop, and a labelled continue must name a loop
//   - no duplicate labels in one label set
//   - no name declared twice in one block when either declaration is let,
//     const or class (direct children of the block only)
//   - import and export only when the source type is Module

var functionTypes = map[string]bool{
	"function":                       true,
	"function_expression":            true,
	"function_declaration":           true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var loopTypes = map[string]bool{
	"for_statement":    true,
	"for_in_statement": true,
	"while_statement":  true,
	"do_statement":     true,
}

// label is one entry of the labels in scope, innermost first.
type label struct {
	name string
	loop bool
	next *label
}

func (l *label) find(name string) *label {
	for ; l != nil; l = l.next {
		if l.name == name {
			return l
		}
	}
	return nil
}

// position is what a statement may legally do at one point in the tree.
type position struct {
	function  bool
	breakable bool
	iterable  bool
	labels    *label
}

type frame struct {
	node *sitter.Node
	pos  position
}

// checkEarlyErrors returns the first rule violation in document order, or nil.
func checkEarlyErrors(root *sitter.Node, source []byte, sourceType parser.SourceType) *parser.ParseError {
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.node.IsNamed() {
			continue
		}
		if perr := checkNode(f.node, f.pos, source, sourceType); perr != nil {
			return perr
		}

		inner := enter(f.node, f.pos, source)
		for i := int(f.node.ChildCount()) - 1; i >= 0; i-- {
			if child := f.node.Child(i); child != nil {
				stack = append(stack, frame{node: child, pos: inner})
			}
		}
	}
	return nil
}

// enter returns the position of node's children.
func enter(node *sitter.Node, pos position, source []byte) position {
	switch t := node.Type(); {
	case functionTypes[t]:
		return position{function: true}
	case t == "class_static_block":
		return position{}
	case loopTypes[t]:
		pos.breakable = true
		pos.iterable = true
	case t == "switch_statement":
		pos.breakable = true
	case t == "labeled_statement":
		if name := node.ChildByFieldName("label"); name != nil {
			pos.labels = &label{name: name.Content(source), loop: labelsLoop(node), next: pos.labels}
		}
	}
	return pos
}

// labelsLoop reports whether a labelled statement, possibly through
// further labels, labels a loop.
func labelsLoop(node *sitter.Node) bool {
	for node != nil && node.Type() == "labeled_statement" {
		node = node.ChildByFieldName("body")
	}
	return node != nil && loopTypes[node.Type()]
}

func checkNode(node *sitter.Node, pos position, source []byte, sourceType parser.SourceType) *parser.ParseError {
	t := node.Type()
	switch {
	case strings.HasPrefix(t, "jsx_"):
		return errorAt(node, "unexpected JSX element %q", snippet(node.Content(source)))

	case t == "return_statement":
		if !pos.function {
			return errorAt(node, "illegal return statement")
		}

	case t == "break_statement":
		if name := node.ChildByFieldName("label"); name != nil {
			if pos.labels.find(name.Content(source)) == nil {
				return errorAt(name, "undefined label %q", name.Content(source))
			}
		} else if !pos.breakable {
			return errorAt(node, "illegal break statement")
		}

	case t == "continue_statement":
		if name := node.ChildByFieldName("label"); name != nil {
			l := pos.labels.find(name.Content(source))
			switch {
			case l == nil:
				return errorAt(name, "undefined label %q", name.Content(source))
			case !l.loop || !pos.iterable:
				return errorAt(name, "illegal continue statement: %q does not denote an iteration statement", l.name)
			}
		} else if !pos.iterable {
			return errorAt(node, "illegal continue statement: no surrounding iteration statement")
		}

	case t == "labeled_statement":
		if name := node.ChildByFieldName("label"); name != nil && pos.labels.find(name.Content(source)) != nil {
			return errorAt(name, "label %q has already been declared", name.Content(source))
		}

	case t == "import_statement" || t == "export_statement":
		if sourceType != parser.Module {
			keyword := strings.TrimSuffix(t, "_statement")
			return errorAt(node, "%s declarations are only valid in modules", keyword)
		}

	case t == "program" || t == "statement_block" || t == "switch_body":
		return checkDeclarations(node, source)
	}
	return nil
}

// checkDeclarations rejects a name declared twice in one block when either
// declaration is lexical. Only declarations directly in the block count.
func checkDeclarations(block *sitter.Node, source []byte) *parser.ParseError {
	lexical := make(map[string]bool)
	hoisted := make(map[string]bool)

	declare := func(name *sitter.Node, isLexical bool) *parser.ParseError {
		if name == nil || name.Type() != "identifier" {
			return nil
		}
		id := name.Content(source)
		if lexical[id] || (isLexical && hoisted[id]) {
			return errorAt(name, "identifier %q has already been declared", id)
		}
		if isLexical {
			lexical[id] = true
		} else {
			hoisted[id] = true
		}
		return nil
	}

	for _, stmt := range blockStatements(block) {
		if stmt.Type() == "export_statement" {
			if stmt = stmt.ChildByFieldName("declaration"); stmt == nil {
				continue
			}
		}
		switch stmt.Type() {
		case "lexical_declaration", "variable_declaration":
			isLexical := stmt.Type() == "lexical_declaration"
			for i := 0; i < int(stmt.NamedChildCount()); i++ {
				d := stmt.NamedChild(i)
				if d == nil || d.Type() != "variable_declarator" {
					continue
				}
				if perr := declare(d.ChildByFieldName("name"), isLexical); perr != nil {
					return perr
				}
			}
		case "class_declaration":
			if perr := declare(stmt.ChildByFieldName("name"), true); perr != nil {
				return perr
			}
		case "function_declaration", "generator_function_declaration":
			if perr := declare(stmt.ChildByFieldName("name"), false); perr != nil {
				return perr
			}
		}
	}
	return nil
}

// blockStatements lists the statements directly in block. A switch body
// shares one block across all of its clauses.
func blockStatements(block *sitter.Node) []*sitter.Node {
	var stmts []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child == nil {
			continue
		}
		if block.Type() != "switch_body" {
			stmts = append(stmts, child)
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if stmt := child.NamedChild(j); stmt != nil {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts
}

func errorAt(node *sitter.Node, format string, args ...any) *parser.ParseError {
	return &parser.ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    startLine(node),
		Column:  startColumn(node),
	}
}
