package javascript

import (
	"errors"
	"strings"
	"testing"

	"github.com/imyousuf/codegauge/internal/parser"
)

func TestParseStrictRejectsEarlyErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		line    int
	}{
		{"top-level return", "return 1;", "illegal return statement", 1},
		{"return in a block", "if (x) {\n  return;\n}", "illegal return statement", 2},
		{"jsx element", "const x = <div/>;", "JSX", 1},
		{"jsx with children", "const x = (\n  <ul><li>a</li></ul>\n);", "JSX", 2},
		{"top-level break", "break;", "illegal break statement", 1},
		{"break in a function inside a loop", "while (x) { (function () { break; })(); }", "illegal break statement", 1},
		{"top-level continue", "continue;", "illegal continue statement", 1},
		{"continue in a switch", "switch (x) { case 1: continue; }", "illegal continue statement", 1},
		{"undefined break label", "while (x) { break outer; }", `undefined label "outer"`, 1},
		{"continue to a block label", "outer: { while (x) { continue outer; } }", "does not denote an iteration statement", 1},
		{"duplicate label", "a: a: while (x) {}", `label "a" has already been declared`, 1},
		{"duplicate let", "let x = 1; let x = 2;", `identifier "x" has already been declared`, 1},
		{"const after var", "var y;\nconst y = 1;", `identifier "y" has already been declared`, 2},
		{"let after function", "function f() {}\nlet f;", `identifier "f" has already been declared`, 2},
		{"duplicate class", "class C {}\nclass C {}", `identifier "C" has already been declared`, 2},
		{"duplicate let in a function body", "function g() { let a; let a; }", `identifier "a" has already been declared`, 1},
		{"duplicate let across switch cases", "switch (x) { case 1: let a; break; case 2: let a; }", `identifier "a" has already been declared`, 1},
		{"import in a script", "import x from 'y';", "import declarations are only valid in modules", 1},
		{"export in a script", "export const a = 1;", "export declarations are only valid in modules", 1},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := p.Parse([]byte(tt.code), parser.Strict)
			if err == nil {
				tree.Close()
				t.Fatalf("expected strict parse of %q to fail", tt.code)
			}
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *parser.ParseError, got %T", err)
			}
			if !strings.Contains(perr.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", perr.Message, tt.message)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d", perr.Line, tt.line)
			}
			if perr.Column < 1 {
				t.Errorf("column = %d, want >= 1", perr.Column)
			}
		})
	}
}

func TestParseStrictAcceptsValidControlFlow(t *testing.T) {
	inputs := []string{
		"function f() { return 1; }",
		"const g = () => { return 2; };",
		"const o = { m() { return 3; }, get v() { return 4; } };",
		"class A { m() { return 5; } }",
		"for (;;) { break; }",
		"while (x) { if (y) continue; }",
		"do { break; } while (x);",
		"for (const k in o) { continue; }",
		"switch (x) { case 1: break; default: }",
		"outer: for (;;) { for (;;) { continue outer; } }",
		"a: b: while (x) { continue a; }",
		"block: { break block; }",
		"let x = 1; { let x = 2; }",
		"var v; var v;",
		"function h() {} function h() {}",
		"function k(a) { let b; var c; return a; }",
		"for (let i = 0; i < 3; i++) { let i2 = i; }",
		"const lt = a < b;\nconst gt = c > d;",
		"import('./lazy.js').then(m => m.run());",
	}

	p := NewParser()
	for _, code := range inputs {
		tree, err := p.Parse([]byte(code), parser.Strict)
		if err != nil {
			t.Errorf("Parse(%q) = %v, want success", code, err)
			continue
		}
		tree.Close()
	}
}

func TestParseModuleAcceptsImportExport(t *testing.T) {
	code := "import x from 'y';\nexport const a = x;\nexport default function () { return a; }\n"

	p := NewParser(WithSourceType(parser.Module))
	if p.SourceType() != parser.Module {
		t.Fatalf("SourceType = %v, want module", p.SourceType())
	}
	tree, err := p.Parse([]byte(code), parser.Strict)
	if err != nil {
		t.Fatalf("module parse failed: %v", err)
	}
	tree.Close()

	if _, err := p.Parse([]byte("export let a = 1;\nlet a = 2;"), parser.Strict); err == nil {
		t.Error("expected an exported let to clash with a later let")
	}
	if _, err := NewParser().Parse([]byte(code), parser.Strict); err == nil {
		t.Error("expected script parse of module code to fail")
	}
}

func TestParseTolerantSkipsEarlyErrors(t *testing.T) {
	tree, err := NewParser().Parse([]byte("return 1;\nconst x = <div/>;"), parser.Tolerant)
	if err != nil {
		t.Fatalf("tolerant parse should not apply early errors: %v", err)
	}
	tree.Close()
}

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		in      string
		want    parser.SourceType
		wantErr bool
	}{
		{"", parser.Script, false},
		{"script", parser.Script, false},
		{"module", parser.Module, false},
		{"commonjs", parser.Script, true},
	}
	for _, tt := range tests {
		got, err := parser.ParseSourceType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSourceType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSourceType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
