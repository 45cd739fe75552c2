// Package metrics provides the line classifier, cyclomatic complexity walker
// and maintainability scorer used to build quality reports.
package metrics

// LineReport holds the line-level counts of a source unit.
// Invariant: 0 <= LLOC <= SLOC <= LOC and Comments <= LOC.
type LineReport struct {
	// LOC is the number of physical lines, blank lines included.
	LOC int `json:"loc" yaml:"loc"`
	// SLOC counts lines that are neither blank nor comment-only.
	SLOC int `json:"sloc" yaml:"sloc"`
	// LLOC counts SLOC lines holding a statement terminator or a brace.
	LLOC int `json:"lloc" yaml:"lloc"`
	// Comments counts lines carrying comment text, one per physical line of a block comment.
	Comments int `json:"comments" yaml:"comments"`
}

// Construct identifies a syntax construct that opens an extra execution path.
type Construct string

const (
	ConstructIf          Construct = "if"
	ConstructFor         Construct = "for"
	ConstructWhile       Construct = "while"
	ConstructDoWhile     Construct = "do_while"
	ConstructSwitch      Construct = "switch"
	ConstructCatch       Construct = "catch"
	ConstructConditional Construct = "conditional"
	ConstructForIn       Construct = "for_in"
	ConstructForOf       Construct = "for_of"
)

// ComplexityReport holds the result of the complexity walk.
type ComplexityReport struct {
	// CyclomaticComplexity is 1 plus the number of decision constructs.
	CyclomaticComplexity int `json:"cyclomaticComplexity" yaml:"cyclomaticComplexity"`
	// Decisions breaks the decision count down by construct.
	Decisions map[Construct]int `json:"-" yaml:"-"`
}
