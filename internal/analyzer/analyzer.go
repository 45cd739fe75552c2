// Package analyzer turns a JavaScript source unit into a QualityReport.
//
// Analyze is pure: it performs no I/O, keeps no state between calls and is
// safe for concurrent use.
package analyzer

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/imyousuf/codegauge/internal/metrics"
	"github.com/imyousuf/codegauge/internal/parser"
	"github.com/imyousuf/codegauge/internal/parser/javascript"
)

const (
	// DefaultMaxFileNameLength bounds file names on both create and update.
	DefaultMaxFileNameLength = 20
	// DefaultExtension is the extension every analyzed file name must carry.
	DefaultExtension = ".js"
	// NotApplicable is the code-to-comment ratio of a unit without comments.
	NotApplicable = "N/A"
)

// QualityReport is the result of one analysis.
type QualityReport struct {
	LOC                  int    `json:"loc" yaml:"loc"`
	LLOC                 int    `json:"lloc" yaml:"lloc"`
	SLOC                 int    `json:"sloc" yaml:"sloc"`
	Comments             int    `json:"comments" yaml:"comments"`
	CommentPercentage    string `json:"commentPercentage" yaml:"commentPercentage"`
	CodeToCommentRatio   string `json:"codeToCommentRatio" yaml:"codeToCommentRatio"`
	CyclomaticComplexity int    `json:"cyclomaticComplexity" yaml:"cyclomaticComplexity"`
	MaintainabilityIndex string `json:"maintainabilityIndex" yaml:"maintainabilityIndex"`
}

// Config holds configuration for the Analyzer.
type Config struct {
	// MaxFileNameLength is the longest accepted file name. Defaults to 20.
	MaxFileNameLength int
	// Extension is the required file name suffix. Defaults to ".js".
	Extension string
	// SourceType selects script or module parsing for the default parser.
	SourceType parser.SourceType
	// Parser is the syntax parser. Defaults to the JavaScript parser.
	Parser parser.Parser
}

// Analyzer validates source units and computes their quality reports.
type Analyzer struct {
	maxNameLen int
	extension  string
	parser     parser.Parser
}

// New creates an Analyzer, filling unset Config fields with defaults.
func New(cfg Config) *Analyzer {
	a := &Analyzer{
		maxNameLen: cfg.MaxFileNameLength,
		extension:  cfg.Extension,
		parser:     cfg.Parser,
	}
	if a.maxNameLen <= 0 {
		a.maxNameLen = DefaultMaxFileNameLength
	}
	if a.extension == "" {
		a.extension = DefaultExtension
	}
	if a.parser == nil {
		a.parser = javascript.NewParser(javascript.WithSourceType(cfg.SourceType))
	}
	return a
}

// Language returns the language of the configured parser.
func (a *Analyzer) Language() parser.Language {
	return a.parser.Language()
}

// Extension returns the file name suffix the analyzer requires.
func (a *Analyzer) Extension() string {
	return a.extension
}

// Analyze validates (fileName, code) and returns its quality report.
// It fails with *ValidationError or *ParseError and never returns a partial report.
func (a *Analyzer) Analyze(fileName, code string) (*QualityReport, error) {
	if fileName == "" || code == "" {
		return nil, &ValidationError{Reason: "file name and code are required"}
	}
	if err := a.ValidateFileName(fileName); err != nil {
		return nil, err
	}
	if err := a.CheckSyntax(code); err != nil {
		return nil, err
	}
	return a.compute(code)
}

// ValidateFileName checks the length and extension rules for a file name.
func (a *Analyzer) ValidateFileName(fileName string) error {
	if fileName == "" {
		return &ValidationError{Reason: "file name is required"}
	}
	if utf8.RuneCountInString(fileName) > a.maxNameLen {
		return &ValidationError{Reason: fmt.Sprintf("file name cannot exceed %d characters", a.maxNameLen)}
	}
	if !strings.HasSuffix(fileName, a.extension) {
		return &ValidationError{Reason: fmt.Sprintf("file name must end with %s", a.extension)}
	}
	return nil
}

// CheckSyntax parses code strictly and surfaces the parser diagnostic.
func (a *Analyzer) CheckSyntax(code string) error {
	if code == "" {
		return &ValidationError{Reason: "code is required"}
	}
	tree, err := a.parser.Parse([]byte(code), parser.Strict)
	if err != nil {
		return err
	}
	tree.Close()
	return nil
}

func (a *Analyzer) compute(code string) (*QualityReport, error) {
	lines := metrics.ClassifyLines(code)

	tree, err := a.parser.Parse([]byte(code), parser.Tolerant)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	complexity := metrics.CyclomaticComplexity(tree.Root(), a.parser.Classify)

	mi := metrics.MaintainabilityIndex(complexity.CyclomaticComplexity, lines.SLOC)

	return &QualityReport{
		LOC:                  lines.LOC,
		LLOC:                 lines.LLOC,
		SLOC:                 lines.SLOC,
		Comments:             lines.Comments,
		CommentPercentage:    commentPercentage(lines),
		CodeToCommentRatio:   codeToCommentRatio(lines),
		CyclomaticComplexity: complexity.CyclomaticComplexity,
		MaintainabilityIndex: formatDecimal(mi),
	}, nil
}

func commentPercentage(lines metrics.LineReport) string {
	r, ok := metrics.Ratio(lines.Comments, lines.LOC)
	if !ok {
		return formatDecimal(0)
	}
	return formatDecimal(r * 100)
}

func codeToCommentRatio(lines metrics.LineReport) string {
	r, ok := metrics.Ratio(lines.SLOC, lines.Comments)
	if !ok {
		return NotApplicable
	}
	return formatDecimal(r)
}

// formatDecimal renders v with two decimals. Ties on the exact binary value
// round away from zero (0.125 gives "0.13"); strconv would round them to even.
func formatDecimal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	// v*100 needs at most 60 significant bits, so 128 keeps every step exact.
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, big.NewFloat(100))
	cents, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(cents))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		cents.Add(cents, big.NewInt(1))
	}

	digits := cents.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if v < 0 {
		out = "-" + out
	}
	return out
}

// MaintainabilityScore returns MaintainabilityIndex as a number.
func (r *QualityReport) MaintainabilityScore() float64 {
	v, err := strconv.ParseFloat(r.MaintainabilityIndex, 64)
	if err != nil {
		return 0
	}
	return v
}
