package metrics

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ClassifyFunc maps a syntax node to the decision construct it represents.
// It reports false for nodes that do not branch.
type ClassifyFunc func(node *sitter.Node) (Construct, bool)

// CyclomaticComplexity walks every node below root exactly once and returns
// 1 plus the number of nodes that classify as a decision construct.
//
// The walk uses an explicit stack, so its depth is bounded by memory rather
// than by the goroutine stack.
func CyclomaticComplexity(root *sitter.Node, classify ClassifyFunc) ComplexityReport {
	report := ComplexityReport{
		CyclomaticComplexity: 1, // baseline path
		Decisions:            make(map[Construct]int),
	}
	if root == nil || root.IsNull() {
		return report
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c, ok := classify(node); ok {
			report.CyclomaticComplexity++
			report.Decisions[c]++
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(i)
			if child == nil || child.IsNull() {
				continue
			}
			stack = append(stack, child)
		}
	}
	return report
}
