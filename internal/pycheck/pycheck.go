// Package pycheck inspects Python scripts shipped in a bundle's scripts/
// directory. It uses Tree-sitter, so syntax errors are located without a
// Python interpreter.
package pycheck

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/dotcommander/skillpack/internal/textutil"
)

// SyntaxError locates the first parse error in a script.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
}

// Report summarises a script. When Syntax is set the other fields are not
// meaningful.
type Report struct {
	Syntax           *SyntaxError
	HasDocstring     bool
	HasErrorHandling bool
	HasMainGuard     bool
}

// Checker parses Python source. It is not safe for concurrent use.
type Checker struct {
	parser *sitter.Parser
}

// NewChecker creates a Checker with the Python grammar loaded.
func NewChecker() *Checker {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Checker{parser: parser}
}

// Check parses src and reports its structure.
func (c *Checker) Check(ctx context.Context, src []byte) (Report, error) {
	tree, err := c.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Report{}, fmt.Errorf("parsing python source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Report{Syntax: firstError(root, src)}, nil
	}
	if syntax := firstInvalidStatement(root); syntax != nil {
		return Report{Syntax: syntax}, nil
	}

	return Report{
		HasDocstring:     hasModuleDocstring(root),
		HasErrorHandling: containsType(root, "try_statement"),
		HasMainGuard:     bytes.Contains(src, []byte("__name__")) && bytes.Contains(src, []byte("__main__")),
	}, nil
}

// firstError returns the earliest ERROR or MISSING node in document order.
func firstError(node *sitter.Node, src []byte) *SyntaxError {
	if node.IsMissing() {
		return &SyntaxError{
			Line:    int(node.StartPoint().Row) + 1,
			Message: fmt.Sprintf("invalid syntax: missing %q", node.Type()),
		}
	}
	if node.IsError() {
		text := strings.TrimSpace(node.Content(src))
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		return &SyntaxError{
			Line:    int(node.StartPoint().Row) + 1,
			Message: fmt.Sprintf("invalid syntax near %q", textutil.Truncate(text, 40)),
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child, src); found != nil {
			return found
		}
	}
	if node.Parent() == nil {
		// HasError was set but no node was flagged; report the module start.
		return &SyntaxError{Line: 1, Message: "invalid syntax"}
	}
	return nil
}

// firstInvalidStatement finds, in document order, constructs the grammar
// accepts but Python 3 rejects: print/exec statements and statements indented
// differently from their siblings.
func firstInvalidStatement(node *sitter.Node) *SyntaxError {
	switch node.Type() {
	case "print_statement", "exec_statement":
		return &SyntaxError{
			Line:    int(node.StartPoint().Row) + 1,
			Message: fmt.Sprintf("Missing parentheses in call to '%s'", strings.TrimSuffix(node.Type(), "_statement")),
		}
	case "module", "block":
		return firstInSuite(node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := firstInvalidStatement(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// firstInSuite checks the statements of a module or block. Module statements
// start at column 0; block statements share the column of the first one.
// Statements continuing a line (after ';') are not compared.
func firstInSuite(suite *sitter.Node) *SyntaxError {
	column := -1
	if suite.Type() == "module" {
		column = 0
	}
	var prev *sitter.Node
	for i := 0; i < int(suite.NamedChildCount()); i++ {
		stmt := suite.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		start := stmt.StartPoint()
		if column < 0 {
			column = int(start.Column)
		}
		newLine := prev == nil || start.Row != prev.EndPoint().Row
		if newLine && int(start.Column) != column {
			return &SyntaxError{Line: int(start.Row) + 1, Message: "unexpected indent"}
		}
		if found := firstInvalidStatement(stmt); found != nil {
			return found
		}
		prev = stmt
	}
	return nil
}

// hasModuleDocstring reports whether the first statement is a string literal.
func hasModuleDocstring(root *sitter.Node) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return false
		}
		switch stmt.NamedChild(0).Type() {
		case "string", "concatenated_string":
			return true
		}
		return false
	}
	return false
}

func containsType(node *sitter.Node, nodeType string) bool {
	if node.Type() == nodeType {
		return true
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if containsType(node.NamedChild(i), nodeType) {
			return true
		}
	}
	return false
}
