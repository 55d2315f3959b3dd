// Package jscheck is a second line of defense against a reassembly bug in
// js{...}/shell{...} block handling: a dropped space that collapses two
// statements, a miscounted brace, anything that would silently produce
// subtly broken JavaScript. It parses reassembled or emitted JS text with
// the real JavaScript grammar and reports any parse error it finds.
//
// Grounded on the teacher's providers/javascript.Config.GetLanguage, the one
// place in the example pack that drives this exact tree-sitter grammar —
// adapted here from a structural-edit query engine into a narrow
// well-formedness check.
package jscheck

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/kimchilang/internal/diag"
)

// Validate parses src as JavaScript and reports the first ERROR-kinded node
// tree-sitter produces, if any. A nil diagnostic means src parsed cleanly;
// this never rewrites or otherwise touches src.
func Validate(src string) *diag.Diagnostic {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		d := diag.New(diag.ParseError, 0, 0, "reassembled js block failed to parse: %s", err.Error())
		return &d
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstErrorNode(root); bad != nil {
		pt := bad.StartPoint()
		d := diag.New(diag.ParseError, int(pt.Row)+1, int(pt.Column)+1,
			"reassembled js block failed to parse: unexpected %s", describeNode(bad, src))
		return &d
	}
	return nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func describeNode(n *sitter.Node, src string) string {
	text := src[n.StartByte():n.EndByte()]
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("%q", text)
}
