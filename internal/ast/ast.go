// Package ast defines the Kimchi abstract syntax tree.
//
// Every node family is a closed set of concrete structs rather than an open
// tagged-variant map (spec.md's source used string-tagged variants; §9's
// design notes call for a sealed sum type per family in a systems port).
// Stmt and Expr are marker interfaces with unexported methods so no type
// outside this package can implement them — every switch over a Stmt or
// Expr elsewhere in the compiler is therefore exhaustive by construction.
package ast

// Pos is the source position carried by (almost) every node. Nodes
// synthesized by a pass rather than parsed directly from source may carry
// the zero Pos.
type Pos struct {
	Line int
	Col  int
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Stmt is implemented by every statement-level node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression-level node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Pos
	Stmts []Stmt
}

func (p *Program) Position() Pos { return p.Pos }
