package ast

// BlockStmt is a brace-delimited statement sequence.
type BlockStmt struct {
	Pos
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()       {}
func (b *BlockStmt) Position() Pos { return b.Pos }

// IfStmt represents `if`/`else if` (rewritten from `elif`)/`else`. Else is
// nil, a *BlockStmt, or a nested *IfStmt.
type IfStmt struct {
	Pos
	Cond Expr
	Then *BlockStmt
	Else Stmt
}

func (*IfStmt) stmtNode()       {}
func (i *IfStmt) Position() Pos { return i.Pos }

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	Pos
	Cond Expr
	Body *BlockStmt
}

func (*WhileStmt) stmtNode()       {}
func (w *WhileStmt) Position() Pos { return w.Pos }

// ForInStmt is `for name in iterable { body }`.
type ForInStmt struct {
	Pos
	Name     string
	Iterable Expr
	Body     *BlockStmt
}

func (*ForInStmt) stmtNode()       {}
func (f *ForInStmt) Position() Pos { return f.Pos }

// ReturnStmt is `return` or `return value`.
type ReturnStmt struct {
	Pos
	Value Expr // nil for a bare return
}

func (*ReturnStmt) stmtNode()       {}
func (r *ReturnStmt) Position() Pos { return r.Pos }

// BreakStmt is `break`.
type BreakStmt struct{ Pos }

func (*BreakStmt) stmtNode()       {}
func (b *BreakStmt) Position() Pos { return b.Pos }

// ContinueStmt is `continue`.
type ContinueStmt struct{ Pos }

func (*ContinueStmt) stmtNode()       {}
func (c *ContinueStmt) Position() Pos { return c.Pos }

// TryStmt is `try { ... } catch (param) { ... } finally { ... }`, with the
// catch clause and finalizer both optional.
type TryStmt struct {
	Pos
	Block      *BlockStmt
	HasCatch   bool
	CatchParam string // "" if the catch clause binds no param
	CatchBody  *BlockStmt
	Finally    *BlockStmt // nil if absent
}

func (*TryStmt) stmtNode()       {}
func (t *TryStmt) Position() Pos { return t.Pos }

// ThrowStmt is `throw value`.
type ThrowStmt struct {
	Pos
	Value Expr
}

func (*ThrowStmt) stmtNode()       {}
func (t *ThrowStmt) Position() Pos { return t.Pos }

// MatchCase is one guarded arm of a PatternMatchStmt. For the regex form,
// Guard is a *RegexLiteral tested against PatternMatchStmt.Subject; for the
// guard form, Guard is an arbitrary boolean expression.
type MatchCase struct {
	Guard Expr
	Body  *BlockStmt
}

// PatternMatchStmt is a sequence of `|guard| => { body }` arms (or, in the
// IsRegex form, `/regex/ => { body }` arms), evaluated top to bottom,
// first-match-wins.
type PatternMatchStmt struct {
	Pos
	Cases   []MatchCase
	IsRegex bool
	Subject Expr // the value a regex guard is tested against; the parser leaves it nil, so regex guards emit `.test()` with no argument
}

func (*PatternMatchStmt) stmtNode()       {}
func (p *PatternMatchStmt) Position() Pos { return p.Pos }

// PrintStmt is `print(args...)`.
type PrintStmt struct {
	Pos
	Args []Expr
}

func (*PrintStmt) stmtNode()       {}
func (p *PrintStmt) Position() Pos { return p.Pos }

// ExpressionStmt wraps an expression evaluated for side effects.
type ExpressionStmt struct {
	Pos
	Expr Expr
}

func (*ExpressionStmt) stmtNode()       {}
func (e *ExpressionStmt) Position() Pos { return e.Pos }

// JSBlock is a `js(inputs) { raw }` block. It satisfies both Stmt and Expr:
// it may be used bare as a statement or as the right-hand side of an
// expression (AsExpression records which parse context produced it, though
// the emitted IIFE is identical either way per spec.md §4.6).
type JSBlock struct {
	Pos
	Inputs       []string
	Raw          string
	AsExpression bool
}

func (*JSBlock) stmtNode()       {}
func (*JSBlock) exprNode()       {}
func (j *JSBlock) Position() Pos { return j.Pos }

// ShellBlock is `shell(inputs) { raw }`, captured verbatim by the scanner's
// raw-capture mode.
type ShellBlock struct {
	Pos
	Inputs       []string
	Raw          string
	AsExpression bool
}

func (*ShellBlock) stmtNode()       {}
func (*ShellBlock) exprNode()       {}
func (s *ShellBlock) Position() Pos { return s.Pos }

// TestBlock is `test "name" { body }`.
type TestBlock struct {
	Pos
	Name string
	Body *BlockStmt
}

func (*TestBlock) stmtNode()       {}
func (t *TestBlock) Position() Pos { return t.Pos }

// DescribeBlock is `describe "name" { body }`.
type DescribeBlock struct {
	Pos
	Name string
	Body *BlockStmt
}

func (*DescribeBlock) stmtNode()       {}
func (d *DescribeBlock) Position() Pos { return d.Pos }

// ExpectStmt is `expect(actual).matcher(expected?)`.
type ExpectStmt struct {
	Pos
	Actual   Expr
	Matcher  string
	Expected Expr // nil if the matcher takes no argument
}

func (*ExpectStmt) stmtNode()       {}
func (e *ExpectStmt) Position() Pos { return e.Pos }

// AssertStmt is `assert(cond, message?)`.
type AssertStmt struct {
	Pos
	Cond    Expr
	Message Expr // nil if absent
}

func (*AssertStmt) stmtNode()       {}
func (a *AssertStmt) Position() Pos { return a.Pos }
