package ast

// Param is a single function parameter name. Kimchi functions do not accept
// destructuring parameters (only dec bindings do); spec.md §3 limits
// FunctionDecl to a plain "parameter list".
type Param struct {
	Name string
}

// DecBinding is `dec name = init`, `expose dec name = init`,
// `secret dec name = init`, or a destructuring form of any of those.
// Exactly one of Name or Pattern is set (spec.md §3 invariant).
type DecBinding struct {
	Pos
	Name    string // set when binding a scalar identifier
	Pattern Expr   // *ObjectPattern or *ArrayPattern, set when destructuring
	Init    Expr
	Exposed bool
	Secret  bool
}

func (*DecBinding) stmtNode() {}
func (d *DecBinding) Position() Pos { return d.Pos }

// FunctionDecl is `fn name(params) { body }`, with optional async/memo/expose
// modifiers.
type FunctionDecl struct {
	Pos
	Name     string
	Params   []Param
	Body     *BlockStmt
	Async    bool
	Memoized bool
	Exposed  bool
}

func (*FunctionDecl) stmtNode()     {}
func (f *FunctionDecl) Position() Pos { return f.Pos }

// EnumMember is one ordered member of an EnumDecl. ExplicitValue is nil when
// the member's value is auto-incremented from the running counter.
type EnumMember struct {
	Name          string
	ExplicitValue *int
}

// EnumDecl is `enum Name { A, B = 10, C }`.
type EnumDecl struct {
	Pos
	Name    string
	Members []EnumMember
}

func (*EnumDecl) stmtNode()       {}
func (e *EnumDecl) Position() Pos { return e.Pos }

// ArgDecl is `arg name`, `arg !name`, or `arg name = default`, optionally
// `secret`-tagged.
type ArgDecl struct {
	Pos
	Name     string
	Required bool
	Default  Expr
	Secret   bool
}

func (*ArgDecl) stmtNode()       {}
func (a *ArgDecl) Position() Pos { return a.Pos }

// EnvDecl is the environment-variable analogue of ArgDecl.
type EnvDecl struct {
	Pos
	Name     string
	Required bool
	Default  Expr
	Secret   bool
}

func (*EnvDecl) stmtNode()       {}
func (e *EnvDecl) Position() Pos { return e.Pos }

// DepStmt is `as alias dep a.b.c(overrides?)`.
type DepStmt struct {
	Pos
	Alias    string
	Path     []string
	Override Expr // *ObjectExpr or nil
}

func (*DepStmt) stmtNode()       {}
func (d *DepStmt) Position() Pos { return d.Pos }
